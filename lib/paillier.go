package lib

import (
	"crypto/cipher"
	"fmt"
	"math/big"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

var one = big.NewInt(1)

// PublicKey is the Paillier encryption key of an election.
type PublicKey struct {
	// N is the product of the two secret primes.
	N *big.Int
	// NSquared is N*N, the modulus of every ciphertext.
	NSquared *big.Int
	// G is the generator, always N+1.
	G *big.Int
}

// PrivateKey is the Paillier decryption key of an election. It never leaves
// the election it was generated for.
type PrivateKey struct {
	// Lambda is lcm(p-1, q-1).
	Lambda *big.Int
	N      *big.Int
	// NSquared is N*N.
	NSquared *big.Int
	// U is L(G^Lambda mod N^2)^-1 mod N.
	U *big.Int
}

// KeyPair holds both halves of an election key.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateKeyPair draws two independent primes of bitLength bits, each
// composite with probability at most 2^-certainty, and derives a fresh
// key pair from them.
func GenerateKeyPair(bitLength, certainty int) (*KeyPair, error) {
	if bitLength < 8 {
		return nil, xerrors.Errorf("prime length %d is too short: %w", bitLength, ErrKeyGeneration)
	}
	if certainty < 1 {
		return nil, xerrors.Errorf("certainty must be positive: %w", ErrKeyGeneration)
	}

	p := probablePrime(bitLength, certainty, NewStream())
	q := probablePrime(bitLength, certainty, NewStream())
	for p.Cmp(q) == 0 {
		q = probablePrime(bitLength, certainty, NewStream())
	}
	kp, err := newKeyPair(p, q)
	if err != nil {
		return nil, err
	}
	log.Lvlf3("generated %d-bit Paillier modulus", kp.Public.N.BitLen())
	return kp, nil
}

// newKeyPair derives the key pair of the primes p and q.
func newKeyPair(p, q *big.Int) (*KeyPair, error) {
	pm := new(big.Int).Sub(p, one)
	qm := new(big.Int).Sub(q, one)

	gcd := new(big.Int).GCD(nil, nil, pm, qm)
	lambda := new(big.Int).Mul(pm, qm)
	lambda.Quo(lambda, gcd)

	n := new(big.Int).Mul(p, q)
	nsqr := new(big.Int).Mul(n, n)
	g := new(big.Int).Add(n, one)

	l, err := lfunc(new(big.Int).Exp(g, lambda, nsqr), n)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrKeyGeneration)
	}
	u := new(big.Int).ModInverse(l, n)
	if u == nil {
		return nil, xerrors.Errorf("L(g^lambda) has no inverse modulo n: %w", ErrKeyGeneration)
	}

	return &KeyPair{
		Public:  NewPublicKey(n),
		Private: &PrivateKey{Lambda: lambda, N: n, NSquared: new(big.Int).Set(nsqr), U: u},
	}, nil
}

// probablePrime returns a prime of exactly bits bits. ProbablyPrime(k)
// errs with probability at most 4^-k, hence k = ceil(certainty/2).
func probablePrime(bits, certainty int, rand cipher.Stream) *big.Int {
	rounds := (certainty + 1) / 2
	for {
		p := randomExact(bits, rand)
		p.SetBit(p, 0, 1)
		if p.ProbablyPrime(rounds) {
			return p
		}
	}
}

// lfunc computes L(x) = (x-1)/n. The division must be exact; any other
// input is not in the image of the Paillier encryption.
func lfunc(x, n *big.Int) (*big.Int, error) {
	q, r := new(big.Int).QuoRem(new(big.Int).Sub(x, one), n, new(big.Int))
	if r.Sign() != 0 || q.Sign() < 0 {
		return nil, xerrors.New("input is not 1 modulo n")
	}
	return q, nil
}

// NewPublicKey rebuilds the public key of modulus n.
func NewPublicKey(n *big.Int) *PublicKey {
	return &PublicKey{
		N:        new(big.Int).Set(n),
		NSquared: new(big.Int).Mul(n, n),
		G:        new(big.Int).Add(n, one),
	}
}

func (pk *PublicKey) valid() bool {
	return pk != nil && pk.N != nil && pk.NSquared != nil && pk.G != nil &&
		pk.N.Sign() > 0 && new(big.Int).Mul(pk.N, pk.N).Cmp(pk.NSquared) == 0
}

func (sk *PrivateKey) valid() bool {
	return sk != nil && sk.N != nil && sk.NSquared != nil && sk.Lambda != nil && sk.U != nil &&
		sk.N.Sign() > 0 && new(big.Int).Mul(sk.N, sk.N).Cmp(sk.NSquared) == 0
}

// Contains reports whether c is in the ciphertext range [1, N^2).
func (pk *PublicKey) Contains(c *big.Int) bool {
	return c != nil && c.Sign() > 0 && c.Cmp(pk.NSquared) < 0
}

func (pk *PublicKey) String() string {
	return fmt.Sprintf("Paillier{n: %v, g: %v}", pk.N, pk.G)
}
