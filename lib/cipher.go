package lib

import (
	"math/big"

	"golang.org/x/xerrors"
)

// Encrypt encrypts the plaintext m under pk with a fresh randomizer of
// exactly bits bits: c = g^m * r^n mod n^2.
func Encrypt(m *big.Int, pk *PublicKey, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, xerrors.Errorf("randomizer of %d bits: %w", bits, ErrEncryption)
	}
	c, _, err := encrypt(m, pk, func() *big.Int { return randomExact(bits, NewStream()) })
	return c, err
}

// EncryptWithRandom is like Encrypt but returns the randomizer it drew so
// that a voter can check the encryption of their choice.
func EncryptWithRandom(m *big.Int, pk *PublicKey, bits int) (c, r *big.Int, err error) {
	if bits < 2 {
		return nil, nil, xerrors.Errorf("randomizer of %d bits: %w", bits, ErrEncryption)
	}
	return encrypt(m, pk, func() *big.Int { return randomExact(bits, NewStream()) })
}

// EncryptFixed encrypts m with the given randomizer r. It does not check
// that r is coprime to n.
func EncryptFixed(m, r *big.Int, pk *PublicKey) (*big.Int, error) {
	if r == nil || r.Sign() <= 0 {
		return nil, xerrors.Errorf("randomizer must be positive: %w", ErrEncryption)
	}
	c, _, err := encrypt(m, pk, func() *big.Int { return r })
	return c, err
}

func encrypt(m *big.Int, pk *PublicKey, randomizer func() *big.Int) (*big.Int, *big.Int, error) {
	if !pk.valid() {
		return nil, nil, xerrors.Errorf("malformed public key: %w", ErrEncryption)
	}
	if m == nil || m.Sign() < 0 || m.Cmp(pk.N) >= 0 {
		return nil, nil, xerrors.Errorf("plaintext %v out of range: %w", m, ErrEncryption)
	}

	r := randomizer()
	gm := new(big.Int).Exp(pk.G, m, pk.NSquared)
	rn := new(big.Int).Exp(r, pk.N, pk.NSquared)
	c := gm.Mul(gm, rn)
	return c.Mod(c, pk.NSquared), r, nil
}

// Decrypt returns L(c^lambda mod n^2) * u mod n. Ciphertexts outside
// [1, n^2), sharing a factor with n, or not produced under this key are
// rejected.
func Decrypt(c *big.Int, sk *PrivateKey) (*big.Int, error) {
	if !sk.valid() {
		return nil, xerrors.Errorf("malformed private key: %w", ErrDecryption)
	}
	if c == nil || c.Sign() <= 0 || c.Cmp(sk.NSquared) >= 0 {
		return nil, xerrors.Errorf("ciphertext out of range: %w", ErrDecryption)
	}
	if new(big.Int).GCD(nil, nil, c, sk.N).Cmp(one) != 0 {
		return nil, xerrors.Errorf("ciphertext shares a factor with n: %w", ErrDecryption)
	}

	l, err := lfunc(new(big.Int).Exp(c, sk.Lambda, sk.NSquared), sk.N)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrDecryption)
	}
	m := l.Mul(l, sk.U)
	return m.Mod(m, sk.N), nil
}

// Add returns a ciphertext of the sum of the plaintexts of a and b.
func Add(pk *PublicKey, a, b *big.Int) (*big.Int, error) {
	if !pk.valid() {
		return nil, xerrors.Errorf("malformed public key: %w", ErrEncryption)
	}
	if !pk.Contains(a) || !pk.Contains(b) {
		return nil, xerrors.Errorf("ciphertext out of range: %w", ErrEncryption)
	}
	sum := new(big.Int).Mul(a, b)
	return sum.Mod(sum, pk.NSquared), nil
}

// ReEncrypt multiplies c by r^n, which yields a different ciphertext of the
// same plaintext.
func ReEncrypt(pk *PublicKey, c, r *big.Int) *big.Int {
	rn := new(big.Int).Exp(r, pk.N, pk.NSquared)
	rn.Mul(rn, c)
	return rn.Mod(rn, pk.NSquared)
}
