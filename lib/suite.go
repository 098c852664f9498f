package lib

import (
	"crypto/cipher"
	"math/big"

	"go.dedis.ch/kyber/v3/util/random"
)

// NewStream returns a fresh cryptographically secure random stream. Every
// key generation, encryption and mix round draws from its own stream.
func NewStream() cipher.Stream {
	return random.New()
}

// randomExact returns a random integer of exactly bits bits.
func randomExact(bits int, rand cipher.Stream) *big.Int {
	return new(big.Int).SetBytes(random.Bits(uint(bits), true, rand))
}

// randomBelow returns a uniform random integer in [0, max). random.Int only
// draws from [1, mod), so it is asked for [1, max] and shifted down.
func randomBelow(max int, rand cipher.Stream) int {
	if max <= 1 {
		return 0
	}
	return int(random.Int(big.NewInt(int64(max)+1), rand).Int64()) - 1
}

// RandomIndex returns a uniform random integer in [from, to).
func RandomIndex(from, to int, rand cipher.Stream) int {
	return from + randomBelow(to-from, rand)
}

// RandomCoprime returns a random integer of exactly bits bits that is
// coprime to n.
func RandomCoprime(bits int, n *big.Int, rand cipher.Stream) *big.Int {
	gcd := new(big.Int)
	for {
		r := randomExact(bits, rand)
		if gcd.GCD(nil, nil, r, n).Cmp(one) == 0 {
			return r
		}
	}
}
