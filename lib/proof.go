package lib

import (
	"crypto/sha256"
	"math/big"

	"golang.org/x/xerrors"
)

// Proof is the record of one mix round. The secondary shuffle is a second,
// independent re-encryption and permutation of the same ballots; its hash is
// the challenge deciding which parts of the round are disclosed.
type Proof struct {
	// PrimaryRandom re-encrypted the published shuffle.
	PrimaryRandom *big.Int
	// SecondaryRandom re-encrypted the committed shuffle.
	SecondaryRandom *big.Int
	// PrimarySwaps is the swap trace of the published shuffle.
	PrimarySwaps []int
	// SecondarySwaps is the swap trace of the committed shuffle.
	SecondarySwaps []int
	// CommitmentHash is the SHA-256 hash of the committed shuffle.
	CommitmentHash []byte
}

// Commit hashes the big-endian magnitudes of the ciphertexts, in order.
func Commit(ciphertexts []*big.Int) []byte {
	h := sha256.New()
	for _, c := range ciphertexts {
		h.Write(c.Bytes())
	}
	return h.Sum(nil)
}

// ChallengeBits returns the number of challenge bits the proof carries.
func (p *Proof) ChallengeBits() int {
	return len(p.CommitmentHash) * 8
}

// ChallengeBit returns bit j of the commitment hash read as an unsigned
// big-endian integer, bit 0 being the least significant one.
func (p *Proof) ChallengeBit(j int) uint {
	return new(big.Int).SetBytes(p.CommitmentHash).Bit(j)
}

// Check returns an error if the proof is incomplete.
func (p *Proof) Check() error {
	switch {
	case p == nil:
		return xerrors.Errorf("missing proof: %w", ErrInvalidProof)
	case p.PrimaryRandom == nil || p.SecondaryRandom == nil:
		return xerrors.Errorf("missing randomizer: %w", ErrInvalidProof)
	case len(p.PrimarySwaps) != len(p.SecondarySwaps):
		return xerrors.Errorf("swap traces of %d and %d entries: %w",
			len(p.PrimarySwaps), len(p.SecondarySwaps), ErrInvalidProof)
	case len(p.CommitmentHash) != sha256.Size:
		return xerrors.Errorf("commitment of %d bytes: %w", len(p.CommitmentHash), ErrInvalidProof)
	}
	return nil
}
