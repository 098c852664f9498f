package protocol

import (
	"crypto/cipher"
	"math/big"

	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// MixNet re-encrypts and permutes ballots under one public key.
type MixNet struct {
	key  *lib.PublicKey
	bits int // bits is the size of the mix randomizers.
}

// NewMixNet returns a mix net for ballots encrypted under key. Randomizers
// are drawn with exactly bits bits.
func NewMixNet(key *lib.PublicKey, bits int) *MixNet {
	return &MixNet{key: key, bits: bits}
}

// Mix returns a re-encrypted permutation of ballots together with the proof
// of the round. The input is left untouched.
func (m *MixNet) Mix(ballots []*big.Int) ([]*big.Int, *lib.Proof, error) {
	if m.key == nil {
		return nil, nil, xerrors.Errorf("no public key: %w", lib.ErrMix)
	}
	if m.bits < 2 {
		return nil, nil, xerrors.Errorf("randomizer of %d bits: %w", m.bits, lib.ErrMix)
	}
	if len(ballots) == 0 {
		return nil, nil, xerrors.Errorf("no ballots: %w", lib.ErrMix)
	}
	for i, b := range ballots {
		if !m.key.Contains(b) {
			return nil, nil, xerrors.Errorf("ballot %d out of range: %w", i, lib.ErrMix)
		}
	}

	rand := lib.NewStream()
	priR := lib.RandomCoprime(m.bits, m.key.N, rand)
	secR := lib.RandomCoprime(m.bits, m.key.N, rand)

	primary, priSwaps := permute(reEncrypt(m.key, ballots, priR), rand)
	secondary, secSwaps := permute(reEncrypt(m.key, ballots, secR), rand)

	proof := &lib.Proof{
		PrimaryRandom:   priR,
		SecondaryRandom: secR,
		PrimarySwaps:    priSwaps,
		SecondarySwaps:  secSwaps,
		CommitmentHash:  lib.Commit(secondary),
	}
	log.Lvlf3("mixed %d ballots, commitment %x", len(ballots), proof.CommitmentHash)
	return primary, proof, nil
}

func reEncrypt(key *lib.PublicKey, ballots []*big.Int, r *big.Int) []*big.Int {
	out := make([]*big.Int, len(ballots))
	for i, b := range ballots {
		out[i] = lib.ReEncrypt(key, b, r)
	}
	return out
}

// permute shuffles list in place by swapping every position i with a uniform
// position in [i, len(list)). It returns the list and the swap trace.
func permute(list []*big.Int, rand cipher.Stream) ([]*big.Int, []int) {
	swaps := make([]int, len(list))
	for i := range list {
		j := lib.RandomIndex(i, len(list), rand)
		list[i], list[j] = list[j], list[i]
		swaps[i] = j
	}
	return list, swaps
}

// applySwaps replays a swap trace on a copy of list.
func applySwaps(list []*big.Int, swaps []int) ([]*big.Int, error) {
	if len(list) != len(swaps) {
		return nil, xerrors.Errorf("trace of %d swaps for %d ballots: %w",
			len(swaps), len(list), lib.ErrInvalidProof)
	}
	out := append([]*big.Int{}, list...)
	for i, j := range swaps {
		if j < i || j >= len(out) {
			return nil, xerrors.Errorf("swap %d->%d out of range: %w", i, j, lib.ErrInvalidProof)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
