package protocol

import (
	"bytes"
	"math/big"

	"go.dedis.ch/mixvote/lib"
	"golang.org/x/xerrors"
)

// Verify checks a mix round against its disclosure. The committed shuffle is
// rebuilt from ballots and compared with the commitment hash. If one of the
// first depth challenge bits is set, the published shuffle is rebuilt too and
// compared with shuffled.
func Verify(key *lib.PublicKey, ballots, shuffled []*big.Int, p *lib.Proof, depth int) error {
	ds, err := Disclose(p, depth)
	if err != nil {
		return err
	}
	if key == nil {
		return xerrors.Errorf("no public key: %w", lib.ErrInvalidProof)
	}
	if len(ballots) != len(p.SecondarySwaps) || len(shuffled) != len(ballots) {
		return xerrors.Errorf("%d ballots, %d shuffled, %d swaps: %w",
			len(ballots), len(shuffled), len(p.SecondarySwaps), lib.ErrInvalidProof)
	}
	for i, b := range ballots {
		if !key.Contains(b) {
			return xerrors.Errorf("ballot %d out of range: %w", i, lib.ErrInvalidProof)
		}
	}

	secondary, err := applySwaps(reEncrypt(key, ballots, p.SecondaryRandom), p.SecondarySwaps)
	if err != nil {
		return err
	}
	if !bytes.Equal(lib.Commit(secondary), p.CommitmentHash) {
		return xerrors.Errorf("commitment mismatch: %w", lib.ErrInvalidProof)
	}

	opened := false
	for _, d := range ds {
		opened = opened || d.Bit == 1
	}
	if !opened {
		return nil
	}
	primary, err := applySwaps(reEncrypt(key, ballots, p.PrimaryRandom), p.PrimarySwaps)
	if err != nil {
		return err
	}
	for i := range primary {
		if shuffled[i] == nil || primary[i].Cmp(shuffled[i]) != 0 {
			return xerrors.Errorf("shuffled ballot %d mismatch: %w", i, lib.ErrInvalidProof)
		}
	}
	return nil
}
