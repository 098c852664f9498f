package protocol

import (
	"math/big"

	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Tally decrypts every shuffled ballot and counts the ballots per candidate.
// A ballot that does not decrypt to a candidate index fails the whole tally.
func Tally(shuffled []*big.Int, candidates []string, sk *lib.PrivateKey) (lib.TallyResult, error) {
	if len(shuffled) == 0 {
		return nil, xerrors.Errorf("no shuffled ballots: %w", lib.ErrTally)
	}
	if len(candidates) == 0 {
		return nil, xerrors.Errorf("no candidates: %w", lib.ErrTally)
	}

	counts := make([]int, len(candidates))
	limit := big.NewInt(int64(len(candidates)))
	for i, c := range shuffled {
		m, err := lib.Decrypt(c, sk)
		if err != nil {
			return nil, xerrors.Errorf("ballot %d: %v: %w", i, err, lib.ErrTally)
		}
		if m.Cmp(limit) >= 0 {
			return nil, xerrors.Errorf("ballot %d decrypts to %v: %w", i, m, lib.ErrTally)
		}
		counts[m.Int64()]++
	}

	result := make(lib.TallyResult, len(candidates))
	for j, name := range candidates {
		result[name] = counts[j]
	}
	log.Lvl3("counted", len(shuffled), "ballots")
	return result, nil
}

// TallyElection counts the shuffled ballots of e and closes it.
func TallyElection(e *lib.Election) (lib.TallyResult, error) {
	return e.Close(Tally)
}
