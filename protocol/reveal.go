package protocol

import (
	"fmt"
	"math/big"
	"strings"

	"go.dedis.ch/mixvote/lib"
	"golang.org/x/xerrors"
)

// DefaultRevealDepth is the number of challenge bits disclosed when no depth
// is configured.
const DefaultRevealDepth = 10

// SwapPair is one step of the swap traces. Primary is -1 when the primary
// trace is withheld.
type SwapPair struct {
	Primary   int
	Secondary int
}

// Disclosure is what a single challenge bit opens of a mix round.
type Disclosure struct {
	Bit             uint
	PrimaryRandom   *big.Int // PrimaryRandom is nil for an unset bit.
	SecondaryRandom *big.Int
	Swaps           []SwapPair
}

// Disclose opens the proof for the first depth challenge bits. A set bit
// discloses both randomizers and both swap traces, an unset bit only the
// secondary randomizer and trace.
func Disclose(p *lib.Proof, depth int) ([]Disclosure, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if depth < 1 || depth > p.ChallengeBits() {
		return nil, xerrors.Errorf("depth %d not in [1, %d]: %w", depth, p.ChallengeBits(), lib.ErrInvalidProof)
	}

	out := make([]Disclosure, depth)
	for j := range out {
		d := Disclosure{
			Bit:             p.ChallengeBit(j),
			SecondaryRandom: p.SecondaryRandom,
			Swaps:           make([]SwapPair, len(p.SecondarySwaps)),
		}
		if d.Bit == 1 {
			d.PrimaryRandom = p.PrimaryRandom
		}
		for k, s := range p.SecondarySwaps {
			d.Swaps[k] = SwapPair{Primary: -1, Secondary: s}
			if d.Bit == 1 {
				d.Swaps[k].Primary = p.PrimarySwaps[k]
			}
		}
		out[j] = d
	}
	return out, nil
}

// Reveal renders the disclosure of the first depth challenge bits as text,
// one line per item.
func Reveal(p *lib.Proof, depth int) (string, error) {
	ds, err := Disclose(p, depth)
	if err != nil {
		return "", err
	}
	str := new(strings.Builder)
	for _, d := range ds {
		fmt.Fprintf(str, "Bit: %d.\n", d.Bit)
		if d.Bit == 1 {
			fmt.Fprintf(str, "Primary Random: %v.\n", d.PrimaryRandom)
		}
		fmt.Fprintf(str, "Secondary Random: %v.\n", d.SecondaryRandom)
		for _, s := range d.Swaps {
			if d.Bit == 1 {
				fmt.Fprintf(str, "Primary Swap: %d. Secondary Swap: %d.\n", s.Primary, s.Secondary)
			} else {
				fmt.Fprintf(str, "Swap: %d.\n", s.Secondary)
			}
		}
	}
	return str.String(), nil
}
