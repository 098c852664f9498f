package lib

import (
	"math/big"
	"sync"
)

// BulletinBoard is the public record of an election: the ballots cast so
// far and, once mixed, their shuffled re-encryptions. Ballots can be
// appended concurrently; the order among concurrent appends is not
// specified.
type BulletinBoard struct {
	sync.RWMutex
	ballots  []*big.Int
	shuffled []*big.Int
}

// NewBulletinBoard returns an empty board.
func NewBulletinBoard() *BulletinBoard {
	return &BulletinBoard{}
}

// Append adds a ballot to the board.
func (b *BulletinBoard) Append(c *big.Int) {
	ballot := new(big.Int).Set(c)
	b.Lock()
	b.ballots = append(b.ballots, ballot)
	b.Unlock()
}

// Ballots returns a snapshot of the ballots cast so far. Later appends do not
// change the returned slice.
func (b *BulletinBoard) Ballots() []*big.Int {
	b.RLock()
	defer b.RUnlock()
	return copyInts(b.ballots)
}

// Len returns the number of ballots cast so far.
func (b *BulletinBoard) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.ballots)
}

// SetShuffled publishes the output of a mix round, replacing the previous
// one.
func (b *BulletinBoard) SetShuffled(shuffled []*big.Int) {
	cp := copyInts(shuffled)
	b.Lock()
	b.shuffled = cp
	b.Unlock()
}

// Shuffled returns the last published mix, or nil if the board has not been
// mixed yet.
func (b *BulletinBoard) Shuffled() []*big.Int {
	b.RLock()
	defer b.RUnlock()
	if b.shuffled == nil {
		return nil
	}
	return copyInts(b.shuffled)
}

func copyInts(in []*big.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		out[i] = new(big.Int).Set(v)
	}
	return out
}
