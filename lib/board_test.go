package lib

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulletinBoard_ConcurrentAppend(t *testing.T) {
	board := NewBulletinBoard()
	voters, ballots := 20, 50

	var wg sync.WaitGroup
	for v := 0; v < voters; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			for b := 0; b < ballots; b++ {
				board.Append(big.NewInt(int64(v*ballots + b)))
			}
		}(v)
	}
	wg.Wait()

	require.Equal(t, voters*ballots, board.Len())
	seen := make(map[int64]bool)
	for _, c := range board.Ballots() {
		require.False(t, seen[c.Int64()], "ballot %v appended twice", c)
		seen[c.Int64()] = true
	}
	require.Equal(t, voters*ballots, len(seen))
}

func TestBulletinBoard_Snapshot(t *testing.T) {
	board := NewBulletinBoard()
	c := big.NewInt(7)
	board.Append(c)
	// the board keeps its own copy
	c.SetInt64(8)

	snapshot := board.Ballots()
	board.Append(big.NewInt(9))
	require.Len(t, snapshot, 1)
	require.Equal(t, int64(7), snapshot[0].Int64())
	require.Equal(t, 2, board.Len())

	snapshot[0].SetInt64(10)
	require.Equal(t, int64(7), board.Ballots()[0].Int64())
}

func TestBulletinBoard_Shuffled(t *testing.T) {
	board := NewBulletinBoard()
	require.Nil(t, board.Shuffled())

	mix := []*big.Int{big.NewInt(3), big.NewInt(1)}
	board.SetShuffled(mix)
	mix[0].SetInt64(5)
	require.Equal(t, int64(3), board.Shuffled()[0].Int64())

	board.SetShuffled([]*big.Int{big.NewInt(4)})
	require.Len(t, board.Shuffled(), 1)
	// publishing a mix leaves the cast ballots alone
	require.Equal(t, 0, board.Len())
}
