package lib

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIndex_SingleChoice(t *testing.T) {
	rand := NewStream()
	for i := 0; i < 5; i++ {
		require.Equal(t, i, RandomIndex(i, i+1, rand))
	}
	require.Equal(t, 0, randomBelow(1, rand))
}

func TestRandomIndex_Range(t *testing.T) {
	const draws = 3000
	rand := NewStream()
	counts := make([]int, 3)
	for d := 0; d < draws; d++ {
		i := RandomIndex(4, 7, rand)
		require.True(t, i >= 4 && i < 7, "index %d", i)
		counts[i-4]++
	}
	// the lower bound is drawn as often as the others
	for i, n := range counts {
		assert.InDelta(t, draws/3, n, 150, "index %d", i+4)
	}

	zeros := 0
	for d := 0; d < 2000; d++ {
		if RandomIndex(0, 2, rand) == 0 {
			zeros++
		}
	}
	assert.InDelta(t, 1000, zeros, 150)
}

func TestRandomCoprime(t *testing.T) {
	n := big.NewInt(2 * 3 * 5 * 7)
	rand := NewStream()
	for i := 0; i < 20; i++ {
		r := RandomCoprime(16, n, rand)
		require.Equal(t, 16, r.BitLen())
		require.Equal(t, int64(1), new(big.Int).GCD(nil, nil, r, n).Int64())
	}
}
