package protocol

import (
	"math/big"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func genKey(t *testing.T) *lib.KeyPair {
	kp, err := lib.GenerateKeyPair(128, 64)
	require.NoError(t, err)
	return kp
}

func encryptAll(t *testing.T, pk *lib.PublicKey, votes ...int64) []*big.Int {
	out := make([]*big.Int, len(votes))
	for i, v := range votes {
		c, err := lib.Encrypt(big.NewInt(v), pk, 32)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func decryptSorted(t *testing.T, sk *lib.PrivateKey, cs []*big.Int) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		m, err := lib.Decrypt(c, sk)
		require.NoError(t, err)
		out[i] = m.Int64()
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestMixNet_Mix(t *testing.T) {
	kp := genKey(t)
	ballots := encryptAll(t, kp.Public, 0, 1, 0, 2, 1, 1)
	before := lib.Commit(ballots)

	shuffled, proof, err := NewMixNet(kp.Public, 64).Mix(ballots)
	require.NoError(t, err)
	require.NoError(t, proof.Check())
	require.Len(t, shuffled, len(ballots))
	require.Equal(t, before, lib.Commit(ballots), "input was modified")

	require.Equal(t, []int64{0, 0, 1, 1, 1, 2}, decryptSorted(t, kp.Private, shuffled))
	require.Equal(t, 64, proof.PrimaryRandom.BitLen())
	require.Equal(t, 64, proof.SecondaryRandom.BitLen())
	for i, s := range proof.PrimarySwaps {
		require.True(t, s >= i && s < len(ballots))
	}

	// every ballot got re-encrypted
	for _, s := range shuffled {
		for _, b := range ballots {
			require.NotEqual(t, 0, s.Cmp(b))
		}
	}
}

func TestMixNet_SingleBallot(t *testing.T) {
	kp := genKey(t)
	ballots := encryptAll(t, kp.Public, 2)

	shuffled, proof, err := NewMixNet(kp.Public, 64).Mix(ballots)
	require.NoError(t, err)
	require.Equal(t, []int{0}, proof.PrimarySwaps)
	require.Equal(t, []int{0}, proof.SecondarySwaps)
	require.Equal(t, []int64{2}, decryptSorted(t, kp.Private, shuffled))
	require.NoError(t, Verify(kp.Public, ballots, shuffled, proof, proof.ChallengeBits()))

	out, swaps := permute([]*big.Int{big.NewInt(7)}, lib.NewStream())
	require.Equal(t, []int{0}, swaps)
	require.Equal(t, int64(7), out[0].Int64())
}

func TestMixNet_Independent(t *testing.T) {
	kp := genKey(t)
	votes := make([]int64, 20)
	for i := range votes {
		votes[i] = int64(i)
	}
	ballots := encryptAll(t, kp.Public, votes...)
	mixer := NewMixNet(kp.Public, 64)

	a, pa, err := mixer.Mix(ballots)
	require.NoError(t, err)
	b, pb, err := mixer.Mix(ballots)
	require.NoError(t, err)

	order := func(cs []*big.Int) []int64 {
		out := make([]int64, len(cs))
		for i, c := range cs {
			m, err := lib.Decrypt(c, kp.Private)
			require.NoError(t, err)
			out[i] = m.Int64()
		}
		return out
	}
	require.NotEqual(t, order(a), order(b))
	require.NotEqual(t, pa.CommitmentHash, pb.CommitmentHash)
	for i := range a {
		require.NotEqual(t, 0, a[i].Cmp(b[i]))
	}
}

func TestMixNet_Invalid(t *testing.T) {
	kp := genKey(t)

	_, _, err := NewMixNet(kp.Public, 64).Mix(nil)
	require.True(t, xerrors.Is(err, lib.ErrMix))

	_, _, err = NewMixNet(nil, 64).Mix(encryptAll(t, kp.Public, 1))
	require.True(t, xerrors.Is(err, lib.ErrMix))

	_, _, err = NewMixNet(kp.Public, 1).Mix(encryptAll(t, kp.Public, 1))
	require.True(t, xerrors.Is(err, lib.ErrMix))

	_, _, err = NewMixNet(kp.Public, 64).Mix([]*big.Int{kp.Public.NSquared})
	require.True(t, xerrors.Is(err, lib.ErrMix))

	_, _, err = NewMixNet(kp.Public, 64).Mix([]*big.Int{nil})
	require.True(t, xerrors.Is(err, lib.ErrMix))
}

// All 3! orders of a three ballot list should come out of permute about
// equally often.
func TestPermute_Uniform(t *testing.T) {
	const runs = 6000
	counts := make(map[[3]int64]int)
	rand := lib.NewStream()
	for r := 0; r < runs; r++ {
		list := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2)}
		out, _ := permute(list, rand)
		counts[[3]int64{out[0].Int64(), out[1].Int64(), out[2].Int64()}]++
	}
	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, runs/6, n, 200, "permutation %v", perm)
	}
}

func TestApplySwaps(t *testing.T) {
	list := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2)}
	out, swaps := permute(append([]*big.Int{}, list...), lib.NewStream())

	replay, err := applySwaps(list, swaps)
	require.NoError(t, err)
	require.Equal(t, out, replay)
	require.Equal(t, int64(0), list[0].Int64())

	_, err = applySwaps(list, []int{0, 1})
	require.True(t, xerrors.Is(err, lib.ErrInvalidProof))
	_, err = applySwaps(list, []int{1, 0, 2})
	require.True(t, xerrors.Is(err, lib.ErrInvalidProof))
	_, err = applySwaps(list, []int{0, 1, 3})
	require.True(t, xerrors.Is(err, lib.ErrInvalidProof))
}
