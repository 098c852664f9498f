package protocol

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mixvote/lib"
	"golang.org/x/xerrors"
)

var candidates = []string{"ann", "bob", "cid"}

func TestTallyElection(t *testing.T) {
	kp := genKey(t)
	e, err := lib.NewElection("owner@example.org", "council", candidates, kp)
	require.NoError(t, err)

	for i, v := range []int64{0, 1, 0, 2, 1, 1} {
		user := string(rune('a'+i)) + "@example.org"
		_, err := e.Join(user)
		require.NoError(t, err)
		c, err := lib.Encrypt(big.NewInt(v), kp.Public, 32)
		require.NoError(t, err)
		require.NoError(t, e.Cast(user, c))
	}

	_, err = TallyElection(e)
	require.True(t, xerrors.Is(err, lib.ErrTally), "tally before mix")

	_, err = e.Shuffle(NewMixNet(kp.Public, 64), 1)
	require.NoError(t, err)

	res, err := TallyElection(e)
	require.NoError(t, err)
	require.Equal(t, lib.TallyResult{"ann": 2, "bob": 3, "cid": 1}, res)
	require.Equal(t, lib.Closed, e.Stage())

	_, err = TallyElection(e)
	require.True(t, xerrors.Is(err, lib.ErrTally))
}

func TestTally_Invalid(t *testing.T) {
	kp := genKey(t)

	_, err := Tally(nil, candidates, kp.Private)
	require.True(t, xerrors.Is(err, lib.ErrTally))
	_, err = Tally([]*big.Int{}, candidates, kp.Private)
	require.True(t, xerrors.Is(err, lib.ErrTally))

	ballots := encryptAll(t, kp.Public, 0, 3)
	_, err = Tally(ballots, candidates, kp.Private)
	require.True(t, xerrors.Is(err, lib.ErrTally))

	_, err = Tally(ballots[:1], nil, kp.Private)
	require.True(t, xerrors.Is(err, lib.ErrTally))

	_, err = Tally([]*big.Int{big.NewInt(0)}, candidates, kp.Private)
	require.True(t, xerrors.Is(err, lib.ErrTally))

	res, err := Tally(ballots[:1], candidates, kp.Private)
	require.NoError(t, err)
	require.Equal(t, lib.TallyResult{"ann": 1, "bob": 0, "cid": 0}, res)
}
