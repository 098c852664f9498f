package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mixvote/service"
	"go.dedis.ch/onet/v3/log"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func Test(t *testing.T) {
	dir, err := ioutil.TempDir("", "mixvote-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	getDataPath = func(in string) string {
		return dir
	}

	cfg, err := loadConfig(getDataPath("mixvote"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, archiveName), cfg.Archive)

	candidates := []string{"ann", "bob", "cid"}
	out := new(bytes.Buffer)
	sim, err := doSimulate(cfg, "test", candidates, 12, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), sim.ID)
	require.Equal(t, []bool{true}, sim.Verified)

	expected := make(map[string]int)
	for _, c := range candidates {
		expected[c] = 0
	}
	for _, v := range sim.Cast {
		expected[candidates[v]]++
	}
	require.Len(t, sim.Cast, 12)
	for c, n := range expected {
		require.Equal(t, n, sim.Results[c], "votes for %s", c)
	}

	a, err := service.OpenArchive(cfg.Archive)
	require.NoError(t, err)
	r, err := a.Load(sim.ID)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	out.Reset()
	require.NoError(t, showRecord(out, r, 4))
	require.Equal(t, 4, strings.Count(out.String(), "Bit: "))
	require.Contains(t, out.String(), "verified")

	records, err := readArchive(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = doSimulate(cfg, "test", candidates, 0, out)
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "mixvote-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	toml := "KeyBits = 64\nMaxMixRounds = 2\nArchive = \"" +
		filepath.ToSlash(filepath.Join(dir, "other.db")) + "\"\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, configName), []byte(toml), 0600))

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.KeyBits)
	require.Equal(t, 2, cfg.MaxMixRounds)
	require.Equal(t, filepath.ToSlash(filepath.Join(dir, "other.db")), cfg.Archive)

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, configName), []byte("KeyBits = 2"), 0600))
	_, err = loadConfig(dir)
	require.Error(t, err)
}

func TestSimulate_SingleCandidate(t *testing.T) {
	dir, err := ioutil.TempDir("", "mixvote-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	out := new(bytes.Buffer)
	sim, err := doSimulate(cfg, "single", []string{"ann"}, 3, out)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0}, sim.Cast)
	require.Equal(t, 3, sim.Results["ann"])
	require.Equal(t, []bool{true}, sim.Verified)

	// a single voter leaves a one ballot board to mix
	sim, err = doSimulate(cfg, "lonely", []string{"ann", "bob"}, 1, out)
	require.NoError(t, err)
	require.Len(t, sim.Cast, 1)
	require.Equal(t, 1, sim.Results[[]string{"ann", "bob"}[sim.Cast[0]]])
}
