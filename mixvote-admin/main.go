// The mixvote-admin tool generates election keys, runs whole elections
// locally and reads the audit archive.
package main

import (
	"os"
	"path/filepath"

	"go.dedis.ch/mixvote"
	"go.dedis.ch/onet/v3/cfgpath"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
	"gopkg.in/urfave/cli.v1"
)

const (
	configName  = "mixvote.toml"
	archiveName = "archive.db"
)

// getDataPath is a function pointer so that tests can redirect it.
var getDataPath = cfgpath.GetDataPath

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "mixvote-admin"
	cliApp.Usage = "Run and audit mix-net elections."
	cliApp.Version = "0.1"
	cliApp.Commands = cmds
	cliApp.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "debug, d",
			Value: 0,
			Usage: "debug-level: 1 for terse, 5 for maximal",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: getDataPath("mixvote"),
			Usage: "directory holding " + configName + " and the archive",
		},
	}
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.Int("debug"))
		return nil
	}
	log.ErrFatal(cliApp.Run(os.Args))
}

// loadConfig reads the configuration of dir. Missing files give the
// defaults, and an unset archive lives in dir.
func loadConfig(dir string) (*mixvote.Config, error) {
	cfg := mixvote.DefaultConfig()
	path := filepath.Join(dir, configName)
	if _, err := os.Stat(path); err == nil {
		cfg, err = mixvote.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, xerrors.Errorf("reading config: %w", err)
	}
	if cfg.Archive == "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, xerrors.Errorf("creating %s: %w", dir, err)
		}
		cfg.Archive = filepath.Join(dir, archiveName)
	}
	log.Lvl2("using config", path)
	return cfg, nil
}
