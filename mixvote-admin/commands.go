package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"go.dedis.ch/mixvote"
	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/mixvote/protocol"
	"go.dedis.ch/mixvote/service"
	"go.dedis.ch/onet/v3/log"
	"gopkg.in/urfave/cli.v1"
)

var cmds = cli.Commands{
	{
		Name:    "keygen",
		Usage:   "generate a Paillier key pair",
		Aliases: []string{"k"},
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "bits, b",
				Usage: "bit length of each prime, 0 for the configured one",
			},
		},
		Action: keygen,
	},
	{
		Name:    "simulate",
		Usage:   "run a whole election with simulated voters",
		Aliases: []string{"s"},
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "voters, v",
				Value: 10,
				Usage: "number of voters",
			},
			cli.StringFlag{
				Name:  "candidates",
				Value: "ann,bob,cid",
				Usage: "comma separated list of candidates",
			},
			cli.StringFlag{
				Name:  "title, t",
				Value: "simulation",
				Usage: "title of the election",
			},
		},
		Action: simulate,
	},
	{
		Name:    "archive",
		Usage:   "read the audit archive",
		Aliases: []string{"a"},
		Subcommands: cli.Commands{
			{
				Name:   "list",
				Usage:  "list the archived elections",
				Action: archiveList,
			},
			{
				Name:      "show",
				Usage:     "show one archived election",
				ArgsUsage: "election-id",
				Flags: []cli.Flag{
					cli.IntFlag{
						Name:  "depth",
						Usage: "challenge bits to disclose, 0 for the configured depth",
					},
				},
				Action: archiveShow,
			},
		},
	},
}

func keygen(c *cli.Context) error {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	bits := cfg.KeyBits
	if c.Int("bits") > 0 {
		bits = c.Int("bits")
	}
	kp, err := lib.GenerateKeyPair(bits, cfg.Certainty)
	if err != nil {
		return err
	}
	color.Info.Println("Public key")
	fmt.Printf("n:  %v\nn²: %v\ng:  %v\n", kp.Public.N, kp.Public.NSquared, kp.Public.G)
	color.Info.Println("Private key")
	fmt.Printf("λ:  %v\nu:  %v\n", kp.Private.Lambda, kp.Private.U)
	return nil
}

func simulate(c *cli.Context) error {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	var candidates []string
	for _, name := range strings.Split(c.String("candidates"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			candidates = append(candidates, name)
		}
	}
	res, err := doSimulate(cfg, c.String("title"), candidates, c.Int("voters"), os.Stdout)
	if err != nil {
		return err
	}
	printResults(os.Stdout, candidates, res.Results)
	return nil
}

// simulation is the outcome of doSimulate.
type simulation struct {
	ID       string
	Results  lib.TallyResult
	Verified []bool
	// Cast are the plaintext votes, in casting order.
	Cast []int
}

// doSimulate opens an election, lets every voter cast a random choice, mixes
// the ballots, reveals the proofs and tallies.
func doSimulate(cfg *mixvote.Config, title string, candidates []string, voters int, out io.Writer) (*simulation, error) {
	if voters < 1 {
		return nil, errors.New("need at least one voter")
	}
	s, err := service.New(cfg, service.NewMemoryElections(), service.NewMemoryUsers())
	if err != nil {
		return nil, err
	}
	defer s.Close()

	const owner = "admin@mixvote"
	if _, err := s.Register(&service.Register{Email: owner, Name: "admin"}); err != nil {
		return nil, err
	}
	open, err := s.Open(&service.Open{Owner: owner, Title: title, Candidates: candidates})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Opened election %s, join code %s\n", open.ID, open.Code)

	sim := &simulation{ID: open.ID}
	rand := lib.NewStream()
	bar := progressbar.NewOptions(voters,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("casting"))
	for v := 0; v < voters; v++ {
		user := fmt.Sprintf("voter%d@mixvote", v)
		if _, err := s.Register(&service.Register{Email: user}); err != nil {
			return nil, err
		}
		if _, err := s.Join(&service.Join{User: user, Code: open.Code}); err != nil {
			return nil, err
		}
		choice := lib.RandomIndex(0, len(candidates), rand)
		_, err := s.Cast(&service.Cast{User: user, ID: open.ID, Candidate: candidates[choice]})
		if err != nil {
			return nil, err
		}
		sim.Cast = append(sim.Cast, choice)
		if err := bar.Add(1); err != nil {
			log.Warn("progress bar:", err)
		}
	}

	mix, err := s.Shuffle(&service.Shuffle{User: owner, ID: open.ID})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Mixed %d ballots, commitment %x\n", mix.Ballots, mix.Proof.CommitmentHash)

	reveal, err := s.RevealProofs(&service.RevealProofs{ID: open.ID})
	if err != nil {
		return nil, err
	}
	sim.Verified = reveal.Verified
	for round, ok := range reveal.Verified {
		if ok {
			color.Fprintf(out, "Round %d: <suc>verified</>\n", round+1)
		} else {
			color.Fprintf(out, "Round %d: <error>verification failed</>\n", round+1)
		}
	}

	tally, err := s.Tally(&service.Tally{User: owner, ID: open.ID})
	if err != nil {
		return nil, err
	}
	sim.Results = tally.Results
	return sim, nil
}

func printResults(out io.Writer, candidates []string, res lib.TallyResult) {
	for _, c := range candidates {
		color.Fprintf(out, "%s: <suc>%d</>\n", c, res[c])
	}
}

func archiveList(c *cli.Context) error {
	records, err := readArchive(c.GlobalString("config"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("archive is empty")
		return nil
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Closed < records[j].Closed })
	for _, r := range records {
		fmt.Printf("%s\t%s\t%s\t%d ballots\n", r.ID,
			time.Unix(r.Closed, 0).Format(time.RFC3339), r.Title, len(r.Ballots))
	}
	return nil
}

func readArchive(dir string) ([]*service.Record, error) {
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	a, err := service.OpenArchive(cfg.Archive)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.List()
}

func archiveShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("please give the election id")
	}
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	depth := cfg.RevealDepth
	if c.Int("depth") > 0 {
		depth = c.Int("depth")
	}
	a, err := service.OpenArchive(cfg.Archive)
	if err != nil {
		return err
	}
	defer a.Close()
	r, err := a.Load(c.Args().First())
	if err != nil {
		return err
	}
	return showRecord(os.Stdout, r, depth)
}

// showRecord prints the record together with the disclosure of every mix
// round, and checks each disclosure against the archived ballots.
func showRecord(out io.Writer, r *service.Record, depth int) error {
	color.Fprintf(out, "<info>%s</> (code %s)\n", r.Title, r.Code)
	fmt.Fprintf(out, "Owner: %s\nClosed: %s\nBallots: %d\n", r.Owner,
		time.Unix(r.Closed, 0).Format(time.RFC3339), len(r.Ballots))
	printResults(out, r.Candidates, r.Results())

	key := lib.NewPublicKey(new(big.Int).SetBytes(r.N))
	ballots := service.BytesToInts(r.Ballots)
	for i, p := range r.Proofs() {
		text, err := protocol.Reveal(p, depth)
		if err != nil {
			return err
		}
		color.Fprintf(out, "<info>Mix round %d</>\n", i+1)
		fmt.Fprint(out, text)

		shuffled := service.BytesToInts(r.Mixes[i].Shuffled)
		if len(shuffled) > len(ballots) {
			return fmt.Errorf("mix round %d has more ballots than the board", i+1)
		}
		err = protocol.Verify(key, ballots[:len(shuffled)], shuffled, p, depth)
		if err != nil {
			color.Fprintf(out, "<error>%v</>\n", err)
		} else {
			color.Fprintf(out, "<suc>verified</>\n")
		}
	}
	return nil
}
