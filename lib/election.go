package lib

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	uuid "github.com/satori/go.uuid"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// ElectionState is the stage an election is in.
type ElectionState uint32

const (
	// Running depicts that an election is open for ballot casting
	Running ElectionState = iota + 1
	// Shuffled depicts that the ballots have been mixed at least once
	Shuffled
	// Closed depicts that the ballots have been counted
	Closed
)

func (s ElectionState) String() string {
	switch s {
	case Running:
		return "running"
	case Shuffled:
		return "shuffled"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("ElectionState(%d)", uint32(s))
}

// TallyResult maps every candidate to the number of ballots it received.
type TallyResult map[string]int

// Mix is the outcome of one mix round.
type Mix struct {
	// Ballots are permuted and re-encrypted.
	Ballots []*big.Int
	// Proof of the shuffle.
	Proof *Proof
}

// Mixer re-encrypts and permutes a snapshot of ballots.
type Mixer interface {
	Mix(ballots []*big.Int) ([]*big.Int, *Proof, error)
}

// CountFunc decrypts and counts shuffled ballots.
type CountFunc func(shuffled []*big.Int, candidates []string, sk *PrivateKey) (TallyResult, error)

// Election is one voting procedure with its own key pair and bulletin
// board. Mixes and their proofs are only ever appended.
type Election struct {
	ID         string   // ID is a random UUID.
	Code       string   // Code is the first segment of ID, given to voters to join.
	Title      string   // Title of the election.
	Owner      string   // Owner created the election.
	Candidates []string // Candidates in ballot order, a ballot holds an index into it.

	Key   *KeyPair
	Board *BulletinBoard

	// finalize serializes mix rounds and the tally.
	finalize sync.Mutex

	mutex        sync.Mutex
	stage        ElectionState
	participants map[string]bool
	mixes        []*Mix
	results      TallyResult
}

// NewElection creates a running election owned by owner. The owner is the
// first participant.
func NewElection(owner, title string, candidates []string, key *KeyPair) (*Election, error) {
	if key == nil || !key.Public.valid() || !key.Private.valid() {
		return nil, xerrors.New("election needs a valid key pair")
	}
	if len(candidates) == 0 {
		return nil, xerrors.New("election needs at least one candidate")
	}
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c == "" {
			return nil, xerrors.New("empty candidate name")
		}
		if seen[c] {
			return nil, xerrors.Errorf("candidate %q listed twice", c)
		}
		seen[c] = true
	}
	if key.Public.N.Cmp(big.NewInt(int64(len(candidates)))) <= 0 {
		return nil, xerrors.New("key modulus too small for the candidate list")
	}

	id := uuid.NewV4().String()
	e := &Election{
		ID:           id,
		Code:         id[:strings.Index(id, "-")],
		Title:        title,
		Owner:        owner,
		Candidates:   append([]string{}, candidates...),
		Key:          key,
		Board:        NewBulletinBoard(),
		stage:        Running,
		participants: map[string]bool{owner: false},
	}
	return e, nil
}

// Join adds user to the participants. It returns false if the user had
// already joined.
func (e *Election) Join(user string) (bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.stage == Closed {
		return false, ErrElectionClosed
	}
	if _, ok := e.participants[user]; ok {
		return false, nil
	}
	e.participants[user] = false
	return true, nil
}

// IsUser checks if user has joined the election.
func (e *Election) IsUser(user string) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	_, ok := e.participants[user]
	return ok
}

// IsCreator checks if user owns the election.
func (e *Election) IsCreator(user string) bool {
	return user == e.Owner
}

// HasVoted checks if user has cast a ballot.
func (e *Election) HasVoted(user string) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.participants[user]
}

// Participants returns the sorted list of users who joined.
func (e *Election) Participants() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	users := make([]string, 0, len(e.participants))
	for u := range e.participants {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// CandidateIndex returns the plaintext that encodes a vote for name.
func (e *Election) CandidateIndex(name string) (int, error) {
	for i, c := range e.Candidates {
		if c == name {
			return i, nil
		}
	}
	return -1, xerrors.Errorf("%q: %w", name, ErrUnknownCandidate)
}

// Cast appends the ballot of user to the board. Every participant votes at
// most once and only until the election is closed.
func (e *Election) Cast(user string, ballot *big.Int) error {
	if !e.Key.Public.Contains(ballot) {
		return xerrors.Errorf("ballot out of range: %w", ErrEncryption)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	switch voted, ok := e.participants[user]; {
	case e.stage == Closed:
		return ErrElectionClosed
	case !ok:
		return xerrors.Errorf("%s: %w", user, ErrNotParticipant)
	case voted:
		return xerrors.Errorf("%s: %w", user, ErrAlreadyVoted)
	}
	e.Board.Append(ballot)
	e.participants[user] = true
	return nil
}

// Stage returns the current stage of the election.
func (e *Election) Stage() ElectionState {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.stage
}

// Shuffle runs one mix round over a snapshot of the board. The shuffled
// ballots are published on the board and the mix is appended to the
// election. Every round mixes all the ballots cast so far; at most maxRounds
// rounds can run.
func (e *Election) Shuffle(m Mixer, maxRounds int) (*Proof, error) {
	e.finalize.Lock()
	defer e.finalize.Unlock()

	e.mutex.Lock()
	stage, rounds := e.stage, len(e.mixes)
	e.mutex.Unlock()
	if stage == Closed {
		return nil, xerrors.Errorf("election closed: %w", ErrMix)
	}
	if rounds >= maxRounds {
		return nil, xerrors.Errorf("already mixed %d time(s): %w", rounds, ErrMix)
	}

	snapshot := e.Board.Ballots()
	shuffled, proof, err := m.Mix(snapshot)
	if err != nil {
		return nil, err
	}

	e.Board.SetShuffled(shuffled)
	e.mutex.Lock()
	e.mixes = append(e.mixes, &Mix{Ballots: shuffled, Proof: proof})
	e.stage = Shuffled
	e.mutex.Unlock()
	log.Lvlf2("election %s: mixed %d ballots, round %d", e.ID, len(snapshot), rounds+1)
	return proof, nil
}

// Close counts the shuffled ballots with count, stores the result and
// closes the election. It fails if the election was closed already.
func (e *Election) Close(count CountFunc) (TallyResult, error) {
	e.finalize.Lock()
	defer e.finalize.Unlock()

	if e.Stage() == Closed {
		return nil, xerrors.Errorf("election already tallied: %w", ErrTally)
	}
	result, err := count(e.Board.Shuffled(), e.Candidates, e.Key.Private)
	if err != nil {
		return nil, err
	}

	e.mutex.Lock()
	e.results = result
	e.stage = Closed
	e.mutex.Unlock()
	log.Lvlf2("election %s: closed", e.ID)
	return copyResult(result), nil
}

// Mixes returns all mix rounds, oldest first.
func (e *Election) Mixes() []*Mix {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]*Mix{}, e.mixes...)
}

// Proofs returns the proofs of all mix rounds, oldest first.
func (e *Election) Proofs() []*Proof {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	proofs := make([]*Proof, len(e.mixes))
	for i, m := range e.mixes {
		proofs[i] = m.Proof
	}
	return proofs
}

// MixInput returns the ballots that went into the given mix round. The
// board is append-only, so they are the first ballots of the board.
func (e *Election) MixInput(round int) ([]*big.Int, error) {
	mixes := e.Mixes()
	if round < 0 || round >= len(mixes) {
		return nil, xerrors.Errorf("no mix round %d", round)
	}
	ballots := e.Board.Ballots()
	return ballots[:len(mixes[round].Ballots)], nil
}

// Results returns the tally, or nil while the election is not closed.
func (e *Election) Results() TallyResult {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.results == nil {
		return nil
	}
	return copyResult(e.results)
}

func copyResult(r TallyResult) TallyResult {
	out := make(TallyResult, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (e *Election) String() string {
	str := new(strings.Builder)

	fmt.Fprintf(str, "Election %s (code %s)\n", e.ID, e.Code)
	fmt.Fprintf(str, "Title: %v\n", e.Title)
	fmt.Fprintf(str, "Owner: %v\n", e.Owner)
	fmt.Fprintf(str, "Candidates: %v\n", e.Candidates)
	fmt.Fprintf(str, "Stage: %v\n", e.Stage())
	fmt.Fprintf(str, "Ballots: %d\n", e.Board.Len())
	fmt.Fprintf(str, "Mix rounds: %d\n", len(e.Proofs()))
	fmt.Fprintf(str, "Election pubkey: %v\n", e.Key.Public)

	return str.String()
}
