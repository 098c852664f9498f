// Package service keeps the users and elections of a voting authority and
// drives them through casting, mixing and tallying.
package service

import (
	"math/big"
	"sync"

	"go.dedis.ch/mixvote"
	"go.dedis.ch/mixvote/lib"
	"go.dedis.ch/mixvote/protocol"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Service is the core structure of the application.
type Service struct {
	config    *mixvote.Config
	elections ElectionStore
	users     UserStore

	mutex   sync.Mutex
	archive *Archive // archive is nil when disabled.
}

// New returns a service over the given stores. A nil config uses the
// defaults. The archive of the config is opened if one is set.
func New(config *mixvote.Config, elections ElectionStore, users UserStore) (*Service, error) {
	if config == nil {
		config = mixvote.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if elections == nil || users == nil {
		return nil, xerrors.New("service needs an election and a user store")
	}

	s := &Service{config: config, elections: elections, users: users}
	if config.Archive != "" {
		a, err := OpenArchive(config.Archive)
		if err != nil {
			return nil, mixvote.ErrorOrNil(err, "starting service")
		}
		s.archive = a
	}
	return s, nil
}

// Close releases the archive.
func (s *Service) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.archive == nil {
		return nil
	}
	err := s.archive.Close()
	s.archive = nil
	return err
}

// Register message handler. Creates or updates a user.
func (s *Service) Register(req *Register) (*RegisterReply, error) {
	created, err := s.users.Put(&User{Email: req.Email, Name: req.Name, Subject: req.Subject})
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	u, err := s.users.Get(req.Email)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	if created {
		log.Lvl2("registered", u.Email)
	}
	return &RegisterReply{Created: created, Subject: u.Subject}, nil
}

// Open message handler. Generates the key pair and creates the election.
func (s *Service) Open(req *Open) (*OpenReply, error) {
	if _, err := s.users.Get(req.Owner); err != nil {
		return nil, mixvote.WrapError(err)
	}
	kp, err := lib.GenerateKeyPair(s.config.KeyBits, s.config.Certainty)
	if err != nil {
		return nil, mixvote.ErrorOrNil(err, "open")
	}
	e, err := lib.NewElection(req.Owner, req.Title, req.Candidates, kp)
	if err != nil {
		return nil, mixvote.ErrorOrNil(err, "open")
	}
	if err := s.elections.Put(e); err != nil {
		return nil, mixvote.ErrorOrNil(err, "open")
	}
	log.Lvlf2("%s opened election %s", req.Owner, e.ID)
	return &OpenReply{ID: e.ID, Code: e.Code, Key: kp.Public}, nil
}

// Join message handler. Adds the user to the election of the join code.
func (s *Service) Join(req *Join) (*JoinReply, error) {
	if _, err := s.users.Get(req.User); err != nil {
		return nil, mixvote.WrapError(err)
	}
	e, err := s.elections.ByCode(req.Code)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	joined, err := e.Join(req.User)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	return &JoinReply{ID: e.ID, Joined: joined}, nil
}

// Cast message handler. Encrypts the index of the candidate and appends the
// ballot to the board.
func (s *Service) Cast(req *Cast) (*CastReply, error) {
	e, err := s.elections.Get(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	index, err := e.CandidateIndex(req.Candidate)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	ballot, err := lib.Encrypt(big.NewInt(int64(index)), e.Key.Public, s.config.EncryptBits)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	if err := e.Cast(req.User, ballot); err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	log.Lvl3(req.User, "voted in", e.ID)
	return &CastReply{Ballot: ballot}, nil
}

// VerifyEncryption message handler. Encrypts the choice like Cast does and
// returns every value of the computation, without touching the board.
func (s *Service) VerifyEncryption(req *VerifyEncryption) (*VerifyEncryptionReply, error) {
	e, err := s.elections.Get(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	if !e.IsUser(req.User) {
		return nil, mixvote.ElectionError(xerrors.Errorf("%s: %w", req.User, lib.ErrNotParticipant), e.ID)
	}
	index, err := e.CandidateIndex(req.Candidate)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}

	m := big.NewInt(int64(index))
	c, r, err := lib.EncryptWithRandom(m, e.Key.Public, s.config.EncryptBits)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	dec, err := lib.Decrypt(c, e.Key.Private)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	pk := e.Key.Public
	return &VerifyEncryptionReply{
		N:         new(big.Int).Set(pk.N),
		NSquared:  new(big.Int).Set(pk.NSquared),
		G:         new(big.Int).Set(pk.G),
		Plaintext: m,
		Random:    r,
		Ballot:    c,
		Decrypted: dec,
	}, nil
}

// Shuffle message handler. Runs one mix round over the ballots cast so far.
func (s *Service) Shuffle(req *Shuffle) (*ShuffleReply, error) {
	e, err := s.ownedElection(req.User, req.ID)
	if err != nil {
		return nil, err
	}
	mixer := protocol.NewMixNet(e.Key.Public, s.config.MixBits)
	proof, err := e.Shuffle(mixer, s.config.MaxMixRounds)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}
	return &ShuffleReply{
		Round:   len(e.Proofs()),
		Ballots: len(proof.PrimarySwaps),
		Proof:   proof,
	}, nil
}

// Tally message handler. Counts the shuffled ballots, closes the election
// and archives it.
func (s *Service) Tally(req *Tally) (*TallyReply, error) {
	e, err := s.ownedElection(req.User, req.ID)
	if err != nil {
		return nil, err
	}
	res, err := protocol.TallyElection(e)
	if err != nil {
		return nil, mixvote.ElectionError(err, e.ID)
	}

	s.mutex.Lock()
	archive := s.archive
	s.mutex.Unlock()
	if archive != nil {
		if err := archive.Store(NewRecord(e)); err != nil {
			// The election is closed either way.
			log.Error("couldn't archive", e.ID, err)
		}
	}
	return &TallyReply{Results: res}, nil
}

// GetBox message handler.
func (s *Service) GetBox(req *GetBox) (*GetBoxReply, error) {
	e, err := s.elections.Get(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	return &GetBoxReply{Ballots: e.Board.Ballots(), Shuffled: e.Board.Shuffled()}, nil
}

// GetProofs message handler.
func (s *Service) GetProofs(req *GetProofs) (*GetProofsReply, error) {
	e, err := s.elections.Get(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	return &GetProofsReply{Proofs: e.Proofs()}, nil
}

// RevealProofs message handler. Discloses every mix round and checks the
// disclosure against the board.
func (s *Service) RevealProofs(req *RevealProofs) (*RevealProofsReply, error) {
	e, err := s.elections.Get(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	depth := req.Depth
	if depth == 0 {
		depth = s.config.RevealDepth
	}

	reply := &RevealProofsReply{}
	for round, m := range e.Mixes() {
		text, err := protocol.Reveal(m.Proof, depth)
		if err != nil {
			return nil, mixvote.ErrorOrNil(err, "reveal")
		}
		input, err := e.MixInput(round)
		if err != nil {
			return nil, mixvote.ElectionError(err, e.ID)
		}
		err = protocol.Verify(e.Key.Public, input, m.Ballots, m.Proof, depth)
		if err != nil {
			log.Warn("mix round", round, "of", e.ID, "fails verification:", err)
		}
		reply.Disclosures = append(reply.Disclosures, text)
		reply.Verified = append(reply.Verified, err == nil)
	}
	return reply, nil
}

// GetElections message handler. Lists the elections the user owns or takes
// part in.
func (s *Service) GetElections(req *GetElections) (*GetElectionsReply, error) {
	if _, err := s.users.Get(req.User); err != nil {
		return nil, mixvote.WrapError(err)
	}
	reply := &GetElectionsReply{}
	for _, e := range s.elections.All() {
		switch {
		case e.IsCreator(req.User):
			reply.Owned = append(reply.Owned, summarize(e, req.User))
		case e.IsUser(req.User):
			reply.Joined = append(reply.Joined, summarize(e, req.User))
		}
	}
	return reply, nil
}

// GetArchive message handler.
func (s *Service) GetArchive(req *GetArchive) (*GetArchiveReply, error) {
	s.mutex.Lock()
	archive := s.archive
	s.mutex.Unlock()
	if archive == nil {
		return nil, xerrors.New("archive is disabled")
	}
	r, err := archive.Load(req.ID)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	return &GetArchiveReply{Record: r}, nil
}

// ownedElection returns the election id if user owns it.
func (s *Service) ownedElection(user, id string) (*lib.Election, error) {
	e, err := s.elections.Get(id)
	if err != nil {
		return nil, mixvote.WrapError(err)
	}
	if !e.IsCreator(user) {
		return nil, mixvote.ElectionError(xerrors.Errorf("%s: %w", user, ErrNotOwner), e.ID)
	}
	return e, nil
}

func summarize(e *lib.Election, user string) *Summary {
	return &Summary{
		ID:      e.ID,
		Code:    e.Code,
		Title:   e.Title,
		Owner:   e.Owner,
		Stage:   e.Stage(),
		Ballots: e.Board.Len(),
		Voted:   e.HasVoted(user),
		Results: e.Results(),
	}
}
