package service

import (
	"sort"
	"sync"

	"go.dedis.ch/mixvote/lib"
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownElection is returned for an id or join code that matches no
	// election.
	ErrUnknownElection = xerrors.New("unknown election")
	// ErrUnknownUser is returned for a user who never registered.
	ErrUnknownUser = xerrors.New("unknown user")
	// ErrNotOwner is returned when someone else than the owner mixes or
	// tallies an election.
	ErrNotOwner = xerrors.New("only the owner can do this")
)

// ElectionStore keeps the elections of a service.
type ElectionStore interface {
	// Put adds e, failing if its id or code is taken.
	Put(e *lib.Election) error
	// Get looks an election up by id.
	Get(id string) (*lib.Election, error)
	// ByCode looks an election up by join code.
	ByCode(code string) (*lib.Election, error)
	// All returns every election, ordered by id.
	All() []*lib.Election
}

// UserStore keeps the registered users of a service.
type UserStore interface {
	// Put creates or updates u and tells if it was created.
	Put(u *User) (bool, error)
	// Get looks a user up by email.
	Get(email string) (*User, error)
}

// memoryElections is an ElectionStore held in memory.
type memoryElections struct {
	sync.RWMutex
	byID   map[string]*lib.Election
	byCode map[string]*lib.Election
}

// NewMemoryElections returns an empty in-memory election store.
func NewMemoryElections() ElectionStore {
	return &memoryElections{
		byID:   make(map[string]*lib.Election),
		byCode: make(map[string]*lib.Election),
	}
}

func (m *memoryElections) Put(e *lib.Election) error {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.byID[e.ID]; ok {
		return xerrors.Errorf("election %s exists already", e.ID)
	}
	if _, ok := m.byCode[e.Code]; ok {
		return xerrors.Errorf("join code %s is taken", e.Code)
	}
	m.byID[e.ID] = e
	m.byCode[e.Code] = e
	return nil
}

func (m *memoryElections) Get(id string) (*lib.Election, error) {
	m.RLock()
	defer m.RUnlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, xerrors.Errorf("%s: %w", id, ErrUnknownElection)
	}
	return e, nil
}

func (m *memoryElections) ByCode(code string) (*lib.Election, error) {
	m.RLock()
	defer m.RUnlock()
	e, ok := m.byCode[code]
	if !ok {
		return nil, xerrors.Errorf("code %s: %w", code, ErrUnknownElection)
	}
	return e, nil
}

func (m *memoryElections) All() []*lib.Election {
	m.RLock()
	all := make([]*lib.Election, 0, len(m.byID))
	for _, e := range m.byID {
		all = append(all, e)
	}
	m.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
