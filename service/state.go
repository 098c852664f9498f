package service

import (
	"encoding/hex"
	"sync"

	"go.dedis.ch/kyber/v3/util/random"
	"golang.org/x/xerrors"
)

// User is a registered voter or election owner.
type User struct {
	// Email identifies the user.
	Email string
	// Name is the display name.
	Name string
	// Subject is the identifier of the identity provider.
	Subject string
}

// state is the in-memory user registry.
type state struct {
	mux sync.Mutex
	// users is a map from email to user.
	users map[string]*User
}

// NewMemoryUsers returns an empty in-memory user store.
func NewMemoryUsers() UserStore {
	return &state{users: make(map[string]*User)}
}

// Put registers u, or updates the name and subject of an existing user.
func (s *state) Put(u *User) (bool, error) {
	if u == nil || u.Email == "" {
		return false, xerrors.New("user needs an email")
	}
	s.mux.Lock()
	defer s.mux.Unlock()

	cp := *u
	if cp.Subject == "" {
		if old, ok := s.users[cp.Email]; ok {
			cp.Subject = old.Subject
		} else {
			cp.Subject = nonce(128)
		}
	}
	_, exists := s.users[cp.Email]
	s.users[cp.Email] = &cp
	return !exists, nil
}

// Get retrieves a user from the registry.
func (s *state) Get(email string) (*User, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, xerrors.Errorf("%s: %w", email, ErrUnknownUser)
	}
	cp := *u
	return &cp, nil
}

// nonce returns a random hex string for a given bit length.
func nonce(bits uint) string {
	return hex.EncodeToString(random.Bits(bits, false, random.New()))
}
