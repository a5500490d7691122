// Package session owns the client-side authentication state: the
// current user, the token pair, and which flows are in flight. It is
// the only mutable state shared between the views and the API client.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/turfbook/turfbook/pkg/domain"
)

// Flow identifies an auth, profile, or booking operation whose pending state
// feeds the aggregate IsLoading flag.
type Flow int

const (
	FlowLogin Flow = iota
	FlowRegister
	FlowVerifyOTP
	FlowForgotPassword
	FlowResetPassword
	FlowProfileUpdate
	FlowSessionCheck
	FlowBooking
)

// Session is a consistent snapshot of the store. Authenticated is true
// exactly when User is non-nil; the store enforces the invariant so
// consumers never have to reconcile the two.
type Session struct {
	User          *domain.User
	Authenticated bool
	Loading       bool
}

// persisted is the JSON shape written to session.json. Tokens are
// deliberately absent: the refresh token lives in its own 0600 file
// and the access token never touches disk.
type persisted struct {
	User          *domain.User `json:"user,omitempty"`
	Authenticated bool         `json:"isAuthenticated"`
}

const (
	sessionFile = "session.json"
	tokenFile   = "token"
)

// Store holds the session. All methods are safe for concurrent use;
// every mutation notifies subscribers synchronously after the state
// transition completes, so a read that follows a write observes the
// new value.
type Store struct {
	mu           sync.Mutex
	user         *domain.User
	accessToken  string
	refreshToken string
	pending      map[Flow]bool
	subs         []func()
	dir          string // state directory, "" disables persistence
}

// New creates an empty store persisting to dir. Pass "" to keep state
// purely in memory (tests).
func New(dir string) *Store {
	return &Store{
		pending: make(map[Flow]bool),
		dir:     dir,
	}
}

// DefaultDir returns ~/.turfbook.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".turfbook"), nil
}

// Load hydrates the store from disk. A missing state file is not an
// error — the store just stays empty.
func (s *Store) Load() error {
	if s.dir == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err == nil {
		var p persisted
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parse session file: %w", err)
		}
		// The invariant wins over whatever the file claims.
		if p.Authenticated && p.User != nil {
			s.user = p.User
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read session file: %w", err)
	}

	tok, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err == nil {
		s.refreshToken = strings.TrimSpace(string(tok))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read token file: %w", err)
	}
	return nil
}

// save writes the non-sensitive state and the refresh token. Callers
// hold s.mu.
func (s *Store) save() {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return
	}
	p := persisted{User: s.user, Authenticated: s.user != nil}
	if data, err := json.Marshal(p); err == nil {
		os.WriteFile(filepath.Join(s.dir, sessionFile), data, 0600) //nolint:errcheck // best-effort persistence
	}
	tokPath := filepath.Join(s.dir, tokenFile)
	if s.refreshToken == "" {
		os.Remove(tokPath) //nolint:errcheck
	} else {
		os.WriteFile(tokPath, []byte(s.refreshToken), 0600) //nolint:errcheck
	}
}

// Subscribe registers fn to run after every mutation. Subscribers must
// not mutate the store from inside the callback.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// notify runs subscribers outside the lock.
func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Login stores the user and token pair in one transition.
func (s *Store) Login(user domain.User, accessToken, refreshToken string) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.save()
	s.mu.Unlock()
	s.notify()
}

// SetUser replaces the stored user, marking the session authenticated.
func (s *Store) SetUser(user domain.User) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.save()
	s.mu.Unlock()
	s.notify()
}

// UpdateUser merges a partial update into the current user. No-op when
// nobody is logged in.
func (s *Store) UpdateUser(patch domain.UserPatch) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	patch.Apply(s.user)
	s.save()
	s.mu.Unlock()
	s.notify()
}

// Logout clears user and both tokens atomically: no observer can see a
// half-cleared session.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.save()
	s.mu.Unlock()
	s.notify()
}

// SetFlowPending marks one flow as in flight.
func (s *Store) SetFlowPending(f Flow, pending bool) {
	s.mu.Lock()
	if pending {
		s.pending[f] = true
	} else {
		delete(s.pending, f)
	}
	s.mu.Unlock()
	s.notify()
}

// IsLoading reports whether any of the given flows is in flight, or
// whether any flow at all is when called with none.
func (s *Store) IsLoading(flows ...Flow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(flows) == 0 {
		return len(s.pending) > 0
	}
	for _, f := range flows {
		if s.pending[f] {
			return true
		}
	}
	return false
}

// FlowPending reports whether one specific flow is in flight, so a
// form can disable exactly its own submit control.
func (s *Store) FlowPending(f Flow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[f]
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Session{
		Authenticated: s.user != nil,
		Loading:       len(s.pending) > 0,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// AccessToken implements client.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken implements client.TokenSource.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// SetTokens implements client.TokenSource; the client calls it after a
// refresh rotation.
func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.save()
	s.mu.Unlock()
}
