// Package session owns the persisted client session: the token pair plus the
// authenticated user id, stored as a single file under the user's home
// directory. The Manager is the only writer; everything that cares about
// invalidation subscribes instead of re-reading ambient storage.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Session is written as a unit at login/register and cleared as a unit at
// logout or on any authentication failure. Tokens are never cleared
// independently of each other.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
}

type Manager struct {
	mu   sync.Mutex
	path string
	cur  Session
	subs []func()
}

// DefaultPath returns the session file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cryptopay_session")
}

// NewManager loads any existing session from path. A missing or unreadable
// file just means logged out.
func NewManager(path string) *Manager {
	m := &Manager{path: path}
	b, err := os.ReadFile(path)
	if err == nil {
		var s Session
		if json.Unmarshal(b, &s) == nil {
			m.cur = s
		}
	}
	return m
}

// Current returns a copy of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Active reports whether an access token is held.
func (m *Manager) Active() bool {
	return m.Current().AccessToken != ""
}

// Set replaces the whole session and persists it with 0600 permissions.
func (m *Manager) Set(s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.WriteFile(m.path, b, 0600); err != nil {
		return err
	}
	m.cur = s
	return nil
}

// Clear wipes the session, removes the file and notifies subscribers. A call
// already in flight with the old token will fail as an authentication error
// rather than retry.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.cur = Session{}
	err := os.Remove(m.path)
	subs := make([]func(), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Subscribe registers a callback fired after every Clear.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
