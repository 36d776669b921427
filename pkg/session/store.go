// Package session owns the client's credential pair: where it is kept, how an
// access credential is judged valid, and the guard that gates protected views.
package session

import (
	"fmt"
	"sync"
)

// Credentials is the access/refresh pair issued by login, registration or refresh.
type Credentials struct {
	Access  string
	Refresh string
}

// Store holds the current credential pair. It does no validation.
type Store interface {
	Get() (Credentials, bool)
	Set(access, refresh string) error
	Clear() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryStore returns a MemoryStore seeded with the given pair. Empty
// strings leave the store empty.
func NewMemoryStore(access, refresh string) *MemoryStore {
	return &MemoryStore{creds: Credentials{Access: access, Refresh: refresh}}
}

func (s *MemoryStore) Get() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, s.creds.Access != "" || s.creds.Refresh != ""
}

func (s *MemoryStore) Set(access, refresh string) error {
	s.mu.Lock()
	s.creds = Credentials{Access: access, Refresh: refresh}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
	return nil
}

// Documents is the slice of the local document store PersistentStore needs.
type Documents interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Delete(keys ...string) error
}

// Document keys for the pair.
const (
	accessKey  = "access_token"
	refreshKey = "refresh_token"
)

// PersistentStore is a write-through Store over a Documents backend, so the
// session survives a restart.
type PersistentStore struct {
	docs  Documents
	mu    sync.RWMutex
	creds Credentials
}

// NewPersistentStore loads any saved pair from docs.
func NewPersistentStore(docs Documents) (*PersistentStore, error) {
	s := &PersistentStore{docs: docs}
	if _, err := docs.Get(accessKey, &s.creds.Access); err != nil {
		return nil, fmt.Errorf("session: load access token: %w", err)
	}
	if _, err := docs.Get(refreshKey, &s.creds.Refresh); err != nil {
		return nil, fmt.Errorf("session: load refresh token: %w", err)
	}
	return s, nil
}

func (s *PersistentStore) Get() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, s.creds.Access != "" || s.creds.Refresh != ""
}

// Set updates memory first so readers never see a pair older than the last
// write, even if persisting fails.
func (s *PersistentStore) Set(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{Access: access, Refresh: refresh}
	if err := s.docs.Put(accessKey, access); err != nil {
		return fmt.Errorf("session: save access token: %w", err)
	}
	if err := s.docs.Put(refreshKey, refresh); err != nil {
		return fmt.Errorf("session: save refresh token: %w", err)
	}
	return nil
}

func (s *PersistentStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	if err := s.docs.Delete(accessKey, refreshKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Watched is a Store that runs an end hook whenever a session ends: on
// Clear, and when Set replaces one account's credentials with another's.
// Every path that drops a session (logout, a failed refresh, the guard)
// goes through Clear, so state tied to the account can hang off the hook.
type Watched struct {
	Store
	onEnd func() error
}

// Watch wraps s. onEnd must not call back into the returned store.
func Watch(s Store, onEnd func() error) *Watched {
	return &Watched{Store: s, onEnd: onEnd}
}

func (w *Watched) Set(access, refresh string) error {
	prev, _ := w.Store.Get()
	if err := w.Store.Set(access, refresh); err != nil {
		return err
	}
	if switchedAccount(prev.Access, access) {
		return w.end()
	}
	return nil
}

func (w *Watched) Clear() error {
	if err := w.Store.Clear(); err != nil {
		return err
	}
	return w.end()
}

func (w *Watched) end() error {
	if err := w.onEnd(); err != nil {
		return fmt.Errorf("session: end hook: %w", err)
	}
	return nil
}

// switchedAccount reports whether prev and next name different subjects.
// A credential without a readable subject matches anything.
func switchedAccount(prev, next string) bool {
	if prev == "" {
		return false
	}
	a, b := subjectOf(prev), subjectOf(next)
	return a != "" && b != "" && a != b
}

func subjectOf(token string) string {
	c, err := ParseClaims(token)
	if err != nil {
		return ""
	}
	return c.SubjectID()
}
