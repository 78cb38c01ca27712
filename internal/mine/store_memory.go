package mine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"minetrack/pkg/sentinel"
)

// InMemoryStore keeps mine records in process memory. Used by tests and as a
// reference implementation of the Store semantics.
type InMemoryStore struct {
	mu    sync.RWMutex
	mines map[string]*Mine
	order []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{mines: make(map[string]*Mine)}
}

func newID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *InMemoryStore) Insert(_ context.Context, m *Mine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = newID()
	s.mines[m.ID] = m.Clone()
	s.order = append(s.order, m.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Mine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mines[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *InMemoryStore) Find(_ context.Context, f Filter) ([]*Mine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Mine, 0, len(s.order))
	for _, id := range s.order {
		m := s.mines[id]
		if matches(m, f) {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

// matches mirrors the document-store query semantics: conjunction of the
// supplied predicates, substring search folded for case.
func matches(m *Mine, f Filter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Name), needle) &&
			!strings.Contains(strings.ToLower(m.Description), needle) {
			return false
		}
	}
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	if f.License != nil && m.License != *f.License {
		return false
	}
	if f.Verified != nil && m.Verified != *f.Verified {
		return false
	}
	return true
}

func (s *InMemoryStore) Update(_ context.Context, id string, upd Update) (*Mine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mines[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if m.Version != upd.ExpectedVersion {
		return nil, sentinel.ErrConflict
	}

	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Type != nil {
		m.Type = *upd.Type
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}
	if upd.Verified != nil {
		m.Verified = *upd.Verified
	}
	if upd.License != nil {
		m.License = *upd.License
	}
	m.UpdatedAt = upd.UpdatedAt
	m.Version++

	return m.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mines[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.mines, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
