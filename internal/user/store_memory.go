package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"minetrack/pkg/sentinel"
)

// InMemoryStore keeps user accounts in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*User
	byEmail map[string]string
	order   []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func newID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *InMemoryStore) Insert(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrConflict
	}

	u.ID = newID()
	s.users[u.ID] = cloneUser(u)
	s.byEmail[key] = u.ID
	s.order = append(s.order, u.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneUser(s.users[id]))
	}
	return out, nil
}

func (s *InMemoryStore) UpdateRole(_ context.Context, id string, role Role, updatedAt time.Time) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = updatedAt
	return cloneUser(u), nil
}

func (s *InMemoryStore) UpdateProfile(_ context.Context, id, name, email string, updatedAt time.Time) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	key := strings.ToLower(email)
	if holder, taken := s.byEmail[key]; taken && holder != id {
		return nil, sentinel.ErrConflict
	}

	delete(s.byEmail, strings.ToLower(u.Email))
	s.byEmail[key] = id
	u.Name = name
	u.Email = email
	u.UpdatedAt = updatedAt
	return cloneUser(u), nil
}

func cloneUser(u *User) *User {
	cp := *u
	return &cp
}
