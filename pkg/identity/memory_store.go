package identity

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps users in a map. It is meant for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
	order []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*User)}
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.id]; ok {
		return &DuplicateError{Field: "id"}
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	s.users[u.id] = u.clone()
	s.order = append(s.order, u.id)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.id]; !ok {
		return ErrUserNotFound
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	s.users[u.id] = u.clone()
	return nil
}

// must hold s.mu
func (s *MemoryStore) checkUnique(u *User) error {
	for _, f := range Fields {
		if !f.Unique() || !u.Has(f) {
			continue
		}
		hash := u.LookupHash(f)
		for id, other := range s.users {
			if id != u.id && bytes.Equal(other.LookupHash(f), hash) {
				return &DuplicateError{Field: f}
			}
		}
	}
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.clone(), nil
}

// FindByLookupHash returns matches in insertion order.
func (s *MemoryStore) FindByLookupHash(_ context.Context, field Field, hash []byte) ([]*User, error) {
	if !field.Searchable() {
		return nil, ErrInvalidField
	}
	if len(hash) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, id := range s.order {
		u := s.users[id]
		if bytes.Equal(u.LookupHash(field), hash) {
			out = append(out, u.clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}
