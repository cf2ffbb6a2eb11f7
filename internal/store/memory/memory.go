// Package memory implementa repository.UserRepository en memoria del proceso.
// Es el driver "memory" y el fake de los tests de services.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]*repository.User
	byEmail map[string]string // email normalizado -> id

	// FailReads/FailWrites permiten simular un backend caído en tests.
	FailReads  error
	FailWrites error

	writes int
}

func New(seed ...*repository.User) *Store {
	s := &Store{
		byID:    map[string]*repository.User{},
		byEmail: map[string]string{},
	}
	for _, u := range seed {
		_ = s.Create(context.Background(), u)
	}
	return s
}

func (s *Store) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	id, ok := s.byEmail[repository.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Store) Create(_ context.Context, u *repository.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if u == nil || u.ID == "" {
		return repository.ErrInvalidInput
	}
	email := repository.NormalizeEmail(u.Email)
	if _, dup := s.byEmail[email]; dup {
		return repository.ErrConflict
	}
	if _, dup := s.byID[u.ID]; dup {
		return repository.ErrConflict
	}
	c := u.Clone()
	c.Email = email
	s.byID[c.ID] = c
	s.byEmail[email] = c.ID
	s.writes++
	return nil
}

func (s *Store) Save(_ context.Context, u *repository.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if u == nil {
		return repository.ErrInvalidInput
	}
	prev, ok := s.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	email := repository.NormalizeEmail(u.Email)
	if owner, taken := s.byEmail[email]; taken && owner != u.ID {
		return repository.ErrConflict
	}
	delete(s.byEmail, prev.Email)
	c := u.Clone()
	c.Email = email
	s.byID[c.ID] = c
	s.byEmail[email] = c.ID
	s.writes++
	return nil
}

func (s *Store) UpdateProfile(_ context.Context, id string, p repository.ProfilePatch) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return nil, s.FailWrites
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Apply(u)
	s.writes++
	return u.Clone(), nil
}

func (s *Store) List(_ context.Context) ([]repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	out := make([]repository.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, *u.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FailReads
}

func (s *Store) Close() error { return nil }

// Writes cuenta las escrituras exitosas (Create + Save).
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
