package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"carddemo/internal/server/auth/models"
	"carddemo/pkg/sentinel"
)

// MemoryStore is an in-memory user store keyed by user ID.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

func (s *MemoryStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(u.UserID)
	if _, exists := s.users[key]; exists {
		return fmt.Errorf("user %s: %w", u.UserID, sentinel.ErrAlreadyUsed)
	}
	clone := *u
	s.users[key] = &clone
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToUpper(userID)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(u.UserID)
	if _, ok := s.users[key]; !ok {
		return fmt.Errorf("user %s: %w", u.UserID, sentinel.ErrNotFound)
	}
	clone := *u
	s.users[key] = &clone
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(userID)
	if _, ok := s.users[key]; !ok {
		return fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	delete(s.users, key)
	return nil
}

// List returns all users ordered by user ID.
func (s *MemoryStore) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
