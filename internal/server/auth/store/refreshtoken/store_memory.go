package refreshtoken

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carddemo/internal/server/auth/models"
	"carddemo/pkg/sentinel"
)

// MemoryStore holds refresh token records keyed by the opaque token value.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*models.RefreshTokenRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*models.RefreshTokenRecord)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *models.RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.tokens[rec.Token] = &clone
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("refresh token: %w", sentinel.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

// DeleteByUser revokes every token belonging to a user.
func (s *MemoryStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, rec := range s.tokens {
		if rec.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

// DeleteExpired removes records past their lifetime and returns how many
// were dropped.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, rec := range s.tokens {
		if rec.Expired(now) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed, nil
}
