package credstore

import (
	"encoding/json"
	"fmt"

	"carddemo/internal/session/models"
	"carddemo/pkg/sentinel"
)

// Durable-tier keys. ClearAll must remove every key listed here; add new
// keys to clearAll's enumeration and to the exhaustive clear test.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyLastRole     = "last_role"
	keyLastUserID   = "last_user_id"
)

// Volatile-tier key holding the session descriptor JSON blob.
const keySession = "session"

// Store wraps the two persistence tiers. The durable tier survives restarts
// and holds tokens plus cached identity; the volatile tier holds the session
// descriptor and dies with the process. No other component reads or writes
// raw tier keys.
type Store struct {
	durable  Tier
	volatile Tier
}

// New constructs a credential store over the given tiers.
func New(durable, volatile Tier) *Store {
	return &Store{durable: durable, volatile: volatile}
}

// SaveLoginResult persists the credential record after a successful login:
// both tokens plus the cached role and user id used to rehydrate identity in
// a fresh process. Writes happen in a fixed order; a mid-sequence failure
// leaves earlier keys behind, which the caller discards via ClearAll.
func (s *Store) SaveLoginResult(res *models.LoginResult, role models.Role) error {
	writes := []struct{ key, value string }{
		{keyAccessToken, res.AccessToken},
		{keyRefreshToken, res.RefreshToken},
		{keyLastRole, string(role)},
		{keyLastUserID, res.UserID},
	}
	for _, w := range writes {
		if err := s.durable.Set(w.key, w.value); err != nil {
			return fmt.Errorf("save credential %s: %w", w.key, err)
		}
	}
	return nil
}

// UpdateAccessToken overwrites only the access token; every other durable
// field is untouched. Used by the silent refresh path.
func (s *Store) UpdateAccessToken(token string) error {
	if err := s.durable.Set(keyAccessToken, token); err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	return nil
}

// ClearAll removes every key either tier has ever held. Leftover keys
// reintroduce stale-session bugs, so the enumeration here is deliberate and
// tested key by key.
func (s *Store) ClearAll() error {
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyLastRole, keyLastUserID} {
		if err := s.durable.Delete(key); err != nil {
			return fmt.Errorf("clear credential %s: %w", key, err)
		}
	}
	if err := s.volatile.Delete(keySession); err != nil {
		return fmt.Errorf("clear session descriptor: %w", err)
	}
	return nil
}

// ReadAccessToken returns the stored access token, or empty when absent.
// An absent access token means anonymous regardless of any other state.
func (s *Store) ReadAccessToken() (string, error) {
	value, _, err := s.durable.Get(keyAccessToken)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return value, nil
}

// ReadRefreshToken returns the stored refresh token, or empty when absent.
func (s *Store) ReadRefreshToken() (string, error) {
	value, _, err := s.durable.Get(keyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return value, nil
}

// ReadCachedIdentity returns the last-known role and user id cached at login.
// Returns sentinel.ErrNotFound when no identity has been cached.
func (s *Store) ReadCachedIdentity() (models.Role, string, error) {
	role, okRole, err := s.durable.Get(keyLastRole)
	if err != nil {
		return "", "", fmt.Errorf("read cached role: %w", err)
	}
	userID, okUser, err := s.durable.Get(keyLastUserID)
	if err != nil {
		return "", "", fmt.Errorf("read cached user id: %w", err)
	}
	if !okRole || !okUser || userID == "" {
		return "", "", fmt.Errorf("cached identity: %w", sentinel.ErrNotFound)
	}
	return models.Role(role), userID, nil
}

// WriteSessionDescriptor stores the descriptor in the volatile tier.
func (s *Store) WriteSessionDescriptor(d *models.SessionDescriptor) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal session descriptor: %w", err)
	}
	if err := s.volatile.Set(keySession, string(raw)); err != nil {
		return fmt.Errorf("write session descriptor: %w", err)
	}
	return nil
}

// ReadSessionDescriptor returns the volatile-tier descriptor.
// Returns sentinel.ErrNotFound when absent and a parse error when the stored
// blob is unreadable; callers decide which of the two warrants recreation.
func (s *Store) ReadSessionDescriptor() (*models.SessionDescriptor, error) {
	raw, ok, err := s.volatile.Get(keySession)
	if err != nil {
		return nil, fmt.Errorf("read session descriptor: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session descriptor: %w", sentinel.ErrNotFound)
	}
	var d models.SessionDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("parse session descriptor: %w", err)
	}
	return &d, nil
}
