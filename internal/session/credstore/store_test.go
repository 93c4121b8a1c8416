package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carddemo/internal/session/models"
	"carddemo/pkg/sentinel"
)

func newTestStore() (*Store, *MemoryTier, *MemoryTier) {
	durable := NewMemoryTier()
	volatile := NewMemoryTier()
	return New(durable, volatile), durable, volatile
}

func loginResult() *models.LoginResult {
	return &models.LoginResult{
		AccessToken:  "at-123",
		RefreshToken: "rt-456",
		TokenType:    "Bearer",
		UserID:       "ADMIN001",
		FullName:     "Admin User",
		UserType:     models.UserTypeAdmin,
	}
}

func TestSaveLoginResult(t *testing.T) {
	store, _, _ := newTestStore()
	require.NoError(t, store.SaveLoginResult(loginResult(), models.RoleAdmin))

	token, err := store.ReadAccessToken()
	require.NoError(t, err)
	assert.Equal(t, "at-123", token)

	refresh, err := store.ReadRefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "rt-456", refresh)

	role, userID, err := store.ReadCachedIdentity()
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
	assert.Equal(t, "ADMIN001", userID)
}

func TestUpdateAccessTokenLeavesOtherFields(t *testing.T) {
	store, _, _ := newTestStore()
	require.NoError(t, store.SaveLoginResult(loginResult(), models.RoleAdmin))

	require.NoError(t, store.UpdateAccessToken("at-rotated"))

	token, err := store.ReadAccessToken()
	require.NoError(t, err)
	assert.Equal(t, "at-rotated", token)

	refresh, err := store.ReadRefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "rt-456", refresh, "refresh token must be untouched")

	role, userID, err := store.ReadCachedIdentity()
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
	assert.Equal(t, "ADMIN001", userID)
}

// Every key either tier ever holds must be absent after ClearAll. The keys
// are enumerated one by one: a key silently left behind is exactly the class
// of stale-session bug this guards against.
func TestClearAllRemovesEveryKey(t *testing.T) {
	store, durable, volatile := newTestStore()
	require.NoError(t, store.SaveLoginResult(loginResult(), models.RoleAdmin))
	require.NoError(t, store.WriteSessionDescriptor(&models.SessionDescriptor{
		UserID:    "ADMIN001",
		UserType:  models.UserTypeAdmin,
		Role:      models.RoleAdmin,
		LoginTime: time.Now().UnixMilli(),
	}))

	require.NoError(t, store.ClearAll())

	for _, key := range []string{"access_token", "refresh_token", "last_role", "last_user_id"} {
		_, ok, err := durable.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "durable key %q must be absent after ClearAll", key)
	}
	_, ok, err := volatile.Get("session")
	require.NoError(t, err)
	assert.False(t, ok, "volatile session key must be absent after ClearAll")

	token, err := store.ReadAccessToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	refresh, err := store.ReadRefreshToken()
	require.NoError(t, err)
	assert.Empty(t, refresh)

	_, _, err = store.ReadCachedIdentity()
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.ReadSessionDescriptor()
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestClearAllIsIdempotent(t *testing.T) {
	store, _, _ := newTestStore()
	require.NoError(t, store.ClearAll())
	require.NoError(t, store.ClearAll())
}

func TestSessionDescriptorRoundTrip(t *testing.T) {
	store, _, _ := newTestStore()
	want := &models.SessionDescriptor{
		UserID:    "USER001",
		UserType:  models.UserTypeStandard,
		Role:      models.RoleBackOffice,
		LoginTime: time.Now().UnixMilli(),
	}
	require.NoError(t, store.WriteSessionDescriptor(want))

	got, err := store.ReadSessionDescriptor()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadSessionDescriptorMissingVsCorrupt(t *testing.T) {
	store, _, volatile := newTestStore()

	_, err := store.ReadSessionDescriptor()
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, volatile.Set("session", "{not json"))
	_, err = store.ReadSessionDescriptor()
	require.Error(t, err)
	assert.False(t, errors.Is(err, sentinel.ErrNotFound), "corrupt blob is a parse error, not not-found")
}

func TestFileTierSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	tier, err := NewFileTier(dir)
	require.NoError(t, err)
	store := New(tier, NewMemoryTier())
	require.NoError(t, store.SaveLoginResult(loginResult(), models.RoleAdmin))

	// Reopen simulates a browser restart: durable survives, volatile does not.
	reopened, err := NewFileTier(dir)
	require.NoError(t, err)
	restarted := New(reopened, NewMemoryTier())

	token, err := restarted.ReadAccessToken()
	require.NoError(t, err)
	assert.Equal(t, "at-123", token)

	role, userID, err := restarted.ReadCachedIdentity()
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
	assert.Equal(t, "ADMIN001", userID)

	_, err = restarted.ReadSessionDescriptor()
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFileTierToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("garbage"), 0o600))

	tier, err := NewFileTier(dir)
	require.NoError(t, err)

	_, ok, err := tier.Get("access_token")
	require.NoError(t, err)
	assert.False(t, ok)
}
