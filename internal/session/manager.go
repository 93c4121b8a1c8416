package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"carddemo/internal/session/api"
	"carddemo/internal/session/credstore"
	"carddemo/internal/session/models"
	"carddemo/internal/session/state"
	"carddemo/pkg/apierrors"
)

// maxCredentialLen bounds both the user id and the password fields, matching
// the backend's fixed-width credential columns.
const maxCredentialLen = 8

// Manager owns the auth lifecycle: it is the only writer of the auth state
// and the credential store. Screens observe; the manager mutates.
type Manager struct {
	// mu serializes state mutations. Network calls happen outside the lock;
	// results are applied only when the logout generation is unchanged, so a
	// stale in-flight response can never resurrect a session.
	mu        sync.Mutex
	state     *state.Store
	creds     *credstore.Store
	transport api.Transport
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires the state store, credential store, and backend transport.
func NewManager(st *state.Store, creds *credstore.Store, transport api.Transport, opts ...Option) *Manager {
	m := &Manager{
		state:     st,
		creds:     creds,
		transport: transport,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State exposes the read-only auth state container.
func (m *Manager) State() *state.Store {
	return m.state
}

// Credentials exposes the credential store for the monitor and guard.
func (m *Manager) Credentials() *credstore.Store {
	return m.creds
}

func validateCredentials(userID, password string) error {
	if userID == "" {
		return apierrors.New(apierrors.CodeValidation, "user id is required")
	}
	if utf8.RuneCountInString(userID) > maxCredentialLen {
		return apierrors.New(apierrors.CodeValidation, "user id must be at most 8 characters")
	}
	if password == "" {
		return apierrors.New(apierrors.CodeValidation, "password is required")
	}
	if utf8.RuneCountInString(password) > maxCredentialLen {
		return apierrors.New(apierrors.CodeValidation, "password must be at most 8 characters")
	}
	return nil
}

// Login performs the credential exchange. Field validation failures are
// local and never reach the network. A backend rejection leaves the state
// anonymous and creates no storage artifacts; a persist failure clears
// whatever was written before the failure.
func (m *Manager) Login(ctx context.Context, userID, password string) error {
	if err := validateCredentials(userID, password); err != nil {
		return err
	}

	m.state.SetAuthenticating()

	res, err := m.transport.Login(ctx, userID, password)
	if err != nil {
		m.state.SetError(err)
		m.logger.WarnContext(ctx, "login failed",
			"user_id", userID,
			"code", apierrors.CodeOf(err),
		)
		return err
	}

	role := models.RoleFromUserType(res.UserType)
	identity := &models.Identity{
		ID:          res.UserID,
		UserID:      res.UserID,
		DisplayName: res.FullName,
		Role:        role,
		CreatedAt:   m.now(),
		IsActive:    true,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.creds.SaveLoginResult(res, role); err != nil {
		m.discardPartialSave(ctx)
		m.state.SetError(err)
		return apierrors.Wrap(apierrors.CodeInternal, "persist credentials", err)
	}
	descriptor := &models.SessionDescriptor{
		UserID:    res.UserID,
		UserType:  res.UserType,
		Role:      role,
		LoginTime: m.now().UnixMilli(),
	}
	if err := m.creds.WriteSessionDescriptor(descriptor); err != nil {
		m.discardPartialSave(ctx)
		m.state.SetError(err)
		return apierrors.Wrap(apierrors.CodeInternal, "persist session descriptor", err)
	}

	m.state.SetAuthenticated(identity, res.AccessToken)
	m.logger.InfoContext(ctx, "login succeeded",
		"user_id", res.UserID,
		"role", string(role),
	)
	return nil
}

// discardPartialSave removes whatever a failed login persist left behind, so
// a later ValidateToken can never pick up a half-written credential record.
// Callers hold m.mu.
func (m *Manager) discardPartialSave(ctx context.Context) {
	if err := m.creds.ClearAll(); err != nil {
		m.logger.ErrorContext(ctx, "failed to discard partial credentials", "error", err)
	}
}

// Logout ends the session. When immediate, local state and both storage
// tiers are cleared synchronously before any network call; the server
// notification is best-effort either way, because the local session is
// already invalid regardless of server acknowledgement.
func (m *Manager) Logout(ctx context.Context, immediate bool) {
	token := m.state.Current().Token

	if immediate {
		m.clearLocal(ctx)
		m.notifyLogout(ctx, token)
		return
	}

	m.notifyLogout(ctx, token)
	m.clearLocal(ctx)
}

func (m *Manager) clearLocal(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SetAnonymous()
	if err := m.creds.ClearAll(); err != nil {
		// Clearing already-cleared storage is a no-op; a real write failure
		// is logged but must not keep the user signed in.
		m.logger.ErrorContext(ctx, "failed to clear credential storage", "error", err)
	}
}

func (m *Manager) notifyLogout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := m.transport.Logout(ctx, token); err != nil {
		m.logger.WarnContext(ctx, "logout notification failed", "error", err)
	}
}

// ForceLogout is the system-initiated variant used on expiry and refresh
// failure. The user experiences it as a redirect, never as an error dialog.
func (m *Manager) ForceLogout(ctx context.Context, reason string) {
	m.logger.InfoContext(ctx, "forced logout", "reason", reason)
	m.Logout(ctx, true)
}

// RefreshToken exchanges the stored refresh token for a new access token.
// It fails fast when no refresh token exists. Any backend failure forces an
// immediate logout; this is the single place refresh failures are handled.
func (m *Manager) RefreshToken(ctx context.Context) error {
	refreshToken, err := m.creds.ReadRefreshToken()
	if err != nil {
		return apierrors.Wrap(apierrors.CodeToken, "read refresh token", err)
	}
	if refreshToken == "" {
		return apierrors.New(apierrors.CodeToken, "no refresh token available")
	}

	gen := m.state.Generation()

	accessToken, err := m.transport.Refresh(ctx, refreshToken)
	if err != nil {
		m.ForceLogout(ctx, "refresh failed")
		return apierrors.Wrap(apierrors.CodeToken, "token refresh rejected", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Generation() != gen {
		// A logout completed while the refresh was in flight.
		m.logger.DebugContext(ctx, "discarding stale refresh result")
		return nil
	}
	if err := m.creds.UpdateAccessToken(accessToken); err != nil {
		return apierrors.Wrap(apierrors.CodeInternal, "persist refreshed token", err)
	}
	m.state.UpdateToken(accessToken)
	return nil
}

// ValidateToken asks the backend for a verdict on the stored access token.
// On a valid verdict it rehydrates the identity from the cached role and
// user id when the in-memory user is empty (fresh process). On an invalid
// verdict it clears everything through the logout-equivalent path.
func (m *Manager) ValidateToken(ctx context.Context) error {
	accessToken, err := m.creds.ReadAccessToken()
	if err != nil {
		return apierrors.Wrap(apierrors.CodeToken, "read access token", err)
	}
	if accessToken == "" {
		return apierrors.New(apierrors.CodeToken, "no access token available")
	}

	if !m.state.Current().IsAuthenticated() {
		m.state.SetAuthenticating()
	}
	gen := m.state.Generation()

	res, err := m.transport.Validate(ctx, accessToken)
	if err != nil || !res.Valid {
		m.mu.Lock()
		stale := m.state.Generation() != gen
		m.mu.Unlock()
		if stale {
			return nil
		}
		m.clearLocal(ctx)
		if err != nil {
			return apierrors.Wrap(apierrors.CodeToken, "token validation failed", err)
		}
		return apierrors.New(apierrors.CodeToken, "token rejected")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Generation() != gen {
		m.logger.DebugContext(ctx, "discarding stale validation result")
		return nil
	}

	snap := m.state.Current()
	if snap.IsAuthenticated() {
		return nil
	}

	identity, err := m.identityFromCache(res.UserID)
	if err != nil {
		return err
	}
	m.state.SetAuthenticated(identity, accessToken)
	return nil
}

// identityFromCache rebuilds an Identity from the durable tier's cached
// role and user id after a fresh process start.
func (m *Manager) identityFromCache(validatedUserID string) (*models.Identity, error) {
	role, userID, err := m.creds.ReadCachedIdentity()
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeToken, "no cached identity to rehydrate", err)
	}
	if validatedUserID != "" {
		userID = validatedUserID
	}
	return &models.Identity{
		ID:       userID,
		UserID:   userID,
		Role:     role,
		IsActive: true,
	}, nil
}
