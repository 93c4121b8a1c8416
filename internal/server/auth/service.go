package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"carddemo/internal/platform/metrics"
	"carddemo/internal/platform/middleware"
	"carddemo/internal/server/auth/device"
	"carddemo/internal/server/auth/models"
	"carddemo/pkg/apierrors"
	"carddemo/pkg/sentinel"
)

// UserStore defines the persistence interface for sign-on records.
// Error Contract: Get methods return sentinel.ErrNotFound when the user
// does not exist.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.User, error)
}

// RefreshTokenStore defines the persistence interface for refresh tokens.
type RefreshTokenStore interface {
	Save(ctx context.Context, rec *models.RefreshTokenRecord) error
	Get(ctx context.Context, token string) (*models.RefreshTokenRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// TokenService issues and verifies tokens.
type TokenService interface {
	GenerateAccessToken(userID, userType string) (string, error)
	ValidateAccessToken(token string) (*middleware.TokenClaims, error)
	CreateRefreshToken() (string, error)
	TokenTTL() time.Duration
}

// LoginInput carries everything the sign-on flow needs from the transport.
type LoginInput struct {
	UserID    string
	Password  string
	UserAgent string
}

// LoginOutput mirrors the sign-on response payload.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	UserID       string
	FullName     string
	UserType     string
	ExpiresIn    int64
}

// ValidateOutput is the verdict the validation endpoint returns.
type ValidateOutput struct {
	Valid  bool
	UserID string
}

const (
	defaultRefreshTTL = 24 * time.Hour
	defaultLoginRate  = rate.Limit(1)
	defaultLoginBurst = 5
)

// Service implements the CardDemo authentication operations.
type Service struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	tokens        TokenService
	refreshTTL    time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	limiter       *loginLimiter
	now           func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRefreshTTL configures the refresh token lifetime.
// Zero or negative values keep the 24 hour default.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithLoginRate overrides the per-user sign-on throttle.
func WithLoginRate(r rate.Limit, burst int) Option {
	return func(s *Service) {
		s.limiter = newLoginLimiter(r, burst)
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(users UserStore, refreshTokens RefreshTokenStore, tokens TokenService, opts ...Option) *Service {
	svc := &Service{
		users:         users,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		refreshTTL:    defaultRefreshTTL,
		tracer:        otel.Tracer("carddemo/auth"),
		limiter:       newLoginLimiter(defaultLoginRate, defaultLoginBurst),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Login verifies credentials and issues a token pair. Every credential
// failure collapses into one invalid_credentials answer so the response
// never reveals whether the user ID exists.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login",
		trace.WithAttributes(attribute.String("user_id", in.UserID)))
	defer span.End()

	if in.UserID == "" || in.Password == "" {
		return nil, apierrors.New(apierrors.CodeBadRequest, "user ID and password are required")
	}

	if !s.limiter.Allow(in.UserID) {
		s.authFailure(ctx, "rate_limited", "user_id", in.UserID)
		return nil, apierrors.New(apierrors.CodeRateLimited, "too many sign-on attempts")
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "unknown_user", "user_id", in.UserID)
			return nil, apierrors.New(apierrors.CodeCredentials, "invalid credentials")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "look up user", err)
	}
	if !u.IsActive {
		s.authFailure(ctx, "inactive_user", "user_id", in.UserID)
		return nil, apierrors.New(apierrors.CodeCredentials, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)); err != nil {
		s.authFailure(ctx, "wrong_password", "user_id", in.UserID)
		return nil, apierrors.New(apierrors.CodeCredentials, "invalid credentials")
	}

	accessToken, err := s.tokens.GenerateAccessToken(u.UserID, u.UserType)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "issue access token", err)
	}
	refreshToken, err := s.tokens.CreateRefreshToken()
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "issue refresh token", err)
	}

	now := s.now()
	dev := device.FromUserAgent(in.UserAgent)
	if err := s.refreshTokens.Save(ctx, &models.RefreshTokenRecord{
		Token:     refreshToken,
		UserID:    u.UserID,
		UserType:  u.UserType,
		Device:    dev.DisplayName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "persist refresh token", err)
	}

	s.logAudit(ctx, "user_logged_in",
		"user_id", u.UserID,
		"user_type", u.UserType,
		"device", dev.DisplayName,
	)
	if s.metrics != nil {
		s.metrics.IncrementLogins()
		s.metrics.IncrementActiveSessions(1)
	}

	return &LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		UserID:       u.UserID,
		FullName:     u.FullName(),
		UserType:     u.UserType,
		ExpiresIn:    int64(s.tokens.TokenTTL().Seconds()),
	}, nil
}

// Logout revokes every refresh token for the holder of the access token.
// An unparseable token is still a successful logout.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	ctx, span := s.tracer.Start(ctx, "auth.Logout")
	defer span.End()

	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		s.logger.DebugContext(ctx, "logout with invalid token", "error", err)
		return nil
	}

	if err := s.refreshTokens.DeleteByUser(ctx, claims.UserID); err != nil {
		return apierrors.Wrap(apierrors.CodeInternal, "revoke refresh tokens", err)
	}

	s.logAudit(ctx, "user_logged_out", "user_id", claims.UserID)
	if s.metrics != nil {
		s.metrics.DecrementActiveSessions(1)
	}
	return nil
}

// Refresh issues a new access token against a live refresh token. The
// refresh token itself stays valid until it expires or the user logs out,
// so clients keep the one they were issued at sign-on.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer span.End()

	if refreshToken == "" {
		return "", apierrors.New(apierrors.CodeToken, "refresh token is required")
	}

	rec, err := s.refreshTokens.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "unknown_refresh_token")
			return "", apierrors.New(apierrors.CodeToken, "unknown refresh token")
		}
		return "", apierrors.Wrap(apierrors.CodeInternal, "look up refresh token", err)
	}
	if rec.Expired(s.now()) {
		s.authFailure(ctx, "refresh_token_expired", "user_id", rec.UserID)
		return "", apierrors.New(apierrors.CodeToken, "refresh token expired")
	}

	access, err := s.tokens.GenerateAccessToken(rec.UserID, rec.UserType)
	if err != nil {
		return "", apierrors.Wrap(apierrors.CodeInternal, "issue access token", err)
	}

	s.logAudit(ctx, "token_refreshed", "user_id", rec.UserID)
	if s.metrics != nil {
		s.metrics.IncrementTokenRefreshes()
	}
	return access, nil
}

// Validate reports whether an access token is currently good. It never
// errors on a bad token; the verdict is the answer.
func (s *Service) Validate(ctx context.Context, accessToken string) *ValidateOutput {
	ctx, span := s.tracer.Start(ctx, "auth.Validate")
	defer span.End()

	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementTokenValidations(false)
		}
		s.logger.DebugContext(ctx, "token validation failed", "error", err)
		return &ValidateOutput{Valid: false}
	}
	if s.metrics != nil {
		s.metrics.IncrementTokenValidations(true)
	}
	return &ValidateOutput{Valid: true, UserID: claims.UserID}
}
