package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"carddemo/internal/server/auth"
	"carddemo/internal/server/auth/models"
	"carddemo/pkg/apierrors"
	"carddemo/pkg/sentinel"
)

const maxCredentialLen = 8

// Service implements the admin-only user management screens.
type Service struct {
	users  auth.UserStore
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(users auth.UserStore, opts ...Option) *Service {
	svc := &Service{
		users: users,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// UserInput carries the user add/update screen fields.
type UserInput struct {
	UserID    string
	FirstName string
	LastName  string
	Password  string
	UserType  string
}

func (in UserInput) validate(requirePassword bool) error {
	if in.UserID == "" || len(in.UserID) > maxCredentialLen {
		return apierrors.New(apierrors.CodeValidation, "user ID must be 1 to 8 characters")
	}
	if requirePassword && in.Password == "" {
		return apierrors.New(apierrors.CodeValidation, "password is required")
	}
	if len(in.Password) > maxCredentialLen {
		return apierrors.New(apierrors.CodeValidation, "password must be at most 8 characters")
	}
	if in.UserType != models.UserTypeAdmin && in.UserType != models.UserTypeStandard {
		return apierrors.New(apierrors.CodeValidation, "user type must be A or U")
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "hash password", err)
	}

	u := &models.User{
		UserID:       in.UserID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		UserType:     in.UserType,
		CreatedAt:    s.now(),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, apierrors.New(apierrors.CodeConflict, "user ID already exists")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "create user", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.UserID, "user_type", u.UserType)
	return u, nil
}

// UpdateUser changes name, type, and optionally the password.
func (s *Service) UpdateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apierrors.New(apierrors.CodeNotFound, "user not found")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "load user", err)
	}

	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.UserType = in.UserType
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apierrors.Wrap(apierrors.CodeInternal, "hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "update user", err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", u.UserID)
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return apierrors.New(apierrors.CodeNotFound, "user not found")
		}
		return apierrors.Wrap(apierrors.CodeInternal, "delete user", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apierrors.New(apierrors.CodeNotFound, "user not found")
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "load user", err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "list users", err)
	}
	return users, nil
}
