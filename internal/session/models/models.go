package models

import (
	"fmt"
	"time"
)

// Role is the internal role derived from the backend's single-character user
// type code. It decides which landing page a user belongs on.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBackOffice Role = "back-office"
)

// User type codes as the backend reports them.
const (
	UserTypeAdmin    = "A"
	UserTypeStandard = "U"
)

// Landing paths per role. Role mismatches redirect here instead of an
// access-denied page.
const (
	AdminLandingPath      = "/menu/admin"
	BackOfficeLandingPath = "/menu/main"
	LoginPath             = "/login"
)

// RoleFromUserType maps the backend's user type code to a Role.
// Unknown codes fall back to back-office, matching the safer default.
func RoleFromUserType(userType string) Role {
	if userType == UserTypeAdmin {
		return RoleAdmin
	}
	return RoleBackOffice
}

// LandingPath returns the role-appropriate post-login path.
func (r Role) LandingPath() string {
	if r == RoleAdmin {
		return AdminLandingPath
	}
	return BackOfficeLandingPath
}

// Identity is the in-memory representation of the signed-in user.
type Identity struct {
	ID          string
	UserID      string
	DisplayName string
	Role        Role
	AvatarRef   string
	CreatedAt   time.Time
	IsActive    bool
}

// SessionDescriptor is the volatile-tier record of who is logged in and
// since when. LoginTime is epoch milliseconds, set once at login.
type SessionDescriptor struct {
	UserID    string `json:"userId"`
	UserType  string `json:"userType"`
	Role      Role   `json:"role"`
	LoginTime int64  `json:"loginTime"`
}

// Validate checks internal consistency: the role must agree with the user
// type code and the login time must be set.
func (d *SessionDescriptor) Validate() error {
	if d.UserID == "" {
		return fmt.Errorf("session descriptor missing user id")
	}
	if d.LoginTime <= 0 {
		return fmt.Errorf("session descriptor missing login time")
	}
	if RoleFromUserType(d.UserType) != d.Role {
		return fmt.Errorf("session descriptor role %q inconsistent with user type %q", d.Role, d.UserType)
	}
	return nil
}

// Age reports how long ago the descriptor was created.
func (d *SessionDescriptor) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(d.LoginTime))
}

// Expired reports whether the session has outlived maxLifetime. A session
// exactly at the boundary is still valid.
func (d *SessionDescriptor) Expired(now time.Time, maxLifetime time.Duration) bool {
	return d.Age(now) > maxLifetime
}

// LoginResult is the normalized outcome of a successful credential exchange.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	UserID       string
	FullName     string
	UserType     string
	ExpiresIn    int64
}
