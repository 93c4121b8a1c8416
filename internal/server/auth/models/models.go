package models

import "time"

// User type codes as stored on the sign-on record.
const (
	UserTypeAdmin    = "A"
	UserTypeStandard = "U"
)

// User is a CardDemo sign-on record.
type User struct {
	UserID       string
	FirstName    string
	LastName     string
	PasswordHash []byte
	UserType     string // "A" admin, "U" back-office
	CreatedAt    time.Time
	IsActive     bool
}

// FullName joins the name parts the way the sign-on screen displays them.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshTokenRecord tracks an issued refresh token. The token stays valid
// until it expires or the user logs out; refreshing does not rotate it.
type RefreshTokenRecord struct {
	Token     string
	UserID    string
	UserType  string
	Device    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its lifetime.
func (r *RefreshTokenRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
