package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Group is the permission group a user belongs to.
type Group string

const (
	// GroupDefault may read and control devices and room states.
	GroupDefault Group = "default"

	// GroupAdmin may additionally manage users.
	GroupAdmin Group = "admin"
)

// ValidGroups lists the user groups in ascending privilege.
var ValidGroups = []Group{GroupDefault, GroupAdmin}

// IsValidGroup reports whether g is a known group.
func IsValidGroup(g Group) bool {
	for _, v := range ValidGroups {
		if g == v {
			return true
		}
	}
	return false
}

// User represents an API account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Group        Group     `json:"group"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user is in the admin group.
func (u *User) IsAdmin() bool {
	return u.Group == GroupAdmin
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidGroup       = errors.New("invalid user group")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidHash        = errors.New("invalid password hash")
)
