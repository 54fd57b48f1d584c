package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service ties user storage, password hashing and token issuing together.
type Service struct {
	users  UserRepository
	secret string
	ttl    time.Duration
}

// NewService creates an auth service. Tokens are signed with secret and
// expire after ttl.
func NewService(users UserRepository, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: secret, ttl: ttl}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	User        *User     `json:"user"`
	IssuedAt    time.Time `json:"-"`
}

// Login checks username and password and issues an access token.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn the same hashing cost so timing does not reveal unknown users.
			_, _ = VerifyPassword(password, dummyHash) //nolint:errcheck // result unused
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := GenerateAccessToken(user, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}

	ttl := s.ttl
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User:        user,
		IssuedAt:    time.Now(),
	}, nil
}

// AddUser validates and stores a new active user.
func (s *Service) AddUser(ctx context.Context, username, password string, group Group) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !IsValidGroup(group) {
		return nil, ErrInvalidGroup
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		Group:        group,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates an access token and loads its user, rejecting
// tokens of deleted or deactivated accounts.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// dummyHash is a valid PHC string used when the username is unknown.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$c29tZXNhbHRzb21lc2FsdA$WQ9pGrt0DUZ2cTLzWzmbp1FTBnLkHgEL7tzHcOWdkfY"
