package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-long-enough-32"

func TestService_AddUserAndLogin(t *testing.T) {
	db := testDB(t)
	svc := NewService(NewUserRepository(db), testSecret, 30*time.Minute)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, "alice", "s3cret-password", GroupAdmin)
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	res, err := svc.Login(ctx, "alice", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.TokenType != "Bearer" || res.ExpiresIn != 1800 {
		t.Errorf("result = %+v", res)
	}

	got, err := svc.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID || !got.IsAdmin() {
		t.Errorf("Authenticate() user = %+v", got)
	}
}

func TestService_AddUserValidation(t *testing.T) {
	svc := NewService(NewUserRepository(testDB(t)), testSecret, 0)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		group    Group
		wantErr  error
	}{
		{"bad username", "no spaces", "long-enough", GroupDefault, ErrInvalidUsername},
		{"bad group", "bob", "long-enough", "owner", ErrInvalidGroup},
		{"short password", "bob", "short", GroupDefault, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddUser(ctx, tt.username, tt.password, tt.group); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddUser() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.AddUser(ctx, "bob", "long-enough", GroupDefault); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if _, err := svc.AddUser(ctx, "bob", "long-enough", GroupDefault); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("AddUser(duplicate) error = %v, want ErrUsernameExists", err)
	}
}

func TestService_LoginFailures(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	svc := NewService(repo, testSecret, 0)
	ctx := context.Background()

	seedTestUser(t, db, "carol", GroupDefault)

	if _, err := svc.Login(ctx, "carol", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "test-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_AuthenticateDeletedUser(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	svc := NewService(repo, testSecret, 0)
	ctx := context.Background()

	user := seedTestUser(t, db, "dave", GroupDefault)
	res, err := svc.Login(ctx, "dave", "test-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, res.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate(deleted user) error = %v, want ErrTokenInvalid", err)
	}
}
