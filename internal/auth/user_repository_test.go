package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{
		Username:     "testuser",
		PasswordHash: hash,
		Group:        GroupAdmin,
		IsActive:     true,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("Username = %q, want %q", got.Username, "testuser")
	}
	if got.Group != GroupAdmin {
		t.Errorf("Group = %q, want %q", got.Group, GroupAdmin)
	}
	if !got.IsActive {
		t.Error("IsActive should be true")
	}
	if got.PasswordHash != hash {
		t.Error("PasswordHash should round-trip")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestUserRepository_DefaultGroup(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &User{Username: "plain", PasswordHash: "x", IsActive: true}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "plain")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.Group != GroupDefault {
		t.Errorf("Group = %q, want %q", got.Group, GroupDefault)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "alice", GroupDefault)

	err := repo.Create(ctx, &User{Username: "alice", PasswordHash: "x"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrUsernameExists", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByUsername(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.Delete(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Delete() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.SetGroup(ctx, "nope", GroupAdmin); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetGroup() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("List() on empty table = %v, want empty slice", users)
	}

	seedTestUser(t, db, "zoe", GroupDefault)
	seedTestUser(t, db, "adam", GroupAdmin)

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 || users[0].Username != "adam" || users[1].Username != "zoe" {
		t.Errorf("List() = %+v, want adam then zoe", users)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestUserRepository_SetGroupAndDelete(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "bob", GroupDefault)

	if err := repo.SetGroup(ctx, user.ID, "superuser"); !errors.Is(err, ErrInvalidGroup) {
		t.Errorf("SetGroup(invalid) error = %v, want ErrInvalidGroup", err)
	}
	if err := repo.SetGroup(ctx, user.ID, GroupAdmin); err != nil {
		t.Fatalf("SetGroup() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, user.ID)
	if !got.IsAdmin() {
		t.Errorf("Group = %q, want admin", got.Group)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrUserNotFound", err)
	}
}
