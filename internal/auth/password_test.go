package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword_Verify(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$") {
		t.Errorf("hash = %q, want default argon2id PHC prefix", hash)
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"correct-horse-battery-staple", true},
		{"wrong-password", false},
		{"", false},
	}
	for _, tt := range tests {
		ok, err := VerifyPassword(tt.password, hash)
		if err != nil {
			t.Fatalf("VerifyPassword(%q) error = %v", tt.password, err)
		}
		if ok != tt.want {
			t.Errorf("VerifyPassword(%q) = %v, want %v", tt.password, ok, tt.want)
		}
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, _ := HashPassword("same-password")
	hash2, _ := HashPassword("same-password")
	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestHashParams_Custom(t *testing.T) {
	cheap := HashParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

	hash, err := cheap.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	ok, err := VerifyPassword("pw", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword() = %v, %v; want true", ok, err)
	}
	if !NeedsRehash(hash) {
		t.Error("NeedsRehash() = false for weaker parameters")
	}

	strong, _ := HashPassword("pw")
	if NeedsRehash(strong) {
		t.Error("NeedsRehash() = true for default parameters")
	}
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not PHC", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=16$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=1"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=1$!!!$aGFzaA"},
		{"empty key", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPassword("password", tt.hash)
			if !errors.Is(err, ErrInvalidHash) {
				t.Errorf("VerifyPassword() error = %v, want ErrInvalidHash", err)
			}
		})
	}
}
