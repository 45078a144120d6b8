package security_test

import (
	"testing"

	"github.com/geocoder89/healthvault/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery staple")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Fatal("password stored in plaintext")
	}

	if err := security.CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("check rejected the right password: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong password"); err == nil {
		t.Fatal("check accepted the wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := security.HashPassword("same input")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	h2, err := security.HashPassword("same input")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical")
	}
}
