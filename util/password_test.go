package util

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	hashed, err := HashPasswordArgon2("s3cretpass", salt)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hashed, "argon2id$") {
		t.Fatalf("expected argon2id prefix, got %q", hashed)
	}
	if strings.Contains(hashed, "s3cretpass") {
		t.Fatalf("hash must not contain the plaintext password")
	}

	match, err := VerifyPassword("s3cretpass", hashed, salt)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !match {
		t.Fatalf("expected correct password to verify")
	}

	match, err = VerifyPassword("wrongpass", hashed, salt)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if match {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if _, err := HashPasswordArgon2("", salt); err == nil {
		t.Fatalf("expected error hashing empty password")
	}
}

func TestGenerateSaltUnique(t *testing.T) {
	a, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	b, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if a == b {
		t.Fatalf("expected two salts to differ")
	}
}
