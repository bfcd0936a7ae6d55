package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := svc.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := svc.Verify(hash, "correct horse battery"); err != nil {
		t.Errorf("Verify() with the right password: %v", err)
	}
	if err := svc.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() with the wrong password should fail")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	h1, err := svc.Hash("same input")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := svc.Hash("same input")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestPasswordHashRejectsLongInput(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	if _, err := svc.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
	if _, err := svc.Hash(strings.Repeat("x", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password: %v", err)
	}
}

func TestPasswordVerifyGarbageHash(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	if err := svc.Verify("not-a-bcrypt-hash", "anything"); err == nil {
		t.Error("Verify() should fail on a malformed hash")
	}
}
