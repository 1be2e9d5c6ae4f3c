package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	plaintexts := []string{"s3cret", "correct horse battery staple", "päss wörd", ""}

	for _, plain := range plaintexts {
		hash, err := HashPassword(plain, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash %q: %v", plain, err)
		}
		if hash == plain {
			t.Fatalf("hash must not equal plaintext")
		}
		if !VerifyPassword(hash, plain) {
			t.Fatalf("verify(%q, hash(%q)) = false, want true", plain, plain)
		}
	}
}

func TestPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if VerifyPassword(hash, "not-the-secret") {
		t.Fatal("verify accepted the wrong password")
	}
}

func TestPasswordMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$xx$broken"} {
		if VerifyPassword(digest, "anything") {
			t.Fatalf("verify accepted malformed digest %q", digest)
		}
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}
