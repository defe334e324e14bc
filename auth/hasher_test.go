package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if digest == "secret123" {
		t.Fatal("Hash() returned the plaintext")
	}

	if !hasher.Verify("secret123", digest) {
		t.Error("Verify() = false for the original plaintext")
	}
	if hasher.Verify("secret124", digest) {
		t.Error("Verify() = true for a different plaintext")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same plaintext are identical; salt missing")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "not a bcrypt digest", digest: "plaintext-password"},
		{name: "truncated", digest: "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hasher.Verify("anything", tt.digest) {
				t.Errorf("Verify() = true for malformed digest %q", tt.digest)
			}
		})
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	// out-of-range costs fall back to the bcrypt default instead of
	// producing a hasher that errors on every call
	hasher := NewHasher(99)
	if _, err := hasher.Hash("secret123"); err != nil {
		t.Errorf("Hash() with clamped cost error = %v", err)
	}
}
