package crypto

import (
	"strings"
	"testing"
)

// cheapParams keep the tests fast; production uses DefaultHashParams.
func cheapParams() HashParams {
	return HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestHasherHashFormat(t *testing.T) {
	h := NewHasher(DefaultHashParams())

	hash, err := h.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("Hash() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[2] != "v=19" {
		t.Errorf("Hash() version = %q, want %q", parts[2], "v=19")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("Hash() params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
	if strings.Contains(hash, "correct-horse-battery-staple") {
		t.Error("Hash() output contains the plaintext password")
	}
}

func TestHasherVerify(t *testing.T) {
	h := NewHasher(cheapParams())

	hash, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct password", password: "Secret123!", want: true},
		{name: "wrong password", password: "Secret123?", want: false},
		{name: "empty password", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := h.Verify(tt.password, hash)
			if err != nil {
				t.Fatalf("Verify() unexpected error: %v", err)
			}
			if match != tt.want {
				t.Errorf("Verify() = %v, want %v", match, tt.want)
			}
		})
	}
}

func TestHasherVerifyUsesStoredParams(t *testing.T) {
	old := NewHasher(cheapParams())
	hash, err := old.Hash("rotate-me")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	current := NewHasher(DefaultHashParams())
	match, err := current.Verify("rotate-me", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !match {
		t.Error("Verify() should accept hashes produced with older parameters")
	}
}

func TestHasherProducesDifferentHashes(t *testing.T) {
	h := NewHasher(cheapParams())

	hash1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	hash2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for same password (salt should differ)")
	}
}

func TestHasherVerifyInvalidHash(t *testing.T) {
	h := NewHasher(cheapParams())

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{name: "garbage", hash: "invalid-hash-format", wantErr: ErrInvalidHashFormat},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", wantErr: ErrInvalidHashFormat},
		{name: "wrong version", hash: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", wantErr: ErrIncompatibleVersion},
		{name: "bad salt", hash: "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", wantErr: ErrInvalidHashFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Verify("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasherVerifyDummy(t *testing.T) {
	h := NewHasher(cheapParams())

	h.VerifyDummy("anything")
	if h.dummy == "" {
		t.Fatal("VerifyDummy() should lazily build its throwaway hash")
	}
	first := h.dummy
	h.VerifyDummy("anything else")
	if h.dummy != first {
		t.Error("VerifyDummy() should reuse the throwaway hash")
	}
}
