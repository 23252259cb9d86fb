package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundtrip(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Sw0rdfish!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if digest == "Sw0rdfish!" {
		t.Fatal("digest equals plaintext")
	}
	if !VerifyPassword("Sw0rdfish!", digest) {
		t.Fatal("expected digest to verify")
	}
}

func TestPasswordMismatch(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Sw0rdfish!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if VerifyPassword("sw0rdfish!", digest) {
		t.Fatal("wrong password verified")
	}
}

func TestPasswordMalformedDigest(t *testing.T) {
	t.Parallel()

	if VerifyPassword("anything", "not-a-bcrypt-digest") {
		t.Fatal("malformed digest verified")
	}
	if VerifyPassword("anything", "") {
		t.Fatal("empty digest verified")
	}
}

// Digests embed their own cost, so re-tuning the configured cost must
// not invalidate existing credentials.
func TestPasswordCrossCostVerification(t *testing.T) {
	t.Parallel()

	oldDigest, err := HashPassword("Sw0rdfish!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword("Sw0rdfish!", oldDigest) {
		t.Fatal("digest hashed at a lower cost no longer verifies")
	}

	newDigest, err := HashPassword("Sw0rdfish!", bcrypt.MinCost+2)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword("Sw0rdfish!", newDigest) {
		t.Fatal("digest hashed at a higher cost does not verify")
	}
}

func TestPasswordUniqueSalts(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Sw0rdfish!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	second, err := HashPassword("Sw0rdfish!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if first == second {
		t.Fatal("two digests of the same password are identical")
	}
}
