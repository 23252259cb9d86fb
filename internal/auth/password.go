package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored digest. Any
// failure, including a malformed digest, collapses to false so callers
// making auth decisions cannot distinguish a mismatch from an internal
// error. bcrypt digests embed their own salt and cost, so digests hashed
// at an older cost factor keep verifying after the cost is re-tuned.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
