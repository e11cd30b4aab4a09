package pin

import "golang.org/x/crypto/bcrypt"

// cost 12 keeps offline brute force of short numeric PINs expensive.
const cost = 12

// Hash returns a salted bcrypt hash of the PIN. The salt is fresh per call,
// so hashing the same PIN twice yields different outputs.
func Hash(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether pin matches the stored hash. bcrypt's comparison is
// constant-time over the digest. Malformed hashes from storage simply fail the
// comparison; Verify never panics or returns an error.
func Verify(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
