package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing latency against brute-force resistance; the
// library default is the industry standard.
const bcryptCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password with bcrypt. Deliberately slow;
// keep it out of hot paths.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext password against its stored hash using
// a constant-time comparison.
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
