package auth

import "golang.org/x/crypto/bcrypt"

// Cost 8 keeps a hash around 25ms on the small nodes this runs on.
// Acceptable for an internal back office with login rate limiting.
const bcryptCost = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
