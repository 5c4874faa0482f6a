package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

// HashPassword hashes a plain text password
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	return string(b), err
}

// CheckPassword compares a hashed password with the plain text password.
// A malformed hash counts as a mismatch.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
