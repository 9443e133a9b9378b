package bank

import "golang.org/x/crypto/bcrypt"

// Passwords are stored as bcrypt hashes, never in the clear. Accept/reject
// behavior is identical to an exact byte comparison of the original
// password, which is what the protocol promises.

// MinPasswordLength is the minimum accepted password length in bytes.
const MinPasswordLength = 1

// MaxPasswordLength is the maximum accepted password length in bytes. It
// matches the fixed 16-byte wire field, well under bcrypt's 72-byte limit.
const MaxPasswordLength = 16

// defaultBcryptCost trades hashing time against brute-force resistance.
// Accounts are opened interactively, so cost 10 is cheap enough.
const defaultBcryptCost = 10

// ValidatePassword checks the 1..16 byte length rule enforced at OPEN.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrPasswordFormat
	}
	return nil
}

// hashPassword creates a bcrypt hash of the given password.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword checks a password against a stored bcrypt hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
