package server

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials holds the single admin account. PasswordHash is a bcrypt
// hash.
type AdminCredentials struct {
	User         string
	PasswordHash string
}

func (c AdminCredentials) verify(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1
	// Always run bcrypt so a wrong user costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return userOK && passErr == nil
}
