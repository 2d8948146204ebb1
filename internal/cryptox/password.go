package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost must match the cost factor agreed with the backend.
const DefaultBcryptCost = 10

// PreparePassword turns a raw password into the bcrypt representation that is
// placed into request payloads. The raw password never leaves this function.
func PreparePassword(password []byte, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", fmt.Errorf("prepare password: %w", err)
	}
	return string(h), nil
}

// CheckPreparedPassword reports whether prepared is a bcrypt hash of password.
func CheckPreparedPassword(prepared string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(prepared), password) == nil
}
