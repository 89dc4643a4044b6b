package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Operator is the single shop account allowed to use the API.
type Operator struct {
	username     string
	passwordHash []byte
}

// NewOperator builds an operator from a username and a bcrypt hash.
func NewOperator(username, passwordHash string) *Operator {
	return &Operator{username: username, passwordHash: []byte(passwordHash)}
}

// Authenticate reports whether the credentials match the operator.
func (o *Operator) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(o.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(o.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
