package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("security: password mismatch")
	ErrPasswordTooLong  = errors.New("security: password exceeds 72 bytes")
)

// maxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// rather than silently truncated, so two passwords sharing a 72-byte prefix
// never verify against each other's hash.
const maxPasswordBytes = 72

// BcryptHasher hashes account passwords. Cost below the bcrypt minimum
// falls back to the library default, so the zero value is usable.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", fmt.Errorf("security: hash password: %w", err)
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("security: compare password: %w", err)
	}
	return nil
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}
