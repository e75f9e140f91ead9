// Package bcrypt hashes admin credentials.
package bcrypt

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/bazaar/internal/domain"
)

var _ domain.PasswordHasher = (*Hasher)(nil)

// Hasher implements domain.PasswordHasher with bcrypt.
type Hasher struct {
	cost int
}

// New returns a hasher using the given cost; zero selects bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
