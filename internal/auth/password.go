package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Longer input would be truncated.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher hashes and verifies user passwords with bcrypt.
// The produced hash embeds the cost and salt, so verification needs nothing else.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher creates a Hasher using the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword returns the bcrypt hash of password.
func (h *Hasher) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
// A malformed hash or a password longer than MaxPasswordBytes is a mismatch.
func (h *Hasher) CheckPassword(password, hash string) bool {
	if len(password) > MaxPasswordBytes {
		// Still pay for the comparison so the rejection takes as long as any other.
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password[:MaxPasswordBytes]))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordAgainstNothing spends the same bcrypt work as CheckPassword
// and always reports false. Use it when no stored hash exists so the caller's
// latency does not reveal whether the account does.
func (h *Hasher) CheckPasswordAgainstNothing(password string) bool {
	if len(password) > MaxPasswordBytes {
		password = password[:MaxPasswordBytes]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummyHash(), []byte(password))
	return false
}

func (h *Hasher) dummyHash() []byte {
	h.dummyOnce.Do(func() {
		// On failure dummy stays nil and the comparison fails fast.
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), h.cost)
	})
	return h.dummy
}
