package security

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campus/contexts/identity-access/identity-service/ports"
)

// BcryptHasher implements the hashing port with bcrypt. Cost 0 falls back to
// the library default.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	raw, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (h BcryptHasher) Compare(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// UUIDTokenSource mints opaque session tokens.
type UUIDTokenSource struct{}

func (UUIDTokenSource) NewToken() string {
	return uuid.NewString()
}

// SystemClock is the production time source.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.PasswordHasher = BcryptHasher{}
var _ ports.TokenSource = UUIDTokenSource{}
var _ ports.Clock = SystemClock{}
