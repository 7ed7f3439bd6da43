package auth

import (
	"crypto/rand"
	"encoding/base64"

	"sharp/internal/domain/service"

	"github.com/pkg/errors"
)

// tokenBytes is the entropy of a session token: 128 bits.
const tokenBytes = 16

// randomTokenSource implements service.TokenSource with crypto/rand.
type randomTokenSource struct{}

// NewRandomTokenSource is the constructor for randomTokenSource.
func NewRandomTokenSource() service.TokenSource {
	return &randomTokenSource{}
}

// NewToken draws 128 bits from the OS's CSPRNG and base64-encodes them.
func (s *randomTokenSource) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for session token")
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
