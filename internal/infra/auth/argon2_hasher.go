// Package auth provides concrete implementations for authentication-related
// domain services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"sharp/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Default argon2id parameters. These match the defaults of the reference
// deployment: 19 MiB of memory, 2 passes, 1 lane, 16-byte salt, 32-byte key.
const (
	defaultMemory  uint32 = 19 * 1024
	defaultTime    uint32 = 2
	defaultThreads uint8  = 1
	saltLength            = 16
	keyLength      uint32 = 32
)

// ErrMalformedHash is returned when a stored hash string cannot be decoded.
// It must never be treated as a password mismatch.
var ErrMalformedHash = errors.New("malformed password hash")

// argon2Hasher is a concrete implementation of the PasswordHasher interface
// using argon2id with self-describing PHC-formatted hash strings.
type argon2Hasher struct {
	memory  uint32
	time    uint32
	threads uint8
}

// NewArgon2Hasher is the constructor for argon2Hasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewArgon2Hasher() service.PasswordHasher {
	return &argon2Hasher{
		memory:  defaultMemory,
		time:    defaultTime,
		threads: defaultThreads,
	}
}

// Hash generates a PHC string from a plaintext password using a fresh
// random salt and the hasher's default parameters, e.g.
// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>.
func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	digest := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, keyLength)

	return encodeHash(h.memory, h.time, h.threads, salt, digest), nil
}

// Check recomputes the password hash with the parameters and salt embedded
// in encodedHash and compares the digests byte-for-byte in constant time.
func (h *argon2Hasher) Check(password, encodedHash string) (bool, error) {
	params, salt, digest, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(digest, computed) == 1, nil
}

// DummyCheck hashes the password against a throwaway random salt with the
// default parameters and discards the result. Its CPU cost matches Check
// against a default-parameter hash.
func (h *argon2Hasher) DummyCheck(password string) {
	salt := make([]byte, saltLength)
	// A failed read falls back to the zero salt; the result is discarded
	// either way, only the work matters.
	_, _ = rand.Read(salt)

	argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, keyLength)
}

type hashParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func encodeHash(memory, time uint32, threads uint8, salt, digest []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, time, threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
}

// decodeHash parses a PHC-formatted argon2id hash string into its
// parameters, salt and digest.
func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	var params hashParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "wrong number of segments")
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, errors.Wrapf(ErrMalformedHash, "unsupported algorithm %q", parts[1])
	}

	var phcVersion int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &phcVersion); err != nil {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "unreadable version segment")
	}
	if phcVersion != argon2.Version {
		return params, nil, nil, errors.Wrapf(ErrMalformedHash, "incompatible argon2 version %d", phcVersion)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "unreadable parameter segment")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "undecodable salt")
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "undecodable digest")
	}
	if len(digest) == 0 {
		return params, nil, nil, errors.Wrap(ErrMalformedHash, "empty digest")
	}

	return params, salt, digest, nil
}
