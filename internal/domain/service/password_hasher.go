// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within
// a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (argon2id), keeping the
// domain pure.
type PasswordHasher interface {
	// Hash generates a self-describing hash string from a plaintext
	// password using a fresh random salt and default parameters.
	Hash(password string) (string, error)

	// Check recomputes the hash of password using the algorithm,
	// parameters and salt embedded in encodedHash and compares the two
	// digests in constant time. It returns (false, nil) on a mismatch and
	// a non-nil error only when the stored hash is malformed or the
	// hashing backend fails. The two outcomes must never be conflated.
	Check(password, encodedHash string) (bool, error)

	// DummyCheck burns the same CPU cost as Check against a
	// freshly-salted default-parameter hash and discards the result. The
	// login verifier calls it when the email is unknown so that the
	// latency of "unknown email" and "known email, wrong password" are
	// indistinguishable.
	DummyCheck(password string)
}
