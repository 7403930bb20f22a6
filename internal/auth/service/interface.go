// Package service provides the admin token primitives used to protect the
// management API.
package service

// AdminTokenService generates, hashes and verifies admin bearer tokens. Only
// the Argon2id hash of the token is configured on the server.
type AdminTokenService interface {
	// GenerateToken creates a new random token and returns it together with its hash.
	// The plain token is shown once to the operator.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token in PHC format.
	HashToken(plainToken string) (tokenHash string, err error)

	// VerifyToken reports whether plainToken matches tokenHash. Malformed hashes never match.
	VerifyToken(plainToken string, tokenHash string) bool
}
