package domain

import (
	"github.com/allisson/relay/internal/errors"
)

// Source errors.
var (
	// ErrSourceNotFound indicates the source does not exist or was disabled.
	ErrSourceNotFound = errors.Wrap(errors.ErrNotFound, "source not found")

	// ErrSourceKeyMismatch indicates the presented key does not open an active
	// source. Unknown and disabled sources report it too, so ingestion callers
	// cannot probe which source ids exist.
	ErrSourceKeyMismatch = errors.Wrap(errors.ErrAuthenticationFailed, "invalid source key")

	// ErrKeyGenerationFailed indicates the secure random source could not produce a key.
	ErrKeyGenerationFailed = errors.New("source key generation failed")
)
