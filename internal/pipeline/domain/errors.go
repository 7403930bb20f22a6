package domain

import (
	"github.com/allisson/relay/internal/errors"
)

// Pipeline errors.
var (
	// ErrPipelineNotFound indicates the pipeline does not exist.
	ErrPipelineNotFound = errors.Wrap(errors.ErrNotFound, "pipeline not found")

	// ErrInvalidDefinition indicates a pipeline definitions document is malformed.
	ErrInvalidDefinition = errors.Wrap(errors.ErrInvalidInput, "invalid pipeline definition")
)
