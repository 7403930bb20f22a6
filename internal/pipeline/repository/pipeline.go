// Package repository implements Pipeline persistence for PostgreSQL, MySQL and SQLite.
package repository

import (
	"encoding/json"

	apperrors "github.com/allisson/relay/internal/errors"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

const pipelineColumns = `id, source_id, name, is_active, config, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func marshalConfig(pipeline *pipelineDomain.Pipeline) (string, error) {
	config := pipeline.Config
	if config == nil {
		config = map[string]any{}
	}
	data, err := json.Marshal(config)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal pipeline config")
	}
	return string(data), nil
}

func unmarshalConfig(data []byte, pipeline *pipelineDomain.Pipeline) error {
	pipeline.Config = map[string]any{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &pipeline.Config); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal pipeline config")
	}
	return nil
}
