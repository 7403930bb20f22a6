package domain

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/allisson/relay/internal/errors"
)

// Definition declares one pipeline in a definitions file.
//
//	pipelines:
//	  - source_id: 0190a0b5-7c3e-7d42-8f7c-0d6f4b1d2a11
//	    name: slack-alerts
//	    active: true
//	    config:
//	      destination: https://hooks.slack.com/services/...
type Definition struct {
	SourceID uuid.UUID      `yaml:"source_id"`
	Name     string         `yaml:"name"`
	Active   *bool          `yaml:"active"`
	Config   map[string]any `yaml:"config"`
}

// IsActive reports the declared active flag, defaulting to true.
func (d Definition) IsActive() bool {
	return d.Active == nil || *d.Active
}

type definitionsDocument struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// ParseDefinitions decodes a YAML definitions document. Every entry needs a
// source_id and a name, and (source_id, name) pairs must be unique.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var doc definitionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidDefinition, "yaml: %v", err)
	}

	seen := make(map[string]struct{}, len(doc.Pipelines))
	for i, def := range doc.Pipelines {
		if def.SourceID == uuid.Nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "pipelines[%d]: source_id is required", i)
		}
		if def.Name == "" {
			return nil, errors.Wrapf(ErrInvalidDefinition, "pipelines[%d]: name is required", i)
		}
		key := def.SourceID.String() + "/" + def.Name
		if _, ok := seen[key]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "pipelines[%d]: duplicate pipeline %q", i, def.Name)
		}
		seen[key] = struct{}{}
		if doc.Pipelines[i].Config == nil {
			doc.Pipelines[i].Config = map[string]any{}
		}
	}
	return doc.Pipelines, nil
}

// LoadDefinitionsFile reads and parses a definitions file.
func LoadDefinitionsFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline definitions: %w", err)
	}
	return ParseDefinitions(data)
}

// ImportResult summarizes a definitions import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
