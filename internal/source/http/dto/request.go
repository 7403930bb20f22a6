// Package dto provides data transfer objects for the source management API.
package dto

import (
	validation "github.com/jellydator/validation"

	sourceDomain "github.com/allisson/relay/internal/source/domain"
	customValidation "github.com/allisson/relay/internal/validation"
)

// CreateSourceRequest contains the parameters for registering a source.
type CreateSourceRequest struct {
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	IsSecured bool   `json:"is_secured"`
}

// Validate checks if the create source request is valid.
func (r *CreateSourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *CreateSourceRequest) ToInput() *sourceDomain.CreateSourceInput {
	return &sourceDomain.CreateSourceInput{
		Name:      r.Name,
		IsActive:  r.IsActive,
		IsSecured: r.IsSecured,
	}
}

// UpdateSourceRequest contains the mutable fields of a source.
type UpdateSourceRequest struct {
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	IsSecured bool   `json:"is_secured"`
}

// Validate checks if the update source request is valid.
func (r *UpdateSourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *UpdateSourceRequest) ToInput() *sourceDomain.UpdateSourceInput {
	return &sourceDomain.UpdateSourceInput{
		Name:      r.Name,
		IsActive:  r.IsActive,
		IsSecured: r.IsSecured,
	}
}
