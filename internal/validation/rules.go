// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/relay/internal/errors"
)

// identifierRegex matches names that are safe to reference from definition files and URLs.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// UUID validates that a string is a non-nil UUID. Empty strings pass; pair with
// validation.Required when the field is mandatory.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		id, err := uuid.Parse(s)
		return err == nil && id != uuid.Nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// Identifier validates that a string starts with a letter or digit and contains
// only letters, digits, dots, dashes and underscores.
var Identifier = validation.NewStringRuleWithError(
	identifierRegex.MatchString,
	validation.NewError(
		"validation_identifier",
		"must start with a letter or digit and contain only letters, digits, '.', '-' or '_'",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
