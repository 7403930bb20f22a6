package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/relay/internal/auth/service"
)

// RunHashAdminToken hashes the admin bearer token for ADMIN_TOKEN_HASH. When
// token is empty a new random token is generated and printed once.
func RunHashAdminToken(
	tokenService authService.AdminTokenService,
	writer io.Writer,
	token string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var (
		hash string
		err  error
	)
	generated := token == ""
	if generated {
		token, hash, err = tokenService.GenerateToken()
	} else {
		hash, err = tokenService.HashToken(token)
	}
	if err != nil {
		return fmt.Errorf("failed to hash admin token: %w", err)
	}

	if format == "json" {
		result := map[string]string{"admin_token_hash": hash}
		if generated {
			result["admin_token"] = token
		}
		return outputJSON(result, writer)
	}

	_, _ = fmt.Fprintf(writer, "ADMIN_TOKEN_HASH='%s'\n", hash)
	if generated {
		_, _ = fmt.Fprintf(writer, "\nAdmin token: %s\n", token)
		_, _ = fmt.Fprintln(writer, "IMPORTANT: The token is shown only once. Store it securely.")
	}
	return nil
}
