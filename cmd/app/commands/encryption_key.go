package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/relay/internal/crypto/domain"
	cryptoService "github.com/allisson/relay/internal/crypto/service"
)

// RunCreateEncryptionKey generates a random key for algorithm and prints the
// environment variables that configure it. With kmsKeyURI the key is wrapped
// by KMS and only the ciphertext is printed; without it the plain hex key is
// printed, which is meant for local development.
//
// Output format:
//   - ENCRYPTION_ALGORITHM="<algorithm>"
//   - ENCRYPTION_KEY="<hex>" or ENCRYPTION_KMS_KEY_URI="<uri>" plus
//     ENCRYPTION_KMS_WRAPPED_KEY="<base64-kms-ciphertext>"
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	algorithmStr string,
	kmsKeyURI string,
) error {
	algorithm, err := cryptoDomain.ParseAlgorithm(algorithmStr)
	if err != nil {
		return fmt.Errorf(
			"invalid algorithm: %s (valid options: aes-gcm, chacha20-poly1305)",
			algorithmStr,
		)
	}

	hexKey, rawKey, err := cryptoService.GenerateEncryptionKey(algorithm)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(rawKey)

	_, _ = fmt.Fprintln(writer, "# Encryption key configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_ALGORITHM=\"%s\"\n", algorithm)

	if kmsKeyURI == "" {
		logger.Warn("encryption key generated without KMS, do not use the plain key in production")
		_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", hexKey)
		return nil
	}

	wrapped, err := kmsService.WrapKey(ctx, kmsKeyURI, rawKey)
	if err != nil {
		return fmt.Errorf("failed to wrap encryption key with KMS: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KMS_WRAPPED_KEY=\"%s\"\n", wrapped)

	logger.Info("encryption key wrapped with KMS", slog.String("algorithm", string(algorithm)))
	return nil
}
