package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	scanService "github.com/allisson/badgereader/internal/scan/service"
)

// RunEncryptPassword encrypts the API password with the KMS key at keyURI and
// prints the base64 ciphertext to use as API_PASSWORD_CIPHERTEXT.
func RunEncryptPassword(
	ctx context.Context,
	credentialService scanService.CredentialService,
	logger *slog.Logger,
	writer io.Writer,
	password string,
	keyURI string,
) error {
	logger.Info("encrypting api password")

	ciphertext, err := credentialService.EncryptPassword(ctx, password, keyURI)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	_, err = fmt.Fprintf(writer, "API_PASSWORD_CIPHERTEXT=%s\n", ciphertext)
	return err
}
