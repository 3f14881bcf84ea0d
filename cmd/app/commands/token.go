package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	scanService "github.com/allisson/badgereader/internal/scan/service"
)

// RunToken performs one credential exchange and prints when the token expires.
// The token value is never printed.
func RunToken(
	ctx context.Context,
	acquirer scanService.TokenAcquirer,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("requesting access token")

	token, err := acquirer.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire token: %w", err)
	}

	expiresAt := token.ExpiresAt.UTC().Format(time.RFC3339)

	if format == "json" {
		return writeJSON(writer, map[string]interface{}{
			"expires_at": expiresAt,
		})
	}

	_, err = fmt.Fprintf(writer, "Token acquired, valid until %s\n", expiresAt)
	return err
}
