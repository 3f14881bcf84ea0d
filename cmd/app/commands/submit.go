package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	scanUseCase "github.com/allisson/badgereader/internal/scan/usecase"
)

// ScanDispatcher submits one scan event and records its outcome.
type ScanDispatcher interface {
	Dispatch(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome
}

// RunSubmit submits a single tag as if it had been read by the card reader,
// prints the outcome, and waits for the indicator to turn off.
// A failed submission is reported in the output, not as an error.
func RunSubmit(
	ctx context.Context,
	dispatcher ScanDispatcher,
	feedback scanUseCase.FeedbackController,
	logger *slog.Logger,
	writer io.Writer,
	tag string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	event, err := scanDomain.NewScanEventFromText(tag, time.Now())
	if err != nil {
		return fmt.Errorf("invalid tag: %w", err)
	}

	logger.Info("submitting tag", slog.String("tag_id", event.TagID))

	outcome := dispatcher.Dispatch(ctx, event)

	if err := feedback.Wait(ctx); err != nil {
		return fmt.Errorf("interrupted while showing feedback: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]interface{}{
			"tag_id":      event.TagID,
			"outcome":     string(outcome.Kind),
			"status_code": outcome.StatusCode,
			"detail":      outcome.Detail,
			"success":     outcome.IsSuccess(),
		})
	}

	_, err = fmt.Fprintf(writer, "Tag %s: %s\n", event.TagID, outcome.String())
	return err
}
