package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// Indicator is a visual output that displays one color at a time.
type Indicator interface {
	SetColor(ctx context.Context, color scanDomain.Color) error
}

// LogIndicator reports every color change as a log line.
type LogIndicator struct {
	logger *slog.Logger
}

// NewLogIndicator creates a LogIndicator.
func NewLogIndicator(logger *slog.Logger) *LogIndicator {
	return &LogIndicator{logger: logger}
}

// SetColor logs the new color.
func (i *LogIndicator) SetColor(ctx context.Context, color scanDomain.Color) error {
	i.logger.InfoContext(ctx, "indicator changed", slog.String("color", string(color)))
	return nil
}

// WriterIndicator writes one line per color change, e.g. to a terminal.
type WriterIndicator struct {
	mu    sync.Mutex
	w     io.Writer
	clock func() time.Time
}

// NewWriterIndicator creates a WriterIndicator writing to w.
func NewWriterIndicator(w io.Writer, clock func() time.Time) *WriterIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &WriterIndicator{w: w, clock: clock}
}

// SetColor writes "<RFC3339 time> indicator <color>".
func (i *WriterIndicator) SetColor(ctx context.Context, color scanDomain.Color) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, err := fmt.Fprintf(i.w, "%s indicator %s\n", i.clock().UTC().Format(time.RFC3339), color)
	return err
}

// MultiIndicator fans a color change out to several indicators.
type MultiIndicator struct {
	indicators []Indicator
}

// NewMultiIndicator creates a MultiIndicator.
func NewMultiIndicator(indicators ...Indicator) *MultiIndicator {
	return &MultiIndicator{indicators: indicators}
}

// SetColor drives every indicator, even when one fails, and joins the errors.
func (m *MultiIndicator) SetColor(ctx context.Context, color scanDomain.Color) error {
	var errs []error
	for _, indicator := range m.indicators {
		if err := indicator.SetColor(ctx, color); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
