package device

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// lineBufferSize is the number of pending lines kept before the scanner blocks.
const lineBufferSize = 16

// LineCardReader reads newline-delimited tag identifiers from a stream such as
// stdin or a serial bridge. Lines are consumed on a background goroutine so
// Read never blocks. Close stops that goroutine.
type LineCardReader struct {
	lines  chan string
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewLineCardReader starts reading lines from r.
func NewLineCardReader(r io.Reader, logger *slog.Logger) *LineCardReader {
	reader := &LineCardReader{
		lines:  make(chan string, lineBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go reader.scan(r)
	return reader
}

// Read returns the next pending card, if any. The tag id keeps the digits of
// the line as written.
func (r *LineCardReader) Read(ctx context.Context) (string, bool, error) {
	select {
	case line, ok := <-r.lines:
		if !ok {
			return "", false, r.closedErr()
		}
		tagID, err := scanDomain.ParseTagID(line)
		if err != nil {
			return "", false, err
		}
		return tagID, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
		return "", false, nil
	}
}

// Close stops the background scanner. A scanner blocked in the underlying
// Read returns on its next line or at end of stream.
func (r *LineCardReader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

func (r *LineCardReader) scan(source io.Reader) {
	defer close(r.lines)

	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		select {
		case <-r.done:
			return
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case r.lines <- line:
		case <-r.done:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		r.logger.Error("card reader stream failed", slog.Any("error", err))
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		return
	}
	r.logger.Info("card reader stream closed")
}

// closedErr reports why the stream ended. A clean end of stream reports no card.
func (r *LineCardReader) closedErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		return nil
	}
	return errors.Wrap(scanDomain.ErrReaderUnavailable, r.err.Error())
}
