package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/badgereader/internal/errors"
	customValidation "github.com/allisson/badgereader/internal/validation"
)

// tagSeparators are stripped from textual tag identifiers before validation.
var tagSeparators = strings.NewReplacer(":", "", "-", "", " ", "")

// ScanEvent is a single card presentation observed by the reader.
// It is immutable once constructed.
type ScanEvent struct {
	// ID correlates log lines for one scan. It is never sent to the remote service.
	ID uuid.UUID
	// TagID is the canonical uppercase hex identifier, without separators.
	TagID string
	// ObservedAt is when the card was read.
	ObservedAt time.Time
}

// NewScanEvent builds a ScanEvent from the raw unique identifier bytes of a card.
func NewScanEvent(uid []byte, observedAt time.Time) (*ScanEvent, error) {
	if len(uid) == 0 {
		return nil, errors.Wrap(ErrInvalidTagID, "empty card identifier")
	}
	return newScanEvent(FormatTagID(uid), observedAt), nil
}

// NewScanEventFromText builds a ScanEvent from a textual tag identifier, as typed
// on the command line or emitted by a serial bridge.
func NewScanEventFromText(raw string, observedAt time.Time) (*ScanEvent, error) {
	tagID, err := ParseTagID(raw)
	if err != nil {
		return nil, err
	}
	return newScanEvent(tagID, observedAt), nil
}

func newScanEvent(tagID string, observedAt time.Time) *ScanEvent {
	return &ScanEvent{
		ID:         uuid.Must(uuid.NewV7()),
		TagID:      tagID,
		ObservedAt: observedAt,
	}
}

// ParseTagID canonicalizes a textual tag identifier: separators (":", "-", " ")
// are removed and letters are upper-cased. The result must be non-empty hex.
func ParseTagID(raw string) (string, error) {
	tagID := strings.ToUpper(tagSeparators.Replace(strings.TrimSpace(raw)))

	err := validation.Validate(tagID,
		validation.Required,
		customValidation.UpperHex,
	)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidTagID, "%q: %s", raw, err.Error())
	}
	return tagID, nil
}

// FormatTagID renders the raw identifier bytes reported by a hardware reader in
// canonical form. Readers that already receive text use ParseTagID instead.
func FormatTagID(uid []byte) string {
	return strings.ToUpper(hex.EncodeToString(uid))
}
