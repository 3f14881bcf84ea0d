// Package device provides adapters for the peripherals around the scan pipeline:
// card readers, the network link, and visual indicators.
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// maxReaderResponseBytes bounds how much of a reader response body is read.
const maxReaderResponseBytes = 4 << 10

// readerResponse is the body returned by GET <reader>/scan.
type readerResponse struct {
	RFID *string `json:"rfid"`
}

// HTTPCardReader polls a card reader bridge that exposes the last card in the
// field at GET <base-url>/scan.
type HTTPCardReader struct {
	scanURL    string
	httpClient *http.Client
}

// NewHTTPCardReader creates an HTTPCardReader for the bridge at baseURL.
func NewHTTPCardReader(baseURL string, httpClient *http.Client) *HTTPCardReader {
	return &HTTPCardReader{
		scanURL:    strings.TrimRight(baseURL, "/") + "/scan",
		httpClient: httpClient,
	}
}

// Read asks the bridge for a card. A null or empty rfid means no card is present.
func (r *HTTPCardReader) Read(ctx context.Context) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.scanURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create reader request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to poll reader: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReaderResponseBytes))
		return "", false, fmt.Errorf("reader returned status %d", resp.StatusCode)
	}

	var body readerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReaderResponseBytes)).Decode(&body); err != nil {
		return "", false, fmt.Errorf("failed to decode reader response: %w", err)
	}
	if body.RFID == nil || strings.TrimSpace(*body.RFID) == "" {
		return "", false, nil
	}

	tagID, err := scanDomain.ParseTagID(*body.RFID)
	if err != nil {
		return "", false, err
	}
	return tagID, true, nil
}
