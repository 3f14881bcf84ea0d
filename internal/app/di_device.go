package app

import (
	"fmt"
	"sync"

	"github.com/allisson/badgereader/internal/config"
	"github.com/allisson/badgereader/internal/device"
	scanUseCase "github.com/allisson/badgereader/internal/scan/usecase"
)

// deviceComponents holds the hardware-facing adapters.
type deviceComponents struct {
	connectivity scanUseCase.Connectivity
	indicator    scanUseCase.Indicator
	cardReader   scanUseCase.CardReader

	connectivityInit sync.Once
	indicatorInit    sync.Once
	cardReaderInit   sync.Once
}

// Connectivity returns the network link monitor.
func (c *Container) Connectivity() (scanUseCase.Connectivity, error) {
	var err error
	c.connectivityInit.Do(func() {
		c.connectivity, err = c.initConnectivity()
		if err != nil {
			c.initErrors["connectivity"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["connectivity"]; exists {
		return nil, storedErr
	}
	return c.connectivity, nil
}

// Indicator returns the indicator fan-out: a log line and a terminal line per change.
func (c *Container) Indicator() scanUseCase.Indicator {
	c.indicatorInit.Do(func() {
		c.indicator = device.NewMultiIndicator(
			device.NewLogIndicator(c.Logger()),
			device.NewWriterIndicator(c.terminal, nil),
		)
	})
	return c.indicator
}

// CardReader returns the card reader adapter selected by READER_KIND.
func (c *Container) CardReader() (scanUseCase.CardReader, error) {
	var err error
	c.cardReaderInit.Do(func() {
		c.cardReader, err = c.initCardReader()
		if err != nil {
			c.initErrors["cardReader"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cardReader"]; exists {
		return nil, storedErr
	}
	return c.cardReader, nil
}

// initConnectivity dials the scan endpoint host, or always reports connected
// when the check is disabled.
func (c *Container) initConnectivity() (scanUseCase.Connectivity, error) {
	if !c.config.ConnectivityCheckEnabled {
		return device.AlwaysConnected{}, nil
	}

	address, err := device.AddressFromURL(c.config.ScanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive connectivity address: %w", err)
	}

	return device.NewTCPConnectivity(
		device.TCPConnectivityConfig{
			Address:          address,
			ConnectRetries:   c.config.ConnectRetries,
			ReconnectRetries: c.config.ReconnectRetries,
			RetryInterval:    c.config.ConnectRetryInterval,
		},
		c.Logger(),
	), nil
}

// initCardReader creates the card reader for the configured kind.
func (c *Container) initCardReader() (scanUseCase.CardReader, error) {
	switch c.config.ReaderKind {
	case config.ReaderKindHTTP:
		httpClient, err := c.HTTPClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get http client for card reader: %w", err)
		}
		return device.NewHTTPCardReader(c.config.ReaderURL, httpClient), nil
	case config.ReaderKindStdin:
		return device.NewLineCardReader(c.stdin, c.Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported reader kind: %s", c.config.ReaderKind)
	}
}
