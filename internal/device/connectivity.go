package device

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// TCPConnectivityConfig holds link check configuration.
type TCPConnectivityConfig struct {
	// Address is the host:port checked with a TCP dial.
	Address          string
	DialTimeout      time.Duration
	ConnectRetries   int
	ReconnectRetries int
	RetryInterval    time.Duration
	// CheckInterval bounds how often IsConnected dials; results are cached in between.
	CheckInterval time.Duration
}

// TCPConnectivity treats the link as up when the remote service accepts a
// TCP connection.
type TCPConnectivity struct {
	config TCPConnectivityConfig
	dialer *net.Dialer
	logger *slog.Logger

	check     rate.Sometimes
	mu        sync.Mutex
	connected bool
}

// NewTCPConnectivity creates a TCPConnectivity for the configured address.
func NewTCPConnectivity(config TCPConnectivityConfig, logger *slog.Logger) *TCPConnectivity {
	if config.DialTimeout <= 0 {
		config.DialTimeout = time.Second
	}
	if config.ConnectRetries <= 0 {
		config.ConnectRetries = 30
	}
	if config.ReconnectRetries <= 0 {
		config.ReconnectRetries = 20
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 500 * time.Millisecond
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Second
	}
	return &TCPConnectivity{
		config: config,
		dialer: &net.Dialer{Timeout: config.DialTimeout},
		logger: logger,
		check:  rate.Sometimes{Interval: config.CheckInterval},
	}
}

// IsConnected reports the last check result, dialing again once CheckInterval
// has elapsed.
func (c *TCPConnectivity) IsConnected(ctx context.Context) bool {
	c.check.Do(func() {
		c.setConnected(c.dial(ctx) == nil)
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect checks the link up to ConnectRetries times.
func (c *TCPConnectivity) Connect(ctx context.Context) error {
	return c.attempt(ctx, c.config.ConnectRetries)
}

// Reconnect checks the link up to ReconnectRetries times.
func (c *TCPConnectivity) Reconnect(ctx context.Context) error {
	return c.attempt(ctx, c.config.ReconnectRetries)
}

func (c *TCPConnectivity) attempt(ctx context.Context, attempts int) error {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if lastErr = c.dial(ctx); lastErr == nil {
			c.setConnected(true)
			return nil
		}
		c.logger.Debug("network check failed",
			slog.String("address", c.config.Address),
			slog.Int("attempt", i),
			slog.Any("error", lastErr),
		)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			c.setConnected(false)
			return ctx.Err()
		case <-time.After(c.config.RetryInterval):
		}
	}
	c.setConnected(false)
	return errors.Wrapf(scanDomain.ErrNotConnected, "%s after %d attempts: %v", c.config.Address, attempts, lastErr)
}

func (c *TCPConnectivity) dial(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.config.Address)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (c *TCPConnectivity) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
}

// AlwaysConnected is a Connectivity for deployments without a link check.
type AlwaysConnected struct{}

// IsConnected always reports true.
func (AlwaysConnected) IsConnected(ctx context.Context) bool { return true }

// Connect always succeeds.
func (AlwaysConnected) Connect(ctx context.Context) error { return nil }

// Reconnect always succeeds.
func (AlwaysConnected) Reconnect(ctx context.Context) error { return nil }

// AddressFromURL returns the host:port a URL connects to, filling in the
// scheme's default port.
func AddressFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Hostname() == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
