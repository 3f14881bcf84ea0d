package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// maxTokenResponseBytes bounds how much of a token response body is read.
const maxTokenResponseBytes = 1 << 20

// TokenAcquirerConfig holds the credential exchange parameters.
type TokenAcquirerConfig struct {
	TokenURL       string
	Username       string
	Password       string
	ValidityWindow time.Duration
}

// tokenResponse is the subset of the token endpoint body the reader relies on.
type tokenResponse struct {
	AccessToken *string `json:"access_token"`
	TokenType   string  `json:"token_type"`
}

// httpTokenAcquirer implements TokenAcquirer with a form-encoded password grant.
type httpTokenAcquirer struct {
	config     TokenAcquirerConfig
	httpClient *http.Client
	store      *TokenStore
	clock      Clock
	logger     *slog.Logger

	// group collapses concurrent refreshes into one exchange.
	group singleflight.Group
}

// NewTokenAcquirer creates a TokenAcquirer that stores acquired tokens in store.
func NewTokenAcquirer(
	config TokenAcquirerConfig,
	httpClient *http.Client,
	store *TokenStore,
	clock Clock,
	logger *slog.Logger,
) TokenAcquirer {
	if config.ValidityWindow <= 0 {
		config.ValidityWindow = scanDomain.DefaultValidityWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &httpTokenAcquirer{
		config:     config,
		httpClient: httpClient,
		store:      store,
		clock:      clock,
		logger:     logger,
	}
}

// Refresh performs the credential exchange. Concurrent callers share the result
// of a single in-flight exchange. The exchange outlives any one caller's
// context; a cancelled caller stops waiting but the others still get the token.
func (a *httpTokenAcquirer) Refresh(ctx context.Context) (scanDomain.Token, error) {
	flight := context.WithoutCancel(ctx)
	ch := a.group.DoChan("refresh", func() (any, error) {
		token, err := a.exchange(flight)
		if err != nil {
			a.store.Clear()
			return scanDomain.Token{}, err
		}
		a.store.Set(token)
		return token, nil
	})

	select {
	case result := <-ch:
		return result.Val.(scanDomain.Token), result.Err
	case <-ctx.Done():
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "wait for token: %v", ctx.Err())
	}
}

// exchange posts the credentials and parses the access token from the response.
func (a *httpTokenAcquirer) exchange(ctx context.Context) (scanDomain.Token, error) {
	a.logger.Info("requesting auth token", slog.String("url", a.config.TokenURL))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.config.TokenURL,
		strings.NewReader(a.encodeCredentials()),
	)
	if err != nil {
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("token request failed", slog.Any("error", err))
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "perform request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("token request rejected",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(bytes.TrimSpace(body))),
		)
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "unexpected status %d", resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		a.logger.Error("token response is not valid json", slog.Any("error", err))
		return scanDomain.Token{}, errors.Wrapf(scanDomain.ErrAuthFailed, "decode response: %v", err)
	}
	if parsed.AccessToken == nil || *parsed.AccessToken == "" {
		a.logger.Error("token response has no access_token")
		return scanDomain.Token{}, errors.Wrap(scanDomain.ErrAuthFailed, "missing access_token")
	}

	token := scanDomain.Token{
		Value:     *parsed.AccessToken,
		ExpiresAt: a.clock().Add(a.config.ValidityWindow),
	}

	a.logger.Info("auth token obtained",
		slog.String("token_type", parsed.TokenType),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return token, nil
}

// encodeCredentials builds the form body in the field order the token endpoint
// documents: username, password, grant_type.
func (a *httpTokenAcquirer) encodeCredentials() string {
	return fmt.Sprintf("username=%s&password=%s&grant_type=%s",
		url.QueryEscape(a.config.Username),
		url.QueryEscape(a.config.Password),
		url.QueryEscape(scanDomain.GrantTypePassword),
	)
}
