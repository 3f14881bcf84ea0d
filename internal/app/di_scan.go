package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/allisson/badgereader/internal/http"
	"github.com/allisson/badgereader/internal/metrics"
	scanService "github.com/allisson/badgereader/internal/scan/service"
	scanUseCase "github.com/allisson/badgereader/internal/scan/usecase"
)

// scanComponents holds the token, submission, and feedback pipeline.
type scanComponents struct {
	tokenStore         *scanService.TokenStore
	credentialService  scanService.CredentialService
	tokenAcquirer      scanService.TokenAcquirer
	scanSubmitter      scanUseCase.ScanSubmitter
	feedbackController scanUseCase.FeedbackController
	readerLoop         *scanUseCase.ReaderLoop
	statusServer       *http.StatusServer

	tokenStoreInit         sync.Once
	credentialServiceInit  sync.Once
	tokenAcquirerInit      sync.Once
	scanSubmitterInit      sync.Once
	feedbackControllerInit sync.Once
	readerLoopInit         sync.Once
	statusServerInit       sync.Once
}

// TokenStore returns the in-memory token store shared by the acquirer and submitter.
func (c *Container) TokenStore() *scanService.TokenStore {
	c.tokenStoreInit.Do(func() {
		c.tokenStore = scanService.NewTokenStore()
	})
	return c.tokenStore
}

// CredentialService returns the service resolving the API password.
func (c *Container) CredentialService() scanService.CredentialService {
	c.credentialServiceInit.Do(func() {
		c.credentialService = scanService.NewCredentialService()
	})
	return c.credentialService
}

// TokenAcquirer returns the credential exchange client.
func (c *Container) TokenAcquirer() (scanService.TokenAcquirer, error) {
	var err error
	c.tokenAcquirerInit.Do(func() {
		c.tokenAcquirer, err = c.initTokenAcquirer()
		if err != nil {
			c.initErrors["tokenAcquirer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenAcquirer"]; exists {
		return nil, storedErr
	}
	return c.tokenAcquirer, nil
}

// ScanSubmitter returns the scan submission client.
func (c *Container) ScanSubmitter() (scanUseCase.ScanSubmitter, error) {
	var err error
	c.scanSubmitterInit.Do(func() {
		c.scanSubmitter, err = c.initScanSubmitter()
		if err != nil {
			c.initErrors["scanSubmitter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scanSubmitter"]; exists {
		return nil, storedErr
	}
	return c.scanSubmitter, nil
}

// FeedbackController returns the controller driving the indicator.
func (c *Container) FeedbackController() scanUseCase.FeedbackController {
	c.feedbackControllerInit.Do(func() {
		c.feedbackController = scanUseCase.NewFeedbackController(
			scanUseCase.FeedbackConfig{DisplayDuration: c.config.FeedbackDisplayDuration},
			c.Indicator(),
			nil,
			c.Logger(),
		)
	})
	return c.feedbackController
}

// ReaderLoop returns the polling loop connecting the card reader to the remote service.
func (c *Container) ReaderLoop() (*scanUseCase.ReaderLoop, error) {
	var err error
	c.readerLoopInit.Do(func() {
		c.readerLoop, err = c.initReaderLoop()
		if err != nil {
			c.initErrors["readerLoop"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["readerLoop"]; exists {
		return nil, storedErr
	}
	return c.readerLoop, nil
}

// StatusServer returns the status server, or nil when metrics are disabled.
func (c *Container) StatusServer() (*http.StatusServer, error) {
	var err error
	c.statusServerInit.Do(func() {
		c.statusServer, err = c.initStatusServer()
		if err != nil {
			c.initErrors["statusServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["statusServer"]; exists {
		return nil, storedErr
	}
	return c.statusServer, nil
}

// initTokenAcquirer resolves the API password and creates the acquirer.
func (c *Container) initTokenAcquirer() (scanService.TokenAcquirer, error) {
	httpClient, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get http client for token acquirer: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token acquirer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.HTTPTimeout)
	defer cancel()

	password, err := c.CredentialService().ResolvePassword(
		ctx,
		c.config.APIPassword,
		c.config.APIPasswordCiphertext,
		c.config.KMSKeyURI,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve api password: %w", err)
	}

	acquirer := scanService.NewTokenAcquirer(
		scanService.TokenAcquirerConfig{
			TokenURL:       c.config.TokenURL,
			Username:       c.config.APIUsername,
			Password:       password,
			ValidityWindow: c.config.TokenValidityWindow,
		},
		httpClient,
		c.TokenStore(),
		nil,
		c.Logger(),
	)

	return scanUseCase.NewTokenAcquirerWithMetrics(acquirer, businessMetrics), nil
}

// initScanSubmitter creates the submitter with its metrics decorator.
func (c *Container) initScanSubmitter() (scanUseCase.ScanSubmitter, error) {
	httpClient, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get http client for scan submitter: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for scan submitter: %w", err)
	}

	store, acquirer, err := c.authComponents()
	if err != nil {
		return nil, fmt.Errorf("failed to get token acquirer for scan submitter: %w", err)
	}

	connectivity, err := c.Connectivity()
	if err != nil {
		return nil, fmt.Errorf("failed to get connectivity for scan submitter: %w", err)
	}

	submitter := scanUseCase.NewScanSubmitter(
		scanUseCase.SubmitterConfig{
			ScanURL:     c.config.ScanURL,
			AuthEnabled: c.config.AuthEnabled,
		},
		httpClient,
		store,
		acquirer,
		connectivity,
		nil,
		c.Logger(),
	)

	return scanUseCase.NewScanSubmitterWithMetrics(submitter, businessMetrics), nil
}

// authComponents returns the token store and acquirer, or nils when auth is
// disabled so no password is resolved.
func (c *Container) authComponents() (*scanService.TokenStore, scanService.TokenAcquirer, error) {
	if !c.config.AuthEnabled {
		return nil, nil, nil
	}
	acquirer, err := c.TokenAcquirer()
	if err != nil {
		return nil, nil, err
	}
	return c.TokenStore(), acquirer, nil
}

// initReaderLoop creates the reader loop with all its dependencies.
func (c *Container) initReaderLoop() (*scanUseCase.ReaderLoop, error) {
	cardReader, err := c.CardReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get card reader for reader loop: %w", err)
	}

	connectivity, err := c.Connectivity()
	if err != nil {
		return nil, fmt.Errorf("failed to get connectivity for reader loop: %w", err)
	}

	submitter, err := c.ScanSubmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get scan submitter for reader loop: %w", err)
	}

	store, acquirer, err := c.authComponents()
	if err != nil {
		return nil, fmt.Errorf("failed to get token acquirer for reader loop: %w", err)
	}

	loop := scanUseCase.NewReaderLoop(
		scanUseCase.ReaderLoopConfig{
			ReaderID:          c.config.ReaderID,
			AuthEnabled:       c.config.AuthEnabled,
			PollInterval:      c.config.PollInterval,
			ScanCoolOff:       c.config.ScanCoolOff,
			ReconnectInterval: c.config.ReconnectInterval,
			FeedbackBlocking:  c.config.FeedbackBlocking,
		},
		cardReader,
		connectivity,
		submitter,
		c.FeedbackController(),
		store,
		acquirer,
		nil,
		c.Logger(),
	)

	return loop, nil
}

// initStatusServer creates the status server and registers the reader gauges.
func (c *Container) initStatusServer() (*http.StatusServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for status server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	loop, err := c.ReaderLoop()
	if err != nil {
		return nil, fmt.Errorf("failed to get reader loop for status server: %w", err)
	}

	if err := metrics.RegisterReaderGauges(provider.MeterProvider(), c.config.MetricsNamespace, loop); err != nil {
		return nil, fmt.Errorf("failed to register reader gauges: %w", err)
	}

	server := http.NewStatusServer(
		http.StatusServerConfig{
			Host:             c.config.MetricsHost,
			Port:             c.config.MetricsPort,
			MetricsNamespace: c.config.MetricsNamespace,
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
		},
		loop,
		provider,
		c.Logger(),
	)

	return server, nil
}
