package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
	scanMocks "github.com/allisson/badgereader/internal/scan/usecase/mocks"
)

// remoteService fakes the token and scan endpoints of the remote service.
type remoteService struct {
	server     *httptest.Server
	scanStatus int
	tokenCalls int32
	scanCalls  int32
}

func newRemoteService(t *testing.T, scanStatus int) *remoteService {
	t.Helper()
	r := &remoteService{scanStatus: scanStatus}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&r.tokenCalls, 1)
		assert.NoError(t, req.ParseForm())
		if req.PostForm.Get("username") != "reader" || req.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-issued","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/scan", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&r.scanCalls, 1)
		w.WriteHeader(r.scanStatus)
	})
	r.server = httptest.NewServer(mux)
	t.Cleanup(r.server.Close)
	return r
}

type scenario struct {
	store     *service.TokenStore
	submitter ScanSubmitter
	feedback  FeedbackController
	indicator *recordingIndicator
}

func newScenario(t *testing.T, remote *remoteService, connectivity Connectivity) *scenario {
	t.Helper()
	httpClient := &http.Client{Timeout: time.Second}
	store := service.NewTokenStore()
	acquirer := service.NewTokenAcquirer(
		service.TokenAcquirerConfig{
			TokenURL: remote.server.URL + "/api/token",
			Username: "reader",
			Password: "secret",
		},
		httpClient,
		store,
		testClock,
		newTestLogger(),
	)
	indicator := &recordingIndicator{}
	return &scenario{
		store: store,
		submitter: NewScanSubmitter(
			SubmitterConfig{ScanURL: remote.server.URL + "/api/scan", AuthEnabled: true},
			httpClient,
			store,
			acquirer,
			connectivity,
			testClock,
			newTestLogger(),
		),
		feedback:  newTestFeedback(indicator, 30*time.Millisecond),
		indicator: indicator,
	}
}

func (s *scenario) run(t *testing.T) scanDomain.Outcome {
	t.Helper()
	ctx := context.Background()
	outcome := s.submitter.Submit(ctx, newTestEvent(t))
	s.feedback.Show(ctx, outcome)
	require.NoError(t, s.feedback.Wait(ctx))
	return outcome
}

func TestScenario_TokenAbsentScanAccepted(t *testing.T) {
	remote := newRemoteService(t, http.StatusOK)
	s := newScenario(t, remote, nil)

	outcome := s.run(t)

	assert.Equal(t, scanDomain.Success(), outcome)
	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.tokenCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.scanCalls))
	assert.True(t, s.store.IsValid(testNow))
	assert.Equal(t, []scanDomain.Color{scanDomain.ColorGreen, scanDomain.ColorNone}, s.indicator.Colors())
}

func TestScenario_ValidTokenCooldown(t *testing.T) {
	remote := newRemoteService(t, http.StatusTooManyRequests)
	s := newScenario(t, remote, nil)
	token := validToken("tok-valid")
	s.store.Set(token)

	outcome := s.run(t)

	assert.Equal(t, scanDomain.Cooldown(), outcome)
	assert.Equal(t, int32(0), atomic.LoadInt32(&remote.tokenCalls))
	assert.Equal(t, token, s.store.Get())
	assert.Equal(t, []scanDomain.Color{scanDomain.ColorYellow, scanDomain.ColorNone}, s.indicator.Colors())
}

func TestScenario_RejectedTokenRefreshedOnce(t *testing.T) {
	remote := newRemoteService(t, http.StatusUnauthorized)
	s := newScenario(t, remote, nil)
	s.store.Set(validToken("tok-revoked"))

	outcome := s.run(t)

	assert.Equal(t, scanDomain.Unauthorized(), outcome)
	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.tokenCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.scanCalls))
	assert.Equal(t, "tok-issued", s.store.Get().Value)
	assert.Equal(t, []scanDomain.Color{scanDomain.ColorRed, scanDomain.ColorNone}, s.indicator.Colors())
}

func TestScenario_DisconnectedShortCircuits(t *testing.T) {
	remote := newRemoteService(t, http.StatusOK)
	mockConnectivity := &scanMocks.MockConnectivity{}
	mockConnectivity.On("IsConnected", context.Background()).Return(false).Once()
	s := newScenario(t, remote, mockConnectivity)

	outcome := s.run(t)

	assert.Equal(t, scanDomain.TransportError("not connected"), outcome)
	assert.Equal(t, int32(0), atomic.LoadInt32(&remote.tokenCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&remote.scanCalls))
	assert.Equal(t, []scanDomain.Color{scanDomain.ColorRed, scanDomain.ColorNone}, s.indicator.Colors())
	mockConnectivity.AssertExpectations(t)
}
