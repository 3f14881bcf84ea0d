package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
	scanMocks "github.com/allisson/badgereader/internal/scan/usecase/mocks"
)

// manualClock is a clock tests can advance.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type readerLoopMocks struct {
	reader       *scanMocks.MockCardReader
	connectivity *scanMocks.MockConnectivity
	submitter    *scanMocks.MockScanSubmitter
	feedback     *scanMocks.MockFeedbackController
	acquirer     *scanMocks.MockTokenAcquirer
}

func newReaderLoopMocks() *readerLoopMocks {
	return &readerLoopMocks{
		reader:       &scanMocks.MockCardReader{},
		connectivity: &scanMocks.MockConnectivity{},
		submitter:    &scanMocks.MockScanSubmitter{},
		feedback:     &scanMocks.MockFeedbackController{},
		acquirer:     &scanMocks.MockTokenAcquirer{},
	}
}

func (m *readerLoopMocks) assertExpectations(t *testing.T) {
	m.reader.AssertExpectations(t)
	m.connectivity.AssertExpectations(t)
	m.submitter.AssertExpectations(t)
	m.feedback.AssertExpectations(t)
	m.acquirer.AssertExpectations(t)
}

func newTestReaderLoop(m *readerLoopMocks, config ReaderLoopConfig, clock service.Clock) *ReaderLoop {
	if config.ReaderID == "" {
		config.ReaderID = "entrance"
	}
	return NewReaderLoop(
		config,
		m.reader,
		m.connectivity,
		m.submitter,
		m.feedback,
		service.NewTokenStore(),
		m.acquirer,
		clock,
		newTestLogger(),
	)
}

func hasTag(tagID string) any {
	return mock.MatchedBy(func(event *scanDomain.ScanEvent) bool {
		return event.TagID == tagID
	})
}

func TestReaderLoop_Poll(t *testing.T) {
	ctx := context.Background()
	tagID := "04A1B2C3"
	config := ReaderLoopConfig{
		AuthEnabled:       true,
		ScanCoolOff:       2 * time.Second,
		ReconnectInterval: time.Hour,
		FeedbackBlocking:  true,
	}

	t.Run("Success_NoCardPresent", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return("", false, nil).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Poll(ctx))
		m.assertExpectations(t)
		m.submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Success_DispatchesCardAndWaitsForFeedback", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return(tagID, true, nil).Once()
		m.feedback.On("Busy").Return(false).Once()
		m.submitter.On("Submit", ctx, hasTag("04A1B2C3")).Return(scanDomain.Success()).Once()
		m.feedback.On("Show", ctx, scanDomain.Success()).Return().Once()
		m.feedback.On("Wait", ctx).Return(nil).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Poll(ctx))
		m.assertExpectations(t)
	})

	t.Run("Success_NonBlockingDoesNotWait", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return(tagID, true, nil).Once()
		m.feedback.On("Busy").Return(false).Once()
		m.submitter.On("Submit", ctx, hasTag("04A1B2C3")).Return(scanDomain.Cooldown()).Once()
		m.feedback.On("Show", ctx, scanDomain.Cooldown()).Return().Once()

		nonBlocking := config
		nonBlocking.FeedbackBlocking = false
		loop := newTestReaderLoop(m, nonBlocking, testClock)

		assert.NoError(t, loop.Poll(ctx))
		m.assertExpectations(t)
		m.feedback.AssertNotCalled(t, "Wait", mock.Anything)
	})

	t.Run("Success_IgnoresCardWhileFeedbackBusy", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return(tagID, true, nil).Once()
		m.feedback.On("Busy").Return(true).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Poll(ctx))
		m.assertExpectations(t)
		m.submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Success_DebouncesDuringCoolOff", func(t *testing.T) {
		clock := &manualClock{now: testNow}
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Times(3)
		m.reader.On("Read", ctx).Return(tagID, true, nil).Times(3)
		m.feedback.On("Busy").Return(false).Times(3)
		m.submitter.On("Submit", ctx, hasTag("04A1B2C3")).Return(scanDomain.Success()).Twice()
		m.feedback.On("Show", ctx, scanDomain.Success()).Return().Twice()
		m.feedback.On("Wait", ctx).Return(nil).Twice()

		loop := newTestReaderLoop(m, config, clock.Now)

		require.NoError(t, loop.Poll(ctx))
		clock.Advance(time.Second)
		require.NoError(t, loop.Poll(ctx))
		clock.Advance(time.Second)
		require.NoError(t, loop.Poll(ctx))

		m.assertExpectations(t)
		m.submitter.AssertNumberOfCalls(t, "Submit", 2)
	})

	t.Run("Error_ReadFailure", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return("", false, errBoom).Once()

		loop := newTestReaderLoop(m, config, testClock)
		err := loop.Poll(ctx)

		assert.ErrorIs(t, err, scanDomain.ErrReaderUnavailable)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
		m.assertExpectations(t)
	})

	t.Run("Error_EmptyIdentifierIsRejected", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(true).Once()
		m.reader.On("Read", ctx).Return("", true, nil).Once()
		m.feedback.On("Busy").Return(false).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.ErrorIs(t, loop.Poll(ctx), scanDomain.ErrInvalidTagID)
		m.assertExpectations(t)
	})

	t.Run("Success_ReconnectsAndRefreshesToken", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(false).Once()
		m.connectivity.On("Reconnect", ctx).Return(nil).Once()
		m.acquirer.On("Refresh", ctx).Return(validToken("tok"), nil).Once()
		m.reader.On("Read", ctx).Return("", false, nil).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Poll(ctx))
		m.assertExpectations(t)
	})

	t.Run("Error_ReconnectAttemptsAreRateLimited", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("IsConnected", ctx).Return(false).Times(3)
		m.connectivity.On("Reconnect", ctx).Return(errBoom).Once()

		loop := newTestReaderLoop(m, config, testClock)

		for i := 0; i < 3; i++ {
			assert.NoError(t, loop.Poll(ctx))
		}

		m.assertExpectations(t)
		m.connectivity.AssertNumberOfCalls(t, "Reconnect", 1)
		m.reader.AssertNotCalled(t, "Read", mock.Anything)
	})
}

func TestReaderLoop_Boot(t *testing.T) {
	ctx := context.Background()
	config := ReaderLoopConfig{AuthEnabled: true}

	t.Run("Success_ConnectsAndAcquiresToken", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("Connect", ctx).Return(nil).Once()
		m.acquirer.On("Refresh", ctx).Return(validToken("tok"), nil).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Boot(ctx))
		m.assertExpectations(t)
	})

	t.Run("Success_TokenFailureIsNotFatal", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("Connect", ctx).Return(nil).Once()
		m.acquirer.On("Refresh", ctx).Return(scanDomain.Token{}, scanDomain.ErrAuthFailed).Once()

		loop := newTestReaderLoop(m, config, testClock)

		assert.NoError(t, loop.Boot(ctx))
		m.assertExpectations(t)
	})

	t.Run("Success_AuthDisabledSkipsToken", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("Connect", ctx).Return(nil).Once()

		loop := newTestReaderLoop(m, ReaderLoopConfig{}, testClock)

		assert.NoError(t, loop.Boot(ctx))
		m.acquirer.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("Error_ConnectFailureRaisesAlarm", func(t *testing.T) {
		m := newReaderLoopMocks()
		m.connectivity.On("Connect", ctx).Return(errBoom).Once()
		m.feedback.On("Alarm", ctx).Return().Once()
		m.feedback.On("State").Return(scanDomain.IdleState())

		loop := newTestReaderLoop(m, config, testClock)
		err := loop.Boot(ctx)

		assert.ErrorIs(t, err, scanDomain.ErrNotConnected)
		assert.False(t, loop.Status().Connected)
		m.acquirer.AssertNotCalled(t, "Refresh", mock.Anything)
	})
}

func TestReaderLoop_Start(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := newReaderLoopMocks()
	m.connectivity.On("IsConnected", mock.Anything).Return(true)
	m.reader.On("Read", mock.Anything).Return("", false, nil)

	loop := newTestReaderLoop(m, ReaderLoopConfig{PollInterval: 5 * time.Millisecond}, testClock)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := loop.Start(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	m.reader.AssertCalled(t, "Read", mock.Anything)
}

func TestReaderLoop_Status(t *testing.T) {
	ctx := context.Background()
	m := newReaderLoopMocks()
	m.connectivity.On("Connect", ctx).Return(nil).Once()
	m.acquirer.On("Refresh", ctx).Return(validToken("tok"), nil).Once()
	m.submitter.On("Submit", ctx, hasTag("DEADBEEF")).Return(scanDomain.ServerError(503)).Once()
	m.feedback.On("Show", ctx, scanDomain.ServerError(503)).Return().Once()
	m.feedback.On("State").Return(scanDomain.ShowingState(scanDomain.ColorRed, testNow))

	store := service.NewTokenStore()
	loop := NewReaderLoop(
		ReaderLoopConfig{ReaderID: "exit", AuthEnabled: true},
		m.reader,
		m.connectivity,
		m.submitter,
		m.feedback,
		store,
		m.acquirer,
		testClock,
		newTestLogger(),
	)
	require.NoError(t, loop.Boot(ctx))
	store.Set(validToken("tok"))

	event, err := scanDomain.NewScanEventFromText("DEADBEEF", testNow)
	require.NoError(t, err)
	outcome := loop.Dispatch(ctx, event)

	status := loop.Status()

	assert.Equal(t, scanDomain.ServerError(503), outcome)
	assert.Equal(t, "exit", status.ReaderID)
	assert.True(t, status.Connected)
	assert.True(t, status.AuthEnabled)
	assert.True(t, status.TokenValid)
	assert.Equal(t, testNow.Add(10*time.Minute), status.TokenExpiresAt)
	assert.Equal(t, scanDomain.ColorRed, status.Indicator.Color)
	require.NotNil(t, status.LastOutcome)
	assert.Equal(t, scanDomain.ServerError(503), *status.LastOutcome)
	assert.Equal(t, testNow, status.LastScanAt)
	assert.Equal(t, 1, status.ScansTotal)
	m.assertExpectations(t)
}
