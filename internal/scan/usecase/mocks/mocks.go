// Package mocks provides mock implementations of the scan pipeline and service
// collaborators for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// MockScanSubmitter is a mock implementation of ScanSubmitter.
type MockScanSubmitter struct {
	mock.Mock
}

// Submit mocks the Submit method of ScanSubmitter.
func (m *MockScanSubmitter) Submit(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome {
	args := m.Called(ctx, event)
	return args.Get(0).(scanDomain.Outcome)
}

// MockFeedbackController is a mock implementation of FeedbackController.
type MockFeedbackController struct {
	mock.Mock
}

// Show mocks the Show method of FeedbackController.
func (m *MockFeedbackController) Show(ctx context.Context, outcome scanDomain.Outcome) {
	m.Called(ctx, outcome)
}

// Wait mocks the Wait method of FeedbackController.
func (m *MockFeedbackController) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Busy mocks the Busy method of FeedbackController.
func (m *MockFeedbackController) Busy() bool {
	args := m.Called()
	return args.Bool(0)
}

// State mocks the State method of FeedbackController.
func (m *MockFeedbackController) State() scanDomain.IndicatorState {
	args := m.Called()
	return args.Get(0).(scanDomain.IndicatorState)
}

// Alarm mocks the Alarm method of FeedbackController.
func (m *MockFeedbackController) Alarm(ctx context.Context) {
	m.Called(ctx)
}

// Stop mocks the Stop method of FeedbackController.
func (m *MockFeedbackController) Stop(ctx context.Context) {
	m.Called(ctx)
}

// MockCardReader is a mock implementation of CardReader.
type MockCardReader struct {
	mock.Mock
}

// Read mocks the Read method of CardReader.
func (m *MockCardReader) Read(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

// MockConnectivity is a mock implementation of Connectivity.
type MockConnectivity struct {
	mock.Mock
}

// IsConnected mocks the IsConnected method of Connectivity.
func (m *MockConnectivity) IsConnected(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Connect mocks the Connect method of Connectivity.
func (m *MockConnectivity) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Reconnect mocks the Reconnect method of Connectivity.
func (m *MockConnectivity) Reconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIndicator is a mock implementation of Indicator.
type MockIndicator struct {
	mock.Mock
}

// SetColor mocks the SetColor method of Indicator.
func (m *MockIndicator) SetColor(ctx context.Context, color scanDomain.Color) error {
	args := m.Called(ctx, color)
	return args.Error(0)
}

// MockTokenAcquirer is a mock implementation of TokenAcquirer.
type MockTokenAcquirer struct {
	mock.Mock
}

// Refresh mocks the Refresh method of TokenAcquirer.
func (m *MockTokenAcquirer) Refresh(ctx context.Context) (scanDomain.Token, error) {
	args := m.Called(ctx)
	return args.Get(0).(scanDomain.Token), args.Error(1)
}

// MockCredentialService is a mock implementation of CredentialService.
type MockCredentialService struct {
	mock.Mock
}

// ResolvePassword mocks the ResolvePassword method of CredentialService.
func (m *MockCredentialService) ResolvePassword(ctx context.Context, plain, ciphertext, keyURI string) (string, error) {
	args := m.Called(ctx, plain, ciphertext, keyURI)
	return args.String(0), args.Error(1)
}

// EncryptPassword mocks the EncryptPassword method of CredentialService.
func (m *MockCredentialService) EncryptPassword(ctx context.Context, password, keyURI string) (string, error) {
	args := m.Called(ctx, password, keyURI)
	return args.String(0), args.Error(1)
}
