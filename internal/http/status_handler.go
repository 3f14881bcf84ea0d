package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// tokenResponse reports token validity. The token value is never exposed.
type tokenResponse struct {
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type indicatorResponse struct {
	Color string     `json:"color"`
	Since *time.Time `json:"since,omitempty"`
}

type outcomeResponse struct {
	Kind       string `json:"kind"`
	StatusCode int    `json:"status_code,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// statusResponse is the body of GET /status.
type statusResponse struct {
	ReaderID    string            `json:"reader_id"`
	Connected   bool              `json:"connected"`
	AuthEnabled bool              `json:"auth_enabled"`
	Token       *tokenResponse    `json:"token,omitempty"`
	Indicator   indicatorResponse `json:"indicator"`
	LastOutcome *outcomeResponse  `json:"last_outcome,omitempty"`
	LastScanAt  *time.Time        `json:"last_scan_at,omitempty"`
	ScansTotal  int               `json:"scans_total"`
}

func mapStatusToResponse(status scanDomain.ReaderStatus) statusResponse {
	response := statusResponse{
		ReaderID:    status.ReaderID,
		Connected:   status.Connected,
		AuthEnabled: status.AuthEnabled,
		Indicator:   indicatorResponse{Color: string(scanDomain.ColorNone)},
		ScansTotal:  status.ScansTotal,
	}
	if status.AuthEnabled {
		response.Token = &tokenResponse{Valid: status.TokenValid}
		if !status.TokenExpiresAt.IsZero() {
			expiresAt := status.TokenExpiresAt
			response.Token.ExpiresAt = &expiresAt
		}
	}
	if !status.Indicator.IsIdle() {
		since := status.Indicator.Since
		response.Indicator = indicatorResponse{Color: string(status.Indicator.Color), Since: &since}
	}
	if status.LastOutcome != nil {
		response.LastOutcome = &outcomeResponse{
			Kind:       string(status.LastOutcome.Kind),
			StatusCode: status.LastOutcome.StatusCode,
			Detail:     status.LastOutcome.Detail,
		}
	}
	if !status.LastScanAt.IsZero() {
		lastScanAt := status.LastScanAt
		response.LastScanAt = &lastScanAt
	}
	return response
}

// healthHandler reports that the process is serving.
func (s *StatusServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the network link is up.
func (s *StatusServer) readinessHandler(c *gin.Context) {
	status := s.source.Status()

	components := gin.H{"network": "ok"}
	if !status.Connected {
		components["network"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// statusHandler returns the reader status snapshot.
func (s *StatusServer) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, mapStatusToResponse(s.source.Status()))
}
