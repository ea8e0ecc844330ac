// Package models holds the HTTP request and response bodies.
package models

import "github.com/soltixdb/probacast/internal/services"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Jobs      string `json:"jobs,omitempty"` // broker backend when the worker is enabled
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Path      string                 `json:"path,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ForecastersResponse lists the registered forecasting methods.
type ForecastersResponse struct {
	Methods       []string `json:"methods"`
	DefaultMethod string   `json:"default_method"`
	MaxHorizon    int      `json:"max_horizon"`
	MaxSamples    int      `json:"max_samples"`
}

// FamiliesResponse lists the distribution families that can be evaluated.
type FamiliesResponse struct {
	Families []string `json:"families"`
}

// JobAcceptedResponse is returned when a forecast job is queued.
type JobAcceptedResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Subject string `json:"subject"`
}

// ForecastResponse aliases the service response so handlers and clients
// share one wire shape.
type ForecastResponse = services.ForecastResponse

// EvaluateResponse aliases the distribution evaluation body.
type EvaluateResponse = services.EvaluateResponse
