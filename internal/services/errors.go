// Package services holds the business logic between the HTTP and job
// transports and the forecasting packages.
package services

import (
	"errors"

	"github.com/soltixdb/probacast/internal/proba"
)

// Error codes returned in ServiceError.Code.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidSeries       = "INVALID_SERIES"
	CodeInvalidMethod       = "INVALID_METHOD"
	CodeInvalidHorizon      = "INVALID_HORIZON"
	CodeInvalidSamples      = "INVALID_SAMPLES"
	CodeInvalidProbability  = "INVALID_PROBABILITY"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeForecastFailed      = "FORECAST_FAILED"
	CodeShapeMismatch       = "SHAPE_MISMATCH"
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodePositionOutOfRange  = "POSITION_OUT_OF_RANGE"
	CodeInvalidDistribution = "INVALID_DISTRIBUTION"
	CodeJobsDisabled        = "JOBS_DISABLED"
	CodePublishFailed       = "PUBLISH_FAILED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// distributionError classifies a table construction or evaluation failure.
func distributionError(err error) *ServiceError {
	code := CodeInvalidDistribution
	switch {
	case errors.Is(err, proba.ErrShape), errors.Is(err, proba.ErrLabelMismatch):
		code = CodeShapeMismatch
	case errors.Is(err, proba.ErrInvalidParameter), errors.Is(err, proba.ErrUnknownParameter):
		code = CodeInvalidParameter
	case errors.Is(err, proba.ErrPositionOutOfRange):
		code = CodePositionOutOfRange
	case errors.Is(err, proba.ErrInvalidProbability):
		code = CodeInvalidProbability
	}
	return NewServiceError(code, err.Error())
}

// AsServiceError returns err as a *ServiceError, wrapping foreign errors
// under fallback.
func AsServiceError(err error, fallback string) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return NewServiceError(fallback, err.Error())
}
