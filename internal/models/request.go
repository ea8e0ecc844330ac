package models

import "github.com/soltixdb/probacast/internal/services"

// ForecastRequest is the body of POST /v1/forecast.
type ForecastRequest = services.ForecastRequest

// EvaluateRequest is the body of POST /v1/distributions/:family/evaluate.
type EvaluateRequest = services.EvaluateRequest
