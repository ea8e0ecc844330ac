package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soltixdb/probacast/internal/jobs"
	"github.com/soltixdb/probacast/internal/logging"
)

// Job statuses reported in ForecastJobResult.
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ForecastJob is the message published on the request subject.
type ForecastJob struct {
	ID          string          `json:"id"`
	Request     ForecastRequest `json:"request"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// ForecastJobResult is the message published on the result subject.
type ForecastJobResult struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Result      *ForecastResponse `json:"result,omitempty"`
	Error       *ServiceError     `json:"error,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// ForecastWorker consumes forecast jobs from a broker and publishes their
// results.
type ForecastWorker struct {
	logger   *logging.Logger
	broker   jobs.Broker
	service  *ForecastService
	requests string
	results  string
}

// NewForecastWorker creates a worker bound to the request and result subjects.
func NewForecastWorker(logger *logging.Logger, broker jobs.Broker, service *ForecastService, requests, results string) *ForecastWorker {
	return &ForecastWorker{
		logger:   logger,
		broker:   broker,
		service:  service,
		requests: requests,
		results:  results,
	}
}

// Start subscribes to the request subject.
func (w *ForecastWorker) Start() error {
	if err := w.broker.Subscribe(w.requests, w.handle); err != nil {
		return fmt.Errorf("subscribe to %s: %w", w.requests, err)
	}
	w.logger.Info("Forecast worker started", "requests", w.requests, "results", w.results)
	return nil
}

// Stop unsubscribes from the request subject.
func (w *ForecastWorker) Stop() error {
	return w.broker.Unsubscribe(w.requests)
}

// Submit publishes a forecast job and returns its ID.
func (w *ForecastWorker) Submit(ctx context.Context, req ForecastRequest) (string, error) {
	job := ForecastJob{
		ID:          uuid.NewString(),
		Request:     req,
		SubmittedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := w.broker.Publish(ctx, w.requests, payload); err != nil {
		return "", NewServiceError(CodePublishFailed, err.Error())
	}
	logging.FromContext(logging.WithJobID(ctx, job.ID)).Debug("Forecast job submitted", "subject", w.requests)
	return job.ID, nil
}

// handle runs one job. Undecodable messages are dropped; forecast failures
// are reported on the result subject.
func (w *ForecastWorker) handle(ctx context.Context, data []byte) error {
	var job ForecastJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.logger.Warn("Dropping malformed forecast job", "error", err, "bytes", len(data))
		return nil
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	ctx = logging.WithJobID(ctx, job.ID)

	result := ForecastJobResult{ID: job.ID, Status: JobStatusCompleted}
	resp, err := w.service.Execute(ctx, &job.Request)
	if err != nil {
		result.Status = JobStatusFailed
		result.Error = AsServiceError(err, CodeForecastFailed)
		w.logger.WithContext(ctx).Warn("Forecast job failed", "code", result.Error.Code, "error", err)
	} else {
		result.Result = resp
	}
	result.CompletedAt = time.Now().UTC()

	payload, err := json.Marshal(result)
	if err != nil {
		// redelivery would fail the same way
		w.logger.WithContext(ctx).Warn("Forecast job result not encodable", "error", err)
		result = ForecastJobResult{
			ID:          job.ID,
			Status:      JobStatusFailed,
			Error:       NewServiceError(CodeForecastFailed, fmt.Sprintf("encode result: %v", err)),
			CompletedAt: result.CompletedAt,
		}
		if payload, err = json.Marshal(result); err != nil {
			return fmt.Errorf("marshal job result: %w", err)
		}
	}
	return w.broker.Publish(ctx, w.results, payload)
}
