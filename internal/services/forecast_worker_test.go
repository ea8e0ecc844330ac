package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/probacast/internal/jobs"
	"github.com/soltixdb/probacast/internal/logging"
)

const (
	testRequests = "test.forecast.requests"
	testResults  = "test.forecast.results"
)

func startTestWorker(t *testing.T) (*ForecastWorker, *jobs.MemoryBroker, <-chan ForecastJobResult) {
	t.Helper()
	broker := jobs.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })

	results := make(chan ForecastJobResult, 4)
	require.NoError(t, broker.Subscribe(testResults, func(_ context.Context, data []byte) error {
		var r ForecastJobResult
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		results <- r
		return nil
	}))

	worker := NewForecastWorker(logging.NewNop(), broker, newTestForecastService(), testRequests, testResults)
	require.NoError(t, worker.Start())
	return worker, broker, results
}

func waitResult(t *testing.T, results <-chan ForecastJobResult) ForecastJobResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job result")
		return ForecastJobResult{}
	}
}

func TestForecastWorker_RoundTrip(t *testing.T) {
	worker, _, results := startTestWorker(t)

	req := newTestRequest(48)
	req.Method = "exponential"
	req.Horizon = 4
	req.Samples = 2

	id, err := worker.Submit(context.Background(), *req)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got := waitResult(t, results)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, JobStatusCompleted, got.Status)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.Result)
	assert.Len(t, got.Result.Predictions, 4)
	assert.Len(t, got.Result.Samples, 2)
	assert.Equal(t, "exponential", got.Result.Method)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestForecastWorker_ReportsFailures(t *testing.T) {
	worker, _, results := startTestWorker(t)

	req := newTestRequest(48)
	req.Method = "unknown"
	id, err := worker.Submit(context.Background(), *req)
	require.NoError(t, err)

	got := waitResult(t, results)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, CodeInvalidMethod, got.Error.Code)
	assert.Nil(t, got.Result)
}

func TestForecastWorker_UnboundedLevelsFailOnce(t *testing.T) {
	worker, _, results := startTestWorker(t)

	req := newTestRequest(48)
	req.Quantiles = []float64{0, 1}
	req.Coverages = []float64{1}
	id, err := worker.Submit(context.Background(), *req)
	require.NoError(t, err)

	got := waitResult(t, results)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, CodeInvalidProbability, got.Error.Code)

	select {
	case extra := <-results:
		t.Fatalf("unexpected second result for job %s", extra.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestForecastWorker_DropsMalformedJobs(t *testing.T) {
	_, broker, results := startTestWorker(t)

	require.NoError(t, broker.Publish(context.Background(), testRequests, []byte("not json")))

	// a valid job published afterwards is still processed
	payload, err := json.Marshal(ForecastJob{Request: *newTestRequest(24)})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(context.Background(), testRequests, payload))

	got := waitResult(t, results)
	assert.NotEmpty(t, got.ID, "missing IDs are assigned")
	assert.Equal(t, JobStatusCompleted, got.Status)
}

func TestForecastWorker_StartTwice(t *testing.T) {
	worker, _, _ := startTestWorker(t)

	err := worker.Start()
	assert.ErrorIs(t, err, jobs.ErrAlreadySubscribed)

	require.NoError(t, worker.Stop())
	assert.ErrorIs(t, worker.Stop(), jobs.ErrNotSubscribed)
}
