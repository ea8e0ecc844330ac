package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	logger.With("component", "forecast").Info("done", "horizon", 24, "error", errors.New("boom"), "dangling")
	logger.Debug("debugging")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "done", lines[0]["message"])
	assert.Equal(t, "forecast", lines[0]["component"])
	assert.Equal(t, float64(24), lines[0]["horizon"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.NotContains(t, lines[0], "dangling")
	assert.Equal(t, "debug", lines[1]["level"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	ctx := WithJobID(WithRequestID(WithLogger(context.Background(), logger), "req-1"), "job-9")
	FromContext(ctx).Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "job-9", lines[0]["job_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFiberMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	app := fiber.New()
	app.Use(FiberMiddleware(logger, DefaultMiddlewareConfig()))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/v1/thing", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c.UserContext()))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/thing", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	id := resp.Header.Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, string(body))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Header.Get(RequestIDHeader))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1, "health checks are not logged")
	assert.Equal(t, "/v1/thing", lines[0]["path"])
	assert.Equal(t, float64(200), lines[0]["status"])
}
