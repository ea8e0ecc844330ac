package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/models"
)

func newErrorApp(handler fiber.Handler) *fiber.App {
	logger := logging.NewNop()
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger),
	})
	app.Use(logging.FiberMiddleware(logger, logging.MiddlewareConfig{}))
	app.Get("/test", handler)
	return app
}

func decodeError(t *testing.T, body io.Reader) models.ErrorResponse {
	t.Helper()
	var errResp models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return errResp
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name           string
		fiberError     *fiber.Error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{"BadRequest", fiber.ErrBadRequest, fiber.StatusBadRequest, "BAD_REQUEST", "Bad Request"},
		{"Unauthorized", fiber.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"},
		{"NotFound", fiber.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Not Found"},
		{"TooLarge", fiber.ErrRequestEntityTooLarge, fiber.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request Entity Too Large"},
		{"ServiceUnavailable", fiber.ErrServiceUnavailable, fiber.StatusServiceUnavailable, "INTERNAL_ERROR", "Service Unavailable"},
		{"Custom", fiber.NewError(fiber.StatusTeapot, "I'm a teapot"), fiber.StatusTeapot, "ERROR", "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newErrorApp(func(c *fiber.Ctx) error { return tt.fiberError })

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
			errResp := decodeError(t, resp.Body)
			if errResp.Error.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, errResp.Error.Message)
			}
			if errResp.Error.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Error.Code)
			}
			if errResp.Error.Path != "/test" {
				t.Errorf("Expected path '/test', got %q", errResp.Error.Path)
			}
		})
	}
}

func TestErrorHandler_GenericErrorIsHidden(t *testing.T) {
	app := newErrorApp(func(c *fiber.Ctx) error {
		return errors.New("database password is hunter2")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(logging.RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, resp.StatusCode)
	}
	errResp := decodeError(t, resp.Body)
	if errResp.Error.Message != "Internal Server Error" {
		t.Errorf("Expected message 'Internal Server Error', got %q", errResp.Error.Message)
	}
	if errResp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("Expected code 'INTERNAL_ERROR', got %q", errResp.Error.Code)
	}
	if errResp.Error.RequestID != "req-42" {
		t.Errorf("Expected request ID 'req-42', got %q", errResp.Error.RequestID)
	}
}

func TestErrorHandler_WrappedFiberError(t *testing.T) {
	app := newErrorApp(func(c *fiber.Ctx) error {
		return errors.Join(errors.New("parse body"), fiber.ErrBadRequest)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}
}
