package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/models"
)

// generateAPIKey generates a valid API key of specified length
func generateAPIKey(length int) string {
	key := make([]byte, length)
	for i := range key {
		key[i] = 'a' + byte(i%26)
	}
	return string(key)
}

func newAuthApp(keys []string, enabled bool) *fiber.App {
	app := fiber.New()
	app.Use(logging.FiberMiddleware(logging.NewNop(), logging.MiddlewareConfig{}))
	app.Use(APIKeyAuth(logging.NewNop(), config.AuthConfig{Enabled: enabled, APIKeys: keys}))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{name: "exactly 32 chars", key: generateAPIKey(32), expected: true},
		{name: "longer than 32 chars", key: generateAPIKey(64), expected: true},
		{name: "too short (1 char)", key: "a", expected: false},
		{name: "too short (31 chars)", key: generateAPIKey(31), expected: false},
		{name: "empty string", key: "", expected: false},
		{name: "32 spaces", key: "                                ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.expected {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{key: "abcdefghijklmnop", expected: "abcd****"},
		{key: "abcde", expected: "abcd****"},
		{key: "abcd", expected: "****"},
		{key: "", expected: "****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := newAuthApp(nil, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	validKey := generateAPIKey(32)
	app := newAuthApp([]string{validKey}, true)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{name: "X-API-Key header", headerName: "X-API-Key", headerVal: validKey},
		{name: "Authorization Bearer header", headerName: "Authorization", headerVal: "Bearer " + validKey},
		{name: "Authorization plain header", headerName: "Authorization", headerVal: validKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(tt.headerName, tt.headerVal)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status 200, got %d, body: %s", resp.StatusCode, string(body))
			}
		})
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	app := newAuthApp([]string{generateAPIKey(32)}, true)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
		message    string
	}{
		{name: "missing API key", message: "API key is required. Provide it via X-API-Key header or Authorization header."},
		{name: "wrong API key", headerName: "X-API-Key", headerVal: generateAPIKey(32) + "wrong", message: "Invalid API key."},
		{name: "short API key in request", headerName: "X-API-Key", headerVal: "short", message: "Invalid API key."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.headerVal)
			}
			req.Header.Set(logging.RequestIDHeader, "req-1")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", resp.StatusCode)
			}

			var errResp models.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if errResp.Error.Code != "UNAUTHORIZED" {
				t.Errorf("Expected code 'UNAUTHORIZED', got %q", errResp.Error.Code)
			}
			if errResp.Error.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, errResp.Error.Message)
			}
			if errResp.Error.RequestID != "req-1" {
				t.Errorf("Expected request ID 'req-1', got %q", errResp.Error.RequestID)
			}
		})
	}
}

func TestAPIKeyAuth_WeakKeysRejected(t *testing.T) {
	weakKeys := []string{"a", "short", generateAPIKey(31)}
	app := newAuthApp(weakKeys, true)

	// weak keys never enter the key map
	for _, weakKey := range weakKeys {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-API-Key", weakKey)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to test request: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("Weak key %q should be rejected, got status %d", weakKey, resp.StatusCode)
		}
	}
}
