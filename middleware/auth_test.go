package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/repository"

	"github.com/gofiber/fiber/v3"
)

func testAuthConfig() *AuthConfig {
	return &AuthConfig{
		Enabled:  true,
		Secret:   "test-secret",
		Issuer:   "fintrack",
		TokenTTL: time.Hour,
	}
}

func newAuthApp(t *testing.T, cfg *AuthConfig) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(NewAuthMiddleware(cfg, logger.NewNop()))
	app.Get("/whoami", func(c fiber.Ctx) error {
		oc, ok := repository.OwnerFromContext(c.Context())
		if !ok {
			return c.Status(fiber.StatusInternalServerError).SendString("no owner")
		}
		return c.SendString(oc.Owner)
	})
	return app
}

func TestAuthMiddlewareBindsOwner(t *testing.T) {
	cfg := testAuthConfig()
	app := newAuthApp(t, cfg)

	token, err := GenerateToken(cfg, "JaneDoe", "user-1", []string{"user"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	// Owner is normalized to lowercase on the way in.
	if string(body) != "janedoe" {
		t.Fatalf("expected owner janedoe, got %q", body)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app := newAuthApp(t, testAuthConfig())

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	cfg := testAuthConfig()
	app := newAuthApp(t, cfg)

	other := *cfg
	other.Secret = "other-secret"
	token, err := GenerateToken(&other, "janedoe", "user-1", nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareDisabledPassesThrough(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Enabled = false

	app := fiber.New()
	app.Use(NewAuthMiddleware(cfg, logger.NewNop()))
	app.Get("/open", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/open", nil)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestParseTokenRequiresOwner(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(cfg, "", "user-1", nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseToken(cfg, token); err == nil {
		t.Fatalf("expected error for empty owner")
	}
}
