package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
)

func TestRateLimitMiddlewareEnforcesLimit(t *testing.T) {
	handler, err := NewRateLimitMiddleware(&RateLimitConfig{
		Enabled: true,
		Limit:   2,
		Period:  time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("build middleware: %v", err)
	}

	app := fiber.New()
	app.Use(handler)
	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), fiber.TestConfig{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("limited request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	handler, err := NewRateLimitMiddleware(&RateLimitConfig{
		Enabled: false,
		Limit:   1,
		Period:  time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("build middleware: %v", err)
	}

	app := fiber.New()
	app.Use(handler)
	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), fiber.TestConfig{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
}
