package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/models"
)

func TestHandler_Health(t *testing.T) {
	h := New(logging.NewDevelopment(), &stubStore{})

	app := fiber.New()
	app.Get("/health", h.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var health models.HealthResponse
	decodeBody(t, resp.Body, &health)
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", health.Status)
	}
	if health.Timestamp == "" {
		t.Error("Expected non-empty timestamp")
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New(logging.NewDevelopment(), &stubStore{})

	app := fiber.New()
	app.Use(h.NotFound)

	resp, err := app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %s", errResp.Error.Code)
	}
	if errResp.Error.Path != "/no/such/route" {
		t.Errorf("Expected path in error detail, got %s", errResp.Error.Path)
	}
}
