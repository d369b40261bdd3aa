package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

func okPing(context.Context) error   { return nil }
func failPing(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus int
		want       models.HealthResponse
	}{
		{"all healthy", PingFunc(okPing), PingFunc(okPing), http.StatusOK, models.HealthResponse{Database: "ok", Redis: "ok"}},
		{"no redis", PingFunc(okPing), nil, http.StatusOK, models.HealthResponse{Database: "ok"}},
		{"redis down degrades", PingFunc(okPing), PingFunc(failPing), http.StatusOK, models.HealthResponse{Database: "ok", Redis: "unreachable"}},
		{"database down", PingFunc(failPing), nil, http.StatusServiceUnavailable, models.HealthResponse{Database: "unreachable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/healthz", NewHealthHandler(tt.db, tt.redis).Check)

			status, env := doRequest(t, app, http.MethodGet, "/healthz")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}

			var got models.HealthResponse
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got != tt.want {
				t.Errorf("health = %+v, want %+v", got, tt.want)
			}
		})
	}
}
