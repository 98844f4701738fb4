package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/minu803/redis-chatbot/internal/agent"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health pings the store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, statusCode := "healthy", http.StatusOK

	start := time.Now()
	check := Check{Status: "pass"}
	if err := h.agent.Store().Ping(ctx); err != nil {
		check = Check{Status: "fail", Message: "connection failed"}
		status, statusCode = "degraded", http.StatusServiceUnavailable
	} else {
		check.Latency = time.Since(start).String()
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    map[string]Check{"redis": check},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Commands string `json:"commands"`
}

// Root describes the service and its chat commands.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:     "redis-chatbot",
		Version:  version,
		Commands: agent.HelpText,
	})
}
