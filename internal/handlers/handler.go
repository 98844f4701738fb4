package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// maxNameLength bounds usernames, channel names and cities taken from requests.
const maxNameLength = 100

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	agent  *agent.Agent
	logger zerolog.Logger
}

// NewHandler creates a new Handler backed by a.
func NewHandler(a *agent.Agent, logger zerolog.Logger) *Handler {
	return &Handler{agent: a, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// StoreError maps an agent or store failure to a response.
func (h *Handler) StoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("store unavailable")
		h.Error(w, http.StatusServiceUnavailable, "store unavailable")
	case errors.Is(err, agent.ErrMembershipDrift):
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("membership drift")
		h.Error(w, http.StatusInternalServerError, "membership out of sync")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into dst, replying 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// session opens a short-lived session acting as username. An empty username
// yields an anonymous session.
func (h *Handler) session(ctx context.Context, username string) *session.Session {
	sess := h.agent.NewSession(ctx)
	if username != "" {
		sess.SetUsername(username)
	}
	return sess
}

// sanitizeName trims and limits name to maxNameLength bytes, removing control
// characters. Truncation never splits a rune.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if len(name) > maxNameLength {
		cut := maxNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}

	return name
}
