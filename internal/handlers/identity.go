package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/models"
)

// IdentifyResponse represents the identify response.
type IdentifyResponse struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// Identify stores a user profile.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	var req models.UserProfile
	if !h.decode(w, r, &req) {
		return
	}

	req.Username = sanitizeName(req.Username)
	if req.Username == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	sess := h.session(r.Context(), "")
	defer sess.Close()

	if err := h.agent.Identity.Identify(r.Context(), sess, req); err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusCreated, IdentifyResponse{
		Name:       req.Username,
		ProfileURL: fmt.Sprintf("/who/%s", req.Username),
	})
}

// Who returns a stored profile.
func (h *Handler) Who(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.agent.Identity.Profile(r.Context(), username)
	if errors.Is(err, agent.ErrIncompleteProfile) {
		h.Error(w, http.StatusConflict, "profile is incomplete")
		return
	}
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	if profile == nil {
		h.Error(w, http.StatusNotFound, "user not found")
		return
	}

	h.JSON(w, http.StatusOK, profile)
}
