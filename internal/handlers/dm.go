package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minu803/redis-chatbot/internal/agent"
)

// DMRequest represents a private message body.
type DMRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// SendDM publishes a private message on the recipient's name channel.
func (h *Handler) SendDM(w http.ResponseWriter, r *http.Request) {
	to := sanitizeName(chi.URLParam(r, "username"))

	var req DMRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	err := h.agent.Messaging.SendPrivate(r.Context(), sanitizeName(req.From), to, req.Message)
	if errors.Is(err, agent.ErrNotIdentified) {
		h.Error(w, http.StatusBadRequest, "from is required")
		return
	}
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	// Delivery is fire-and-forget.
	h.JSON(w, http.StatusAccepted, map[string]string{"to": to, "status": "sent"})
}
