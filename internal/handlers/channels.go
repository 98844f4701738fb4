package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MembersResponse lists a user's recorded channels.
type MembersResponse struct {
	Username string   `json:"username"`
	Channels []string `json:"channels"`
}

// Members returns the channels a user has joined.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	channels, err := h.agent.Membership.Channels(r.Context(), username)
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, MembersResponse{Username: username, Channels: channels})
}

// HistoryResponse holds a channel's messages, oldest first.
type HistoryResponse struct {
	Channel  string   `json:"channel"`
	Messages []string `json:"messages"`
}

// History returns a channel's recorded messages.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")

	messages, err := h.agent.Messaging.ReadHistory(r.Context(), channel)
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, HistoryResponse{Channel: channel, Messages: messages})
}

// BroadcastRequest represents a channel message body.
type BroadcastRequest struct {
	Message string `json:"message"`
}

// Broadcast publishes a message to a channel and records it.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	channel := sanitizeName(chi.URLParam(r, "channel"))
	if channel == "" {
		h.Error(w, http.StatusBadRequest, "channel is required")
		return
	}

	var req BroadcastRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	if err := h.agent.Messaging.Broadcast(r.Context(), channel, req.Message); err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusCreated, map[string]string{"channel": channel, "status": "sent"})
}
