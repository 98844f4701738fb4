package handlers

import (
	"net/http"
)

// CommandRequest is a chat line sent to the bot, optionally as a user.
type CommandRequest struct {
	Username string `json:"username"`
	Input    string `json:"input"`
}

// CommandResponse carries the bot's reply.
type CommandResponse struct {
	Response string `json:"response"`
}

// Command dispatches a chat line and returns the bot's reply.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess := h.session(r.Context(), sanitizeName(req.Username))
	defer sess.Close()

	response, err := h.agent.Dispatcher.DispatchText(r.Context(), sess, req.Input)
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, CommandResponse{Response: response})
}
