package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minu803/redis-chatbot/internal/agent"
)

// WeatherResponse represents a weather lookup.
type WeatherResponse struct {
	City    string `json:"city"`
	Weather string `json:"weather"`
}

// Weather returns the stored condition for a city.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	weather, ok, err := h.agent.Content.LookupWeather(r.Context(), city)
	if err != nil {
		h.StoreError(w, r, err)
		return
	}
	if !ok {
		h.Error(w, http.StatusNotFound, "no weather data for city")
		return
	}

	h.JSON(w, http.StatusOK, WeatherResponse{City: city, Weather: weather})
}

// Fact rotates and returns the next fact.
func (h *Handler) Fact(w http.ResponseWriter, r *http.Request) {
	fact, err := h.agent.Content.NextFact(r.Context())
	if errors.Is(err, agent.ErrEmptyRotation) {
		h.Error(w, http.StatusNotFound, "no facts available")
		return
	}
	if err != nil {
		h.StoreError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"fact": fact})
}
