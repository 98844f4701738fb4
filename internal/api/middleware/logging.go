package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger logs one line per request. The chi route pattern and the user and
// channel named in the path are attached once routing has run, so lines for
// one account or channel can be filtered without parsing paths. Server errors
// log at error level.
func Logger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status == http.StatusTooManyRequests:
				event = logger.Warn()
			}

			event = event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context()))
			if user := chi.URLParam(r, "username"); user != "" {
				event = event.Str("user", user)
			}
			if channel := chi.URLParam(r, "channel"); channel != "" {
				event = event.Str("channel", channel)
			}
			event.Msg("request completed")
		})
	}
}
