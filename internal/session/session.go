// Package session holds the per-agent state every core operation receives
// explicitly: the active username and the live pub/sub subscription.
package session

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/store"
)

// Session is one agent's view of the shared store. It is driven by a single
// front end and is not safe for concurrent use.
type Session struct {
	id       string
	username string
	sub      store.Subscription
	base     zerolog.Logger
	logger   zerolog.Logger
}

// New creates an anonymous session with its own subscription.
func New(ctx context.Context, s store.Store, logger zerolog.Logger) *Session {
	return NewWithSubscription(s.NewSubscription(ctx), logger)
}

// NewWithSubscription creates an anonymous session around sub.
func NewWithSubscription(sub store.Subscription, logger zerolog.Logger) *Session {
	id := ulid.Make().String()
	base := logger.With().Str("session", id).Logger()
	return &Session{
		id:     id,
		sub:    sub,
		base:   base,
		logger: base,
	}
}

// ID returns the session's ULID.
func (s *Session) ID() string {
	return s.id
}

// Username returns the active username, empty before identification.
func (s *Session) Username() string {
	return s.username
}

// Identified reports whether a username is active.
func (s *Session) Identified() bool {
	return s.username != ""
}

// SetUsername switches the active user.
func (s *Session) SetUsername(username string) {
	s.username = username
	s.logger = s.base.With().Str("user", username).Logger()
}

// Subscription returns the session's live subscription.
func (s *Session) Subscription() store.Subscription {
	return s.sub
}

// Logger returns a logger tagged with the session and user.
func (s *Session) Logger() *zerolog.Logger {
	return &s.logger
}

// Close releases the subscription.
func (s *Session) Close() error {
	return s.sub.Close()
}
