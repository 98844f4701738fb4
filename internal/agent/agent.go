// Package agent implements the chat agent: identity, channel membership,
// messaging, the weather table, the fact rotation and command dispatch. All
// state lives in the shared store; per-agent state lives in a session.
package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// Options tunes an Agent.
type Options struct {
	// HistoryLimit caps each channel history. 0 keeps everything.
	HistoryLimit int64
}

// Agent bundles the components sharing one store.
type Agent struct {
	Identity   *Identity
	Membership *Membership
	Content    *Content
	Messaging  *Messaging
	Dispatcher *Dispatcher

	store  store.Store
	logger zerolog.Logger
}

// New wires every component to s.
func New(s store.Store, logger zerolog.Logger, opts Options) *Agent {
	identity := NewIdentity(s, logger.With().Str("component", "identity").Logger())
	content := NewContent(s, logger.With().Str("component", "content").Logger())

	return &Agent{
		Identity:   identity,
		Membership: NewMembership(s, logger.With().Str("component", "membership").Logger()),
		Content:    content,
		Messaging:  NewMessaging(s, logger.With().Str("component", "messaging").Logger(), opts.HistoryLimit),
		Dispatcher: NewDispatcher(identity, content, logger.With().Str("component", "dispatcher").Logger()),
		store:      s,
		logger:     logger,
	}
}

// NewSession opens an anonymous session with its own subscription.
func (a *Agent) NewSession(ctx context.Context) *session.Session {
	return session.New(ctx, a.store, a.logger)
}

// Store returns the backing store.
func (a *Agent) Store() store.Store {
	return a.store
}
