package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/metrics"
	"github.com/minu803/redis-chatbot/internal/models"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// Identity reads and writes user profiles.
type Identity struct {
	store  store.Store
	logger zerolog.Logger
}

// NewIdentity creates an identity manager.
func NewIdentity(s store.Store, logger zerolog.Logger) *Identity {
	return &Identity{store: s, logger: logger}
}

// Identify overwrites the profile stored for profile.Username and makes it
// the session's active user. Field values are stored as given.
func (m *Identity) Identify(ctx context.Context, sess *session.Session, profile models.UserProfile) error {
	if profile.Username == "" {
		return ErrInvalidUsername
	}

	if err := m.store.HashSetFields(ctx, store.UserKey(profile.Username), profile.Fields()); err != nil {
		return fmt.Errorf("identify %s: %w", profile.Username, err)
	}

	sess.SetUsername(profile.Username)
	metrics.ProfilesIdentified.Inc()

	sess.Logger().Info().Msg("user identified")
	return nil
}

// Profile returns the stored profile, or nil when the user never
// identified. A record missing any field yields ErrIncompleteProfile.
func (m *Identity) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	fields, err := m.store.HashGetAll(ctx, store.UserKey(username))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", username, err)
	}

	if len(fields) == 0 {
		return nil, nil
	}

	profile, ok := models.ProfileFromFields(fields)
	if !ok {
		m.logger.Warn().Str("user", username).Int("fields", len(fields)).Msg("incomplete profile record")
		return nil, ErrIncompleteProfile
	}

	return &profile, nil
}
