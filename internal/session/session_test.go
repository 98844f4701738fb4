package session

import (
	"bytes"
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minu803/redis-chatbot/internal/models"
)

type stubSubscription struct {
	closed bool
}

func (s *stubSubscription) Subscribe(context.Context, ...string) error   { return nil }
func (s *stubSubscription) Unsubscribe(context.Context, ...string) error { return nil }
func (s *stubSubscription) Poll(context.Context) (models.Message, bool, error) {
	return models.Message{}, false, nil
}
func (s *stubSubscription) Channels() []string { return nil }
func (s *stubSubscription) Close() error       { s.closed = true; return nil }

func TestSessionIdentity(t *testing.T) {
	var buf bytes.Buffer
	sub := &stubSubscription{}
	sess := NewWithSubscription(sub, zerolog.New(&buf))

	_, err := ulid.ParseStrict(sess.ID())
	require.NoError(t, err)
	assert.False(t, sess.Identified())
	assert.Empty(t, sess.Username())
	assert.Same(t, sub, sess.Subscription())

	sess.SetUsername("alice")
	sess.SetUsername("bob")
	assert.True(t, sess.Identified())
	assert.Equal(t, "bob", sess.Username())

	sess.Logger().Info().Msg("hello")
	assert.Contains(t, buf.String(), `"user":"bob"`)
	assert.NotContains(t, buf.String(), `"user":"alice"`)
	assert.Contains(t, buf.String(), `"session":"`+sess.ID()+`"`)

	require.NoError(t, sess.Close())
	assert.True(t, sub.closed)
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	a := NewWithSubscription(&stubSubscription{}, zerolog.Nop())
	b := NewWithSubscription(&stubSubscription{}, zerolog.Nop())
	assert.NotEqual(t, a.ID(), b.ID())
}
