package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minu803/redis-chatbot/internal/models"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// brokenSubscription fails every change request.
type brokenSubscription struct {
	err error
}

func (s *brokenSubscription) Subscribe(context.Context, ...string) error   { return s.err }
func (s *brokenSubscription) Unsubscribe(context.Context, ...string) error { return s.err }
func (s *brokenSubscription) Poll(context.Context) (models.Message, bool, error) {
	return models.Message{}, false, nil
}
func (s *brokenSubscription) Channels() []string { return nil }
func (s *brokenSubscription) Close() error       { return nil }

// brokenSetStore fails set mutations after the first call of each kind.
type brokenSetStore struct {
	store.Store
	adds, removes int
	err           error
}

func (s *brokenSetStore) SetAdd(ctx context.Context, key, member string) (bool, error) {
	s.adds++
	if s.adds > 1 {
		return false, s.err
	}
	return s.Store.SetAdd(ctx, key, member)
}

func (s *brokenSetStore) SetRemove(ctx context.Context, key, member string) (bool, error) {
	s.removes++
	if s.removes > 1 {
		return false, s.err
	}
	return s.Store.SetRemove(ctx, key, member)
}

func TestJoinAndLeave(t *testing.T) {
	mr, a := newTestAgent(t)
	sess := newTestSession(t, a)
	ctx := context.Background()
	identify(t, a, sess, "alice")

	require.NoError(t, a.Membership.Join(ctx, sess, "general"))
	require.NoError(t, a.Membership.Join(ctx, sess, "random"))

	members, err := mr.Members("channel:alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"general", "random"}, members)
	assert.Equal(t, []string{"general", "random"}, sess.Subscription().Channels())

	channels, err := a.Membership.Channels(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "random"}, channels)

	require.NoError(t, a.Membership.Leave(ctx, sess, "general"))
	channels, err = a.Membership.Channels(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"random"}, channels)
	assert.Equal(t, []string{"random"}, sess.Subscription().Channels())
}

func TestJoinIsIdempotent(t *testing.T) {
	_, a := newTestAgent(t)
	sess := newTestSession(t, a)
	ctx := context.Background()
	identify(t, a, sess, "alice")

	require.NoError(t, a.Membership.Join(ctx, sess, "general"))
	require.NoError(t, a.Membership.Join(ctx, sess, "general"))

	channels, err := a.Membership.Channels(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, channels)
	assert.Equal(t, []string{"general"}, sess.Subscription().Channels())
}

func TestLeaveIsIdempotent(t *testing.T) {
	_, a := newTestAgent(t)
	sess := newTestSession(t, a)
	ctx := context.Background()
	identify(t, a, sess, "alice")

	require.NoError(t, a.Membership.Leave(ctx, sess, "never-joined"))
	require.NoError(t, a.Membership.Join(ctx, sess, "general"))
	require.NoError(t, a.Membership.Leave(ctx, sess, "general"))
	require.NoError(t, a.Membership.Leave(ctx, sess, "general"))

	channels, err := a.Membership.Channels(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, channels)
	assert.Empty(t, sess.Subscription().Channels())
}

func TestMembershipRequiresIdentity(t *testing.T) {
	_, a := newTestAgent(t)
	sess := newTestSession(t, a)
	ctx := context.Background()

	assert.ErrorIs(t, a.Membership.Join(ctx, sess, "general"), ErrNotIdentified)
	assert.ErrorIs(t, a.Membership.Leave(ctx, sess, "general"), ErrNotIdentified)
	assert.ErrorIs(t, a.Membership.Sync(ctx, sess), ErrNotIdentified)
}

func TestJoinDeliversMessages(t *testing.T) {
	_, a := newTestAgent(t)
	sess := newTestSession(t, a)
	ctx := context.Background()
	identify(t, a, sess, "alice")

	require.NoError(t, a.Membership.Join(ctx, sess, "general"))
	require.NoError(t, a.Messaging.Broadcast(ctx, "general", "hello"))

	msg, ok := pollUntil(t, a, sess)
	require.True(t, ok)
	assert.Equal(t, models.Message{Channel: "general", Payload: "hello"}, msg)

	require.NoError(t, a.Membership.Leave(ctx, sess, "general"))
	require.NoError(t, a.Messaging.Broadcast(ctx, "general", "after leave"))

	_, ok, err := a.Messaging.PollNext(ctx, sess)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncRestoresRecordedChannels(t *testing.T) {
	_, a := newTestAgent(t)
	ctx := context.Background()

	first := newTestSession(t, a)
	identify(t, a, first, "alice")
	require.NoError(t, a.Membership.Join(ctx, first, "general"))
	require.NoError(t, a.Membership.Join(ctx, first, "random"))

	second := newTestSession(t, a)
	identify(t, a, second, "alice")
	assert.Empty(t, second.Subscription().Channels())

	require.NoError(t, a.Membership.Sync(ctx, second))
	assert.Equal(t, []string{"general", "random"}, second.Subscription().Channels())

	// Switching users drops subscriptions the new user never recorded.
	identify(t, a, second, "bob")
	require.NoError(t, a.Membership.Sync(ctx, second))
	assert.Empty(t, second.Subscription().Channels())
}

func TestJoinCompensatesFailedSubscribe(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()
	subErr := errors.New("subscribe refused")

	sess := session.NewWithSubscription(&brokenSubscription{err: subErr}, zerolog.Nop())
	identify(t, a, sess, "alice")

	err := a.Membership.Join(ctx, sess, "general")
	require.Error(t, err)
	assert.ErrorIs(t, err, subErr)
	assert.NotErrorIs(t, err, ErrMembershipDrift)
	assert.False(t, mr.Exists("channel:alice"))
}

func TestJoinKeepsExistingMemberOnFailedSubscribe(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()
	mr.SAdd("channel:alice", "general")

	sess := session.NewWithSubscription(&brokenSubscription{err: errors.New("down")}, zerolog.Nop())
	identify(t, a, sess, "alice")

	require.Error(t, a.Membership.Join(ctx, sess, "general"))
	ok, err := mr.SIsMember("channel:alice", "general")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJoinDriftWhenCompensationFails(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()
	subErr := errors.New("subscribe refused")
	remErr := errors.New("srem refused")

	broken := &brokenSetStore{Store: a.Store(), err: remErr, removes: 1}
	m := NewMembership(broken, zerolog.Nop())
	sess := session.NewWithSubscription(&brokenSubscription{err: subErr}, zerolog.Nop())
	identify(t, a, sess, "alice")

	err := m.Join(ctx, sess, "general")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMembershipDrift)
	assert.ErrorIs(t, err, subErr)
	assert.ErrorIs(t, err, remErr)

	var drift *MembershipDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "join", drift.Op)
	assert.Equal(t, "alice", drift.Username)
	assert.Equal(t, "general", drift.Channel)

	// The recorded set still holds the channel the session never subscribed to.
	ok, serr := mr.SIsMember("channel:alice", "general")
	require.NoError(t, serr)
	assert.True(t, ok)
}

func TestLeaveCompensatesFailedUnsubscribe(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()
	mr.SAdd("channel:alice", "general")

	sess := session.NewWithSubscription(&brokenSubscription{err: errors.New("down")}, zerolog.Nop())
	identify(t, a, sess, "alice")

	err := a.Membership.Leave(ctx, sess, "general")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMembershipDrift)

	ok, serr := mr.SIsMember("channel:alice", "general")
	require.NoError(t, serr)
	assert.True(t, ok)
}

func TestLeaveDriftWhenCompensationFails(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()
	mr.SAdd("channel:alice", "general")

	broken := &brokenSetStore{Store: a.Store(), err: errors.New("sadd refused"), adds: 1}
	m := NewMembership(broken, zerolog.Nop())
	sess := session.NewWithSubscription(&brokenSubscription{err: errors.New("down")}, zerolog.Nop())
	identify(t, a, sess, "alice")

	err := m.Leave(ctx, sess, "general")
	require.Error(t, err)

	var drift *MembershipDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "leave", drift.Op)
	assert.Error(t, drift.CompensationErr)
}

func TestMembershipDriftErrorMessage(t *testing.T) {
	err := &MembershipDriftError{
		Op:              "join",
		Username:        "alice",
		Channel:         "general",
		Cause:           errors.New("boom"),
		CompensationErr: errors.New("undo failed"),
	}
	assert.Contains(t, err.Error(), "membership drift")
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "undo failed")
	assert.Len(t, err.Unwrap(), 2)
}

func TestLeaveFailureKeepsServerSubscription(t *testing.T) {
	_, a := newTestAgent(t)
	ctx := context.Background()

	// Pub/sub runs on its own server so only the subscription fails.
	pubsubServer := miniredis.RunT(t)
	pubsub := newStore(t, pubsubServer)

	sess := session.NewWithSubscription(pubsub.NewSubscription(ctx), zerolog.Nop())
	t.Cleanup(func() { _ = sess.Close() })
	identify(t, a, sess, "alice")
	require.NoError(t, a.Membership.Join(ctx, sess, "general"))

	pubsubServer.Close()
	err := a.Membership.Leave(ctx, sess, "general")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrMembershipDrift)

	require.NoError(t, pubsubServer.Restart())
	require.NoError(t, a.Membership.Join(ctx, sess, "other"))

	recorded, err := a.Membership.Channels(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "other"}, recorded)
	assert.Equal(t, recorded, sess.Subscription().Channels())
	assert.Equal(t, map[string]int{"general": 1, "other": 1}, pubsubServer.PubSubNumSub("general", "other"))

	n, err := pubsub.Publish(ctx, "general", "after reconnect")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
