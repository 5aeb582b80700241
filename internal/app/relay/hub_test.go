package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestPublishToAbsentUser(t *testing.T) {
	hub := NewHub(4, zap.NewNop())

	done := make(chan bool)
	go func() { done <- hub.Publish(42, Event{Type: KindNewMatch}) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.False(t, hub.Online(42))
}

func TestPublishDelivers(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	sub := hub.Subscribe(1)
	assert.True(t, hub.Online(1))

	ok := hub.Publish(1, Event{Type: KindBuddyStatusUpdate, Payload: BuddyStatusPayload{BuddyID: 9, Status: models.BuddyStatusAccepted}})
	require.True(t, ok)

	ev := receive(t, sub)
	assert.Equal(t, KindBuddyStatusUpdate, ev.Type)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(2, zap.NewNop())
	hub.Subscribe(1)

	assert.True(t, hub.Publish(1, Event{Type: KindNewGroupVote}))
	assert.True(t, hub.Publish(1, Event{Type: KindNewGroupVote}))
	assert.False(t, hub.Publish(1, Event{Type: KindNewGroupVote}))
}

func TestSubscribeReplacesPrevious(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	first := hub.Subscribe(1)
	second := hub.Subscribe(1)

	select {
	case <-first.Done():
	default:
		t.Fatal("first subscription should be closed")
	}

	require.True(t, hub.Publish(1, Event{Type: KindNewMatch}))
	receive(t, second)

	// Removing the stale subscription keeps the current one.
	hub.Unsubscribe(first)
	assert.True(t, hub.Online(1))

	hub.Unsubscribe(second)
	assert.False(t, hub.Online(1))
}

func TestPublishMany(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	a := hub.Subscribe(1)
	b := hub.Subscribe(2)

	n := hub.PublishMany([]int64{1, 2, 3}, Event{Type: KindNewGroupMember, Payload: GroupMemberPayload{GroupID: 5, UserID: 3}})
	assert.Equal(t, 2, n)
	receive(t, a)
	receive(t, b)
}

func TestClose(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	sub := hub.Subscribe(1)
	hub.Close()

	<-sub.Done()
	assert.False(t, hub.Online(1))

	late := hub.Subscribe(2)
	<-late.Done()
	assert.False(t, hub.Publish(2, Event{Type: KindNewMatch}))
}

func TestEventMarshalFlattensPayload(t *testing.T) {
	ev := Event{Type: KindNewGroupVote, Payload: GroupVotePayload{GroupID: 1, UserID: 2, DestinationID: 3, Liked: true}}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "new_group_vote", decoded["type"])
	assert.Equal(t, float64(3), decoded["destinationId"])
	assert.Equal(t, true, decoded["liked"])

	raw, err = json.Marshal(Event{Type: KindPong})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(raw))

	_, err = json.Marshal(Event{Type: KindError, Payload: "not an object"})
	assert.Error(t, err)
}

func TestMessageLimiter(t *testing.T) {
	l := newMessageLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, l.allow(now))
	assert.True(t, l.allow(now.Add(time.Second)))
	assert.False(t, l.allow(now.Add(2*time.Second)))
	assert.True(t, l.allow(now.Add(61*time.Second)))
}
