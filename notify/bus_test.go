package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicpulse/civicpulse/notify"
)

// TestChannelDerivation verifies channel names come from the event type's
// entity prefix.
func TestChannelDerivation(t *testing.T) {
	assert.Equal(t, "events:complaint", notify.Channel(notify.ComplaintVoted))
	assert.Equal(t, "events:community", notify.Channel(notify.MemberJoined))
	assert.Equal(t, "events:post", notify.Channel(notify.PostLiked))
	assert.Equal(t, "events:heartbeat", notify.Channel("heartbeat"))
}

// TestPublishNeverPanicsWithoutBackend verifies fire-and-forget semantics
// hold for nil buses and buses without a Redis client.
func TestPublishNeverPanicsWithoutBackend(t *testing.T) {
	var nilBus *notify.Bus
	assert.NotPanics(t, func() {
		nilBus.Publish(notify.ComplaintCreated, 1, 2, nil)
	})

	noClient := notify.NewBus(nil, nil)
	assert.NotPanics(t, func() {
		noClient.Publish(notify.CommentCreated, 3, 4, map[string]int{"complaint_id": 9})
	})
}
