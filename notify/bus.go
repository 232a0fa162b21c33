// Package notify broadcasts post-commit state-change events to subscribed
// clients over Redis pub/sub. Publishing is fire-and-forget: a failed or
// missing bus never fails the mutation that triggered the event.
package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event types emitted by the API.
const (
	ComplaintCreated       = "complaint.created"
	ComplaintVoted         = "complaint.voted"
	ComplaintStatusChanged = "complaint.status_changed"
	CommentCreated         = "comment.created"
	CommentLiked           = "comment.liked"
	CommentDeleted         = "comment.deleted"
	MemberJoined           = "community.member_joined"
	MemberLeft             = "community.member_left"
	PostCreated            = "post.created"
	PostLiked              = "post.liked"
)

// Event is the wire format published on the bus.
type Event struct {
	Type     string      `json:"type"`
	EntityID uint        `json:"entity_id"`
	ActorID  uint        `json:"actor_id"`
	Payload  interface{} `json:"payload,omitempty"`
	At       time.Time   `json:"at"`
}

// Bus publishes events to Redis channels named events:<entity>, derived from
// the event type's prefix (complaint.voted -> events:complaint).
type Bus struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

// NewBus creates a Bus. A nil client yields a bus that only logs.
func NewBus(rdb *redis.Client, log *zap.SugaredLogger) *Bus {
	return &Bus{rdb: rdb, log: log}
}

// Publish broadcasts the event. Errors are logged at warn and swallowed.
func (b *Bus) Publish(eventType string, entityID, actorID uint, payload interface{}) {
	if b == nil {
		return
	}
	ev := Event{
		Type:     eventType,
		EntityID: entityID,
		ActorID:  actorID,
		Payload:  payload,
		At:       time.Now().UTC(),
	}

	if b.rdb == nil {
		if b.log != nil {
			b.log.Debugf("notify: no bus configured, dropping %s for entity %d", eventType, entityID)
		}
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		if b.log != nil {
			b.log.Warnf("notify: marshal %s failed: %v", eventType, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.rdb.Publish(ctx, Channel(eventType), body).Err(); err != nil && b.log != nil {
		b.log.Warnf("notify: publish %s failed: %v", eventType, err)
	}
}

// Channel returns the pub/sub channel for an event type.
func Channel(eventType string) string {
	entity := eventType
	if i := strings.IndexByte(eventType, '.'); i > 0 {
		entity = eventType[:i]
	}
	return "events:" + entity
}

// Subscribe returns a pub/sub subscription for the given entities, used by
// the realtime gateway to fan events out to websocket clients.
func (b *Bus) Subscribe(ctx context.Context, entities ...string) *redis.PubSub {
	channels := make([]string, len(entities))
	for i, e := range entities {
		channels[i] = "events:" + e
	}
	return b.rdb.Subscribe(ctx, channels...)
}
