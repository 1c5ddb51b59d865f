// Package events publishes domain events on Redis pub/sub channels. Publishing
// is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel names double as the event type.
const (
	ReviewSubmitted     = "EVENT_REVIEW_SUBMITTED"
	ReviewUpdated       = "EVENT_REVIEW_UPDATED"
	ReviewDeleted       = "EVENT_REVIEW_DELETED"
	InternshipsImported = "EVENT_INTERNSHIPS_IMPORTED"
)

// Event is the JSON body sent on every channel.
type Event struct {
	Type      string   `json:"type"`
	ReviewID  string   `json:"reviewId,omitempty"`
	ReviewIDs []string `json:"reviewIds,omitempty"`
	Company   string   `json:"company,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	Inserted  int      `json:"inserted,omitempty"`
	Filtered  int      `json:"filtered,omitempty"`
}

// Publisher sends an event to its channel.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// RedisPublisher publishes events with PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish encodes ev and publishes it on the channel named by ev.Type.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ev.Type, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Nop discards every event. It is used when no Redis URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
