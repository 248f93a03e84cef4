package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TableVotes    = "votes"
	TableComments = "comments"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ChangeEvent is a row-level change notification for one table, filtered by
// topic. Carries no row data: consumers always re-fetch the authoritative
// current set, so coalesced or out-of-order delivery cannot corrupt state.
type ChangeEvent struct {
	Table   string    `json:"table"`
	TopicID string    `json:"topic_id"`
	Action  Action    `json:"action"`
	At      time.Time `json:"at"`
}

// Bus fans change notifications out to per-topic subscribers. Subscriptions
// are scoped to a context so release is enforced by cancellation rather than
// by callers remembering to unregister a callback.
type Bus struct {
	pubsub *gochannel.GoChannel
	active atomic.Int64
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
	}
}

// streamName scopes delivery to one table and one topic, the same shape as a
// server-side "table, filter: topic_id = X" subscription.
func streamName(table, topicID string) string {
	return fmt.Sprintf("changes.%s.%s", table, topicID)
}

// Publish emits a change notification. Called by the store after a mutation
// has committed, never before.
func (b *Bus) Publish(table, topicID string, action Action) error {
	payload, err := json.Marshal(ChangeEvent{
		Table:   table,
		TopicID: topicID,
		Action:  action,
		At:      time.Now(),
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubsub.Publish(streamName(table, topicID), msg)
}

// Subscribe opens a change-notification channel for one (table, topic) pair.
// The channel is closed and the subscription released when ctx is cancelled;
// that is the only way to unsubscribe, so no exit path can leak it.
func (b *Bus) Subscribe(ctx context.Context, table, topicID string) (<-chan ChangeEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, streamName(table, topicID))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s/%s: %w", table, topicID, err)
	}

	out := make(chan ChangeEvent, 16)
	b.active.Add(1)
	go func() {
		defer close(out)
		defer b.active.Add(-1)
		for msg := range msgs {
			var ev ChangeEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				log.Printf("realtime: dropping malformed change event: %v", err)
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			default:
				// Consumer is behind. Dropping is safe: every event
				// means "re-fetch", so the next delivered one carries
				// the same instruction.
			}
		}
	}()
	return out, nil
}

// Active returns the number of live subscriptions. Closing a topic view must
// bring this back to its prior value; tests assert exactly that.
func (b *Bus) Active() int64 {
	return b.active.Load()
}

// Close shuts the underlying pub/sub down, terminating all subscribers.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
