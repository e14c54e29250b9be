package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

const engagementChannelPrefix = "engagement:user:"

// EngagementEvent is the payload pushed to a post owner when someone engages
// with their post.
type EngagementEvent struct {
	Type    string    `json:"type"`
	PostID  uint      `json:"post_id"`
	ActorID uint      `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Notifier publishes engagement events into Redis channels. A nil Redis
// client turns every publish into a no-op, matching the cache layer's
// degraded mode.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEngagement sends an engagement event to the post owner's channel.
func (n *Notifier) PublishEngagement(ctx context.Context, ownerID uint, event EngagementEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal engagement event: %w", err)
	}
	channel := fmt.Sprintf("%s%d", engagementChannelPrefix, ownerID)
	return n.rdb.Publish(ctx, channel, string(payload)).Err()
}

// NotifyEngagement implements service.EngagementNotifier. Publish failures
// are logged and swallowed; engagement persistence never depends on
// delivery.
func (n *Notifier) NotifyEngagement(ctx context.Context, event string, postID, ownerID, actorID uint) {
	// self-engagement generates no notification
	if ownerID == actorID {
		return
	}
	err := n.PublishEngagement(ctx, ownerID, EngagementEvent{
		Type:    event,
		PostID:  postID,
		ActorID: actorID,
		At:      time.Now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish engagement event",
			"event", event, "post_id", postID, "err", err)
	}
}

// StartSubscriber subscribes to all engagement channels and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, engagementChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in engagement subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
