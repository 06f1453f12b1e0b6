package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncboard/syncboard/pkg/logger"
	"github.com/syncboard/syncboard/pkg/metrics"
)

// Channel name pattern and event used for document change fan-out.
const (
	EventDocumentUpdated = "document-updated"

	publishTimeout = 5 * time.Second
)

// ChannelForDocument returns the per-document channel name.
func ChannelForDocument(documentID string) string {
	return "document-" + documentID
}

// Notifier fans out advisory events to connected viewers. Delivery is
// best-effort: no ordering, no acknowledgment, no retry.
type Notifier interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// envelope is the wire shape published on a channel.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RedisNotifier publishes events to Redis Pub/Sub channels.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	b, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, channel, b).Err()
}

// NopNotifier drops all events. Used when Redis is not configured so that a
// missing realtime backend degrades to a silent no-op instead of a failure.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	return nil
}

// Fire publishes in the background and never reports failure to the caller:
// errors are logged as warnings and counted. The triggering request must not
// fail or retry because of the realtime channel.
func Fire(n Notifier, channel, event string, payload interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := n.Publish(ctx, channel, event, payload); err != nil {
			metrics.RealtimePublishFailures.Inc()
			logger.Warnf("realtime publish failed (channel=%s event=%s): %v", channel, event, err)
		}
	}()
}
