package notification

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publishes intents as JSON onto a redis pub/sub channel. Whatever
// consumes the channel owns delivery from there.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisSink creates a sink publishing to the given channel.
func NewRedisSink(client *redis.Client, channel string, logger *zap.Logger) *RedisSink {
	if channel == "" {
		channel = "complaint-notifications"
	}
	return &RedisSink{client: client, channel: channel, logger: logger}
}

// Deliver publishes a single intent. Failures are logged and returned; the
// caller decides whether to care.
func (s *RedisSink) Deliver(ctx context.Context, intent Intent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel, body).Err(); err != nil {
		s.logger.Warn("notification publish failed",
			zap.String("recipient_id", intent.RecipientID),
			zap.String("kind", string(intent.Kind)),
			zap.Error(err))
		return err
	}
	return nil
}
