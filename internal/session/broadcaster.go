package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultUpdateChannel = "session:updates"

type update struct {
	View      *View  `json:"view"`
	RequestID string `json:"request_id,omitempty"`
}

// Broadcaster relays session updates between API instances over Redis
// Pub/Sub so watchers connected to any instance see every transition.
type Broadcaster struct {
	redis   *redis.Client
	channel string
	deliver func(view *View, requestID string) error
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub relay. deliver hands received updates to
// local connections, normally WSHandler.Publish.
func NewBroadcaster(client *redis.Client, channel string, deliver func(view *View, requestID string) error, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = defaultUpdateChannel
	}
	return &Broadcaster{
		redis:   client,
		channel: channel,
		deliver: deliver,
		logger:  logger.With().Str("component", "session_broadcaster").Logger(),
	}
}

// Publish sends an update to every subscribed instance, this one included.
func (b *Broadcaster) Publish(ctx context.Context, view *View, requestID string) error {
	raw, err := json.Marshal(update{View: view, RequestID: requestID})
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish session update: %w", err)
	}
	return nil
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.deliver == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var evt update
	if err := json.Unmarshal([]byte(payload), &evt); err != nil || evt.View == nil {
		b.logger.Warn().Err(err).Msg("failed to decode session update payload")
		return
	}
	if err := b.deliver(evt.View, evt.RequestID); err != nil {
		b.logger.Warn().Err(err).Str("session_id", evt.View.SessionID.String()).Msg("session update not delivered")
	}
}
