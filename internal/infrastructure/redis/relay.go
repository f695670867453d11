package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medportal-notify/internal/realtime"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notify:user:"
	allChannel        = "notify:all"
)

// LocalPusher delivers to connections held by this instance.
type LocalPusher interface {
	Push(ctx context.Context, userID, event string, payload interface{}) error
	PushAll(ctx context.Context, event string, payload interface{}) error
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Relay publishes pushes to Redis so that every instance delivers them to the
// connections it holds. It satisfies the same push contract as the local hub;
// Push never reports ErrNotConnected because the owning instance is unknown.
type Relay struct {
	client *redis.Client
	local  LocalPusher
}

func NewRelay(client *redis.Client, local LocalPusher) *Relay {
	return &Relay{client: client, local: local}
}

func (r *Relay) Push(ctx context.Context, userID, event string, payload interface{}) error {
	return r.publish(ctx, userChannelPrefix+userID, event, payload)
}

func (r *Relay) PushAll(ctx context.Context, event string, payload interface{}) error {
	return r.publish(ctx, allChannel, event, payload)
}

func (r *Relay) publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Run subscribes to the relay channels and forwards messages to the local hub
// until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, userChannelPrefix+"*", allChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe relay channels: %w", err)
	}
	slog.Info("push relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(ctx, msg.Channel, msg.Payload)
		}
	}
}

func (r *Relay) forward(ctx context.Context, channel, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		slog.Warn("dropping malformed relay message", "channel", channel, "err", err)
		return
	}

	var err error
	switch {
	case channel == allChannel:
		err = r.local.PushAll(ctx, env.Event, env.Data)
	case strings.HasPrefix(channel, userChannelPrefix):
		err = r.local.Push(ctx, strings.TrimPrefix(channel, userChannelPrefix), env.Event, env.Data)
	default:
		return
	}
	if err != nil && !errors.Is(err, realtime.ErrNotConnected) {
		slog.Warn("relayed push failed", "channel", channel, "err", err)
	}
}
