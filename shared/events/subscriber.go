package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one decoded event. Returning an error leaves the message
// unacknowledged in the consumer group.
type Handler func(ctx context.Context, event Event) error

// SubscriberConfig describes one consumer in a consumer group. Zero values
// for BatchSize, BlockDuration and Logger are replaced with defaults.
type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	Logger        *zap.Logger
}

type Subscriber struct {
	client *redis.Client
	cfg    SubscriberConfig
	logger *zap.Logger
}

const readRetryDelay = time.Second

func NewSubscriber(client *redis.Client, cfg SubscriberConfig) *Subscriber {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Subscriber{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger.With(
			zap.String("stream", cfg.Stream),
			zap.String("group", cfg.Group),
			zap.String("consumer", cfg.Consumer),
		),
	}
}

// Start joins the consumer group, creating the stream when missing, and
// dispatches new messages until ctx is done. It always returns a non-nil
// error: ctx.Err() on a normal stop.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.joinGroup(ctx); err != nil {
		return err
	}
	s.logger.Info("subscriber started")

	for ctx.Err() == nil {
		if err := s.poll(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("stream read failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(readRetryDelay):
			}
		}
	}

	s.logger.Info("subscriber stopping")
	return ctx.Err()
}

func (s *Subscriber) joinGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err == nil || strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("failed to join consumer group %s on %s: %w", s.cfg.Group, s.cfg.Stream, err)
}

func (s *Subscriber) poll(ctx context.Context) error {
	batches, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, ">"},
		Count:    s.cfg.BatchSize,
		Block:    s.cfg.BlockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, batch := range batches {
		for _, message := range batch.Messages {
			s.dispatch(ctx, message)
		}
	}
	return nil
}

// dispatch acks a message only after its handler succeeds. Failed messages
// stay in the pending list where XPENDING/XCLAIM can find them.
func (s *Subscriber) dispatch(ctx context.Context, message redis.XMessage) {
	event, err := decodeMessage(message)
	if err == nil {
		err = s.cfg.Handler(ctx, event)
	}
	if err != nil {
		s.logger.Warn("event left pending", zap.String("id", message.ID), zap.Error(err))
		return
	}

	if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, message.ID).Err(); err != nil {
		s.logger.Warn("failed to ack event", zap.String("id", message.ID), zap.Error(err))
	}
}

func decodeMessage(message redis.XMessage) (Event, error) {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return Event{}, fmt.Errorf("message %s has no event field", message.ID)
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode event %s: %w", message.ID, err)
	}
	return event, nil
}
