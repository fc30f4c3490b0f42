package audit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eaglebank/auth-api/shared/events"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRecorderConsumesUserEventStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	recorder, logs := newObservedRecorder(zapcore.InfoLevel)
	subscriber := events.NewSubscriber(client, events.SubscriberConfig{
		Group:         ConsumerGroup,
		Consumer:      "audit-test",
		Stream:        events.UserEventsStream,
		Handler:       recorder.HandleUserEvent,
		BlockDuration: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- subscriber.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	publisher := events.NewPublisher(client)
	require.NoError(t, publisher.Publish(ctx, events.UserEventsStream, events.UserRoleUpdated,
		events.UserRoleUpdatedEvent{UserID: 2, Role: "admin", UpdatedBy: 1}))
	require.NoError(t, publisher.Publish(ctx, events.UserEventsStream, events.UserDeleted,
		events.UserDeletedEvent{UserID: 2, Email: "b@x.com"}))

	require.Eventually(t, func() bool {
		return logs.FilterMessage(auditMessage).Len() == 2
	}, 5*time.Second, 20*time.Millisecond)

	entries := logs.FilterMessage(auditMessage).All()
	assert.Equal(t, events.UserRoleUpdated, entries[0].ContextMap()["event"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["updated_by"])
	assert.Equal(t, events.UserDeleted, entries[1].ContextMap()["event"])
	assert.Equal(t, "b@x.com", entries[1].ContextMap()["email"])

	assert.Eventually(t, func() bool {
		pending, err := client.XPending(context.Background(), events.UserEventsStream, ConsumerGroup).Result()
		return err == nil && pending.Count == 0
	}, 2*time.Second, 20*time.Millisecond, "recorded events are acked")
}
