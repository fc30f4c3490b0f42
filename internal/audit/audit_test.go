package audit

import (
	"context"
	"testing"
	"time"

	"github.com/eaglebank/auth-api/shared/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRecorder(level zapcore.Level) (*Recorder, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewRecorder(zap.New(core)), logs
}

// roundTrip mimics what the subscriber hands over: Data decoded from JSON
// into a generic map.
func roundTrip(eventType string, data map[string]any) events.Event {
	return events.Event{Type: eventType, Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Data: data}
}

func TestHandleUserEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  events.Event
		fields map[string]any
	}{
		{
			name:  "email updated",
			event: roundTrip(events.UserEmailUpdated, map[string]any{"userId": float64(1), "oldEmail": "a@x.com", "newEmail": "b@x.com"}),
			fields: map[string]any{
				"event": events.UserEmailUpdated, "user_id": int64(1), "old_email": "a@x.com", "new_email": "b@x.com",
			},
		},
		{
			name:  "role updated",
			event: roundTrip(events.UserRoleUpdated, map[string]any{"userId": float64(2), "role": "admin", "updatedBy": float64(1)}),
			fields: map[string]any{
				"event": events.UserRoleUpdated, "user_id": int64(2), "role": "admin", "updated_by": int64(1),
			},
		},
		{
			name:  "deleted",
			event: roundTrip(events.UserDeleted, map[string]any{"userId": float64(3), "email": "c@x.com"}),
			fields: map[string]any{
				"event": events.UserDeleted, "user_id": int64(3), "email": "c@x.com",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, logs := newObservedRecorder(zapcore.InfoLevel)
			require.NoError(t, recorder.HandleUserEvent(context.Background(), tt.event))

			entries := logs.FilterMessage(auditMessage).All()
			require.Len(t, entries, 1)
			ctx := entries[0].ContextMap()
			for k, v := range tt.fields {
				assert.Equal(t, v, ctx[k], k)
			}
		})
	}
}

func TestHandleUserEventMalformedIsAcked(t *testing.T) {
	recorder, logs := newObservedRecorder(zapcore.InfoLevel)
	event := roundTrip(events.UserDeleted, map[string]any{"userId": "not-a-number"})

	assert.NoError(t, recorder.HandleUserEvent(context.Background(), event))
	assert.Equal(t, 1, logs.FilterMessage("malformed event").Len())
	assert.Equal(t, 0, logs.FilterMessage(auditMessage).Len())
}

func TestHandleUserEventIgnoresUnknownTypes(t *testing.T) {
	recorder, logs := newObservedRecorder(zapcore.DebugLevel)

	assert.NoError(t, recorder.HandleUserEvent(context.Background(), roundTrip("account.created", nil)))
	assert.Equal(t, 1, logs.FilterMessage("ignoring event").Len())
}
