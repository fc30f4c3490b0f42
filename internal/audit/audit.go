// Package audit turns user events into an audit trail of structured log
// lines.
package audit

import (
	"context"

	"github.com/eaglebank/auth-api/shared/events"
	"go.uber.org/zap"
)

const (
	ConsumerGroup = "auth-api-audit"
	auditMessage  = "audit"
)

type Recorder struct {
	logger *zap.Logger
}

func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger.Named("audit")}
}

// HandleUserEvent matches events.Handler. Events that cannot be decoded are
// logged and acknowledged; retrying would not fix them.
func (r *Recorder) HandleUserEvent(ctx context.Context, event events.Event) error {
	base := []zap.Field{
		zap.String("event", event.Type),
		zap.Time("occurred_at", event.Timestamp),
	}

	switch event.Type {
	case events.UserEmailUpdated:
		var data events.UserEmailUpdatedEvent
		if err := event.DecodeData(&data); err != nil {
			r.logger.Warn("malformed event", append(base, zap.Error(err))...)
			return nil
		}
		r.logger.Info(auditMessage, append(base,
			zap.Int64("user_id", data.UserID),
			zap.String("old_email", data.OldEmail),
			zap.String("new_email", data.NewEmail),
		)...)

	case events.UserRoleUpdated:
		var data events.UserRoleUpdatedEvent
		if err := event.DecodeData(&data); err != nil {
			r.logger.Warn("malformed event", append(base, zap.Error(err))...)
			return nil
		}
		r.logger.Info(auditMessage, append(base,
			zap.Int64("user_id", data.UserID),
			zap.String("role", data.Role),
			zap.Int64("updated_by", data.UpdatedBy),
		)...)

	case events.UserDeleted:
		var data events.UserDeletedEvent
		if err := event.DecodeData(&data); err != nil {
			r.logger.Warn("malformed event", append(base, zap.Error(err))...)
			return nil
		}
		r.logger.Info(auditMessage, append(base,
			zap.Int64("user_id", data.UserID),
			zap.String("email", data.Email),
		)...)

	default:
		r.logger.Debug("ignoring event", base...)
	}
	return nil
}
