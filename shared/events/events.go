package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	UserEmailUpdated = "user.email_updated"
	UserRoleUpdated  = "user.role_updated"
	UserDeleted      = "user.deleted"
)

const UserEventsStream = "user.events"

// Event is the envelope written to a stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserEmailUpdatedEvent struct {
	UserID   int64  `json:"userId"`
	OldEmail string `json:"oldEmail"`
	NewEmail string `json:"newEmail"`
}

type UserRoleUpdatedEvent struct {
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
	UpdatedBy int64  `json:"updatedBy"`
}

type UserDeletedEvent struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// DecodeData converts the generic Data of a decoded event into v.
func (e Event) DecodeData(v any) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", e.Type, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", e.Type, err)
	}
	return nil
}
