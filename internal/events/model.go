package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// NotificationEvent is a row in the transactional outbox. Rows are written
// inside the mutating transaction and picked up later by the notifier worker.
type NotificationEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_notification_events_dedupe" json:"tenant_id"`
	EventType   string            `gorm:"type:text;not null" json:"event_type"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb" json:"payload"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex:ux_notification_events_dedupe" json:"dedupe_key,omitempty"`
	Published   bool              `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (NotificationEvent) TableName() string { return "notification_events" }
