package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

// Notification stores in-app notification payloads produced by the
// negotiation event consumer. RecipientUserID is the buyer or the shop owner
// the message targets.
type Notification struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientUserID uuid.UUID              `gorm:"column:recipient_user_id;type:uuid;not null;index"`
	Type            enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title           string                 `gorm:"column:title;type:text;not null"`
	Message         string                 `gorm:"column:message;type:text;not null"`
	Link            *string                `gorm:"column:link;type:text"`
	ReadAt          *time.Time             `gorm:"column:read_at;type:timestamptz"`
	CreatedAt       time.Time              `gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

// TableName pins the table name.
func (Notification) TableName() string {
	return "notifications"
}
