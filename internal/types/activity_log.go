package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog records every successful mutation against a team-owned entity.
// Write-only from the module's point of view; read paths live elsewhere.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	TeamID      uint           `gorm:"not null;index;column:team_id" json:"team_id"`
	UserID      uint           `gorm:"not null;index;column:user_id" json:"user_id"`
	SubjectType string         `gorm:"not null;index:idx_activity_subject;column:subject_type" json:"subject_type"`
	SubjectID   uint           `gorm:"not null;index:idx_activity_subject;column:subject_id" json:"subject_id"`
	Action      string         `gorm:"not null;column:action" json:"action"`
	Changes     datatypes.JSON `gorm:"column:changes;type:jsonb" json:"changes"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (ActivityLog) TableName() string { return "bmc_activity_log" }

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &ActivityLog{}, &a.UUID)
}
