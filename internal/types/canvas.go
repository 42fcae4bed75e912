package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CanvasStatusDraft    = "draft"
	CanvasStatusActive   = "active"
	CanvasStatusArchived = "archived"
)

// ValidCanvasStatus reports whether s is one of the three canvas statuses.
// Status is a flat enum, not a guarded transition graph.
func ValidCanvasStatus(s string) bool {
	switch s {
	case CanvasStatusDraft, CanvasStatusActive, CanvasStatusArchived:
		return true
	default:
		return false
	}
}

type Canvas struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	TeamID          uint             `gorm:"not null;index:idx_canvas_team_status;column:team_id" json:"team_id"`
	Team            *Team            `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeamID;references:ID" json:"team,omitempty"`
	Name            string           `gorm:"not null;column:name" json:"name"`
	Description     *string          `gorm:"column:description" json:"description"`
	Status          string           `gorm:"not null;default:'draft';index:idx_canvas_team_status;column:status" json:"status"`
	ContextableType *string          `gorm:"column:contextable_type;index:idx_canvas_contextable" json:"contextable_type,omitempty"`
	ContextableID   *uint            `gorm:"column:contextable_id;index:idx_canvas_contextable" json:"contextable_id,omitempty"`
	CreatedByID     uint             `gorm:"not null;column:created_by_user_id" json:"created_by_user_id"`
	CreatedBy       *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:CreatedByID;references:ID" json:"created_by,omitempty"`
	Blocks          []*BuildingBlock `gorm:"foreignKey:CanvasID" json:"blocks,omitempty"`
	Snapshots       []*Snapshot      `gorm:"foreignKey:CanvasID" json:"snapshots,omitempty"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (Canvas) TableName() string { return "bmc_canvas" }

func (c *Canvas) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &Canvas{}, &c.UUID)
}

type BuildingBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CanvasID  uint      `gorm:"not null;index:idx_block_canvas_type;column:bmc_canvas_id" json:"canvas_id"`
	Canvas    *Canvas   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CanvasID;references:ID" json:"canvas,omitempty"`
	BlockType string    `gorm:"not null;index:idx_block_canvas_type;column:block_type" json:"block_type"`
	Label     string    `gorm:"not null;column:label" json:"label"`
	Position  int       `gorm:"not null;default:0;column:position" json:"position"`
	Entries   []*Entry  `gorm:"foreignKey:BlockID" json:"entries,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (BuildingBlock) TableName() string { return "bmc_building_block" }

func (b *BuildingBlock) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &BuildingBlock{}, &b.UUID)
}

type Entry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	BlockID     uint           `gorm:"not null;index:idx_entry_block_position;column:bmc_building_block_id" json:"building_block_id"`
	Block       *BuildingBlock `gorm:"constraint:OnDelete:CASCADE;foreignKey:BlockID;references:ID" json:"building_block,omitempty"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Content     *string        `gorm:"column:content" json:"content"`
	Position    int            `gorm:"not null;default:0;index:idx_entry_block_position;column:position" json:"position"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedByID uint           `gorm:"not null;column:created_by_user_id" json:"created_by_user_id"`
	CreatedBy   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CreatedByID;references:ID" json:"created_by,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Entry) TableName() string { return "bmc_entry" }

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &Entry{}, &e.UUID)
}

type Snapshot struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CanvasID     uint           `gorm:"not null;uniqueIndex:idx_snapshot_canvas_version;column:bmc_canvas_id" json:"canvas_id"`
	Canvas       *Canvas        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CanvasID;references:ID" json:"canvas,omitempty"`
	Version      int            `gorm:"not null;uniqueIndex:idx_snapshot_canvas_version;column:version" json:"version"`
	SnapshotData datatypes.JSON `gorm:"not null;column:snapshot_data;type:jsonb" json:"snapshot_data"`
	CreatedByID  uint           `gorm:"not null;column:created_by_user_id" json:"created_by_user_id"`
	CreatedBy    *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CreatedByID;references:ID" json:"created_by,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (Snapshot) TableName() string { return "bmc_canvas_snapshot" }

func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &Snapshot{}, &s.UUID)
}
