package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Email         string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string    `gorm:"not null;column:password" json:"-"`
	Name          string    `gorm:"not null;column:name" json:"name"`
	CurrentTeamID uint      `gorm:"column:current_team_id;index" json:"current_team_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &User{}, &u.UUID)
}

type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Team) TableName() string {
	return "team"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	return assignUUID(tx, &Team{}, &t.UUID)
}

type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_team_member;column:team_id" json:"team_id"`
	Team      *Team     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeamID;references:ID" json:"team,omitempty"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_team_member;column:user_id" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TeamMember) TableName() string {
	return "team_member"
}
