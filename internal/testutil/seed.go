package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/requestdata"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

// Ctx returns a context carrying request data for the given user and team,
// the way the auth middleware would after token validation.
func Ctx(userID, teamID uint) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenString: "test-token",
		UserID:      userID,
		TeamID:      teamID,
	})
}

var seedSeq int

func nextSeq() int {
	seedSeq++
	return seedSeq
}

func SeedTeam(t *testing.T, tx *gorm.DB, name string) *types.Team {
	t.Helper()
	team := &types.Team{Name: name}
	if err := tx.Create(team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	return team
}

func SeedUser(t *testing.T, tx *gorm.DB, teamID uint) *types.User {
	t.Helper()
	n := nextSeq()
	user := &types.User{
		Email:         fmt.Sprintf("user%d@example.com", n),
		Password:      "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Name:          fmt.Sprintf("User %d", n),
		CurrentTeamID: teamID,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	member := &types.TeamMember{TeamID: teamID, UserID: user.ID}
	if err := tx.Create(member).Error; err != nil {
		t.Fatalf("seed team member: %v", err)
	}
	return user
}

// SeedMembership joins an existing user to an additional team.
func SeedMembership(t *testing.T, tx *gorm.DB, userID, teamID uint) {
	t.Helper()
	member := &types.TeamMember{TeamID: teamID, UserID: userID}
	if err := tx.Create(member).Error; err != nil {
		t.Fatalf("seed team member: %v", err)
	}
}

// SeedCanvas creates a canvas with its nine template blocks, mirroring what
// canvas creation does in production.
func SeedCanvas(t *testing.T, tx *gorm.DB, teamID, userID uint, name string) *types.Canvas {
	t.Helper()
	canvas := &types.Canvas{
		TeamID:      teamID,
		Name:        name,
		Status:      types.CanvasStatusDraft,
		CreatedByID: userID,
	}
	if err := tx.Create(canvas).Error; err != nil {
		t.Fatalf("seed canvas: %v", err)
	}
	blocks := make([]*types.BuildingBlock, 0, templates.Count())
	for _, def := range templates.All() {
		blocks = append(blocks, &types.BuildingBlock{
			CanvasID:  canvas.ID,
			BlockType: def.Type,
			Label:     def.Label,
			Position:  def.Position,
		})
	}
	if err := tx.Create(&blocks).Error; err != nil {
		t.Fatalf("seed building blocks: %v", err)
	}
	canvas.Blocks = blocks
	return canvas
}

// Block returns the seeded canvas's block of the given type.
func Block(t *testing.T, canvas *types.Canvas, blockType string) *types.BuildingBlock {
	t.Helper()
	for _, b := range canvas.Blocks {
		if b.BlockType == blockType {
			return b
		}
	}
	t.Fatalf("canvas %d has no block of type %q", canvas.ID, blockType)
	return nil
}

func SeedEntry(t *testing.T, tx *gorm.DB, blockID, userID uint, title string, position int) *types.Entry {
	t.Helper()
	entry := &types.Entry{
		BlockID:     blockID,
		Title:       title,
		Position:    position,
		CreatedByID: userID,
	}
	if err := tx.Create(entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}
