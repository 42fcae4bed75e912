package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
)

type BuildingBlockRepo interface {
	// CreateMany inserts all blocks in one statement; callers wrap it in a
	// transaction so canvas initialization is all-or-nothing.
	CreateMany(ctx context.Context, tx *gorm.DB, blocks []*types.BuildingBlock) ([]*types.BuildingBlock, error)
	// GetForTeam resolves a block only when its owning canvas belongs to the
	// team; anything else reads as missing.
	GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.BuildingBlock, error)
	ListByCanvas(ctx context.Context, tx *gorm.DB, canvasID uint) ([]*types.BuildingBlock, error)
}

type buildingBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBuildingBlockRepo(db *gorm.DB, baseLog *logger.Logger) BuildingBlockRepo {
	return &buildingBlockRepo{db: db, log: baseLog.With("repo", "BuildingBlockRepo")}
}

func (br *buildingBlockRepo) CreateMany(ctx context.Context, tx *gorm.DB, blocks []*types.BuildingBlock) ([]*types.BuildingBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if len(blocks) == 0 {
		return []*types.BuildingBlock{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (br *buildingBlockRepo) GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.BuildingBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var block types.BuildingBlock
	err := transaction.WithContext(ctx).
		Joins("JOIN bmc_canvas ON bmc_canvas.id = bmc_building_block.bmc_canvas_id").
		Where("bmc_canvas.team_id = ? AND bmc_canvas.deleted_at IS NULL", teamID).
		First(&block, "bmc_building_block.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (br *buildingBlockRepo) ListByCanvas(ctx context.Context, tx *gorm.DB, canvasID uint) ([]*types.BuildingBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var blocks []*types.BuildingBlock
	err := transaction.WithContext(ctx).
		Where("bmc_canvas_id = ?", canvasID).
		Order("position ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
