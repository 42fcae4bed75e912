package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
)

type CanvasListFilter struct {
	TeamID uint
	Status string
	Params listquery.Params
}

type CanvasRepo interface {
	Create(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) (*types.Canvas, error)
	// GetByID looks a canvas up by primary key with no team filter. Callers
	// own the team check and the access-denied outcome.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Canvas, error)
	// GetForTeam scopes by team so a foreign canvas is indistinguishable from
	// a missing one.
	GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Canvas, error)
	GetForTeamWithBlocks(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Canvas, error)
	List(ctx context.Context, tx *gorm.DB, filter CanvasListFilter) ([]*types.Canvas, listquery.Pagination, error)
	Save(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) error
	SoftDelete(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) error
	CountSnapshots(ctx context.Context, tx *gorm.DB, canvasID uint) (int64, error)
	SnapshotCounts(ctx context.Context, tx *gorm.DB, canvasIDs []uint) (map[uint]int64, error)
}

type canvasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCanvasRepo(db *gorm.DB, baseLog *logger.Logger) CanvasRepo {
	return &canvasRepo{db: db, log: baseLog.With("repo", "CanvasRepo")}
}

func (cr *canvasRepo) Create(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) (*types.Canvas, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(canvas).Error; err != nil {
		return nil, err
	}
	return canvas, nil
}

func (cr *canvasRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Canvas, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var canvas types.Canvas
	err := transaction.WithContext(ctx).First(&canvas, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &canvas, nil
}

func (cr *canvasRepo) GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Canvas, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var canvas types.Canvas
	err := transaction.WithContext(ctx).
		Where("team_id = ?", teamID).
		First(&canvas, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &canvas, nil
}

func (cr *canvasRepo) GetForTeamWithBlocks(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Canvas, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var canvas types.Canvas
	err := transaction.WithContext(ctx).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Blocks.Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("team_id = ?", teamID).
		First(&canvas, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &canvas, nil
}

func (cr *canvasRepo) List(ctx context.Context, tx *gorm.DB, filter CanvasListFilter) ([]*types.Canvas, listquery.Pagination, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Canvas{}).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("team_id = ?", filter.TeamID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = listquery.ApplySearch(q, filter.Params, []string{"name", "description"})
	q = listquery.ApplySort(q, filter.Params, []string{"name", "status", "created_at", "updated_at"}, "created_at", "desc")

	var canvases []*types.Canvas
	pagination, err := listquery.Paginate(q, filter.Params, &canvases)
	if err != nil {
		return nil, listquery.Pagination{}, err
	}
	return canvases, pagination, nil
}

func (cr *canvasRepo) Save(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Omit(clause.Associations).Save(canvas).Error
}

func (cr *canvasRepo) SoftDelete(ctx context.Context, tx *gorm.DB, canvas *types.Canvas) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Delete(canvas).Error
}

func (cr *canvasRepo) CountSnapshots(ctx context.Context, tx *gorm.DB, canvasID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Snapshot{}).
		Where("bmc_canvas_id = ?", canvasID).
		Count(&count).Error
	return count, err
}

func (cr *canvasRepo) SnapshotCounts(ctx context.Context, tx *gorm.DB, canvasIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(canvasIDs))
	if len(canvasIDs) == 0 {
		return counts, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var rows []struct {
		CanvasID uint
		Total    int64
	}
	err := transaction.WithContext(ctx).
		Model(&types.Snapshot{}).
		Select("bmc_canvas_id AS canvas_id, COUNT(*) AS total").
		Where("bmc_canvas_id IN ?", canvasIDs).
		Group("bmc_canvas_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.CanvasID] = r.Total
	}
	return counts, nil
}
