package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
)

type SnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error)
	// GetForTeam resolves a snapshot only when its canvas belongs to the team.
	GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Snapshot, error)
	ListByCanvas(ctx context.Context, tx *gorm.DB, canvasID uint, p listquery.Params) ([]*types.Snapshot, listquery.Pagination, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, canvasID uint) (int, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

func (sr *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (sr *snapshotRepo) GetForTeam(ctx context.Context, tx *gorm.DB, id, teamID uint) (*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var snapshot types.Snapshot
	err := transaction.WithContext(ctx).
		Joins("JOIN bmc_canvas ON bmc_canvas.id = bmc_canvas_snapshot.bmc_canvas_id").
		Where("bmc_canvas.team_id = ? AND bmc_canvas.deleted_at IS NULL", teamID).
		First(&snapshot, "bmc_canvas_snapshot.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (sr *snapshotRepo) ListByCanvas(ctx context.Context, tx *gorm.DB, canvasID uint, p listquery.Params) ([]*types.Snapshot, listquery.Pagination, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Snapshot{}).
		Where("bmc_canvas_id = ?", canvasID).
		Order("version DESC")

	var snapshots []*types.Snapshot
	pagination, err := listquery.Paginate(q, p, &snapshots)
	if err != nil {
		return nil, listquery.Pagination{}, err
	}
	return snapshots, pagination, nil
}

func (sr *snapshotRepo) MaxVersion(ctx context.Context, tx *gorm.DB, canvasID uint) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var max *int
	err := transaction.WithContext(ctx).
		Model(&types.Snapshot{}).
		Where("bmc_canvas_id = ?", canvasID).
		Select("MAX(version)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
