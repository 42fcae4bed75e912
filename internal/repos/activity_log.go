package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
)

type ActivityLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.ActivityLog) (*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (ar *activityLogRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ActivityLog) (*types.ActivityLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
