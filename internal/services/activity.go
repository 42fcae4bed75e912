package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/requestdata"
	"github.com/yungbote/bmc-backend/internal/types"
)

// ActivityService records audit trail rows for canvas mutations. Recording
// is best effort: a failed log write is reported but never fails the
// mutation it describes.
type ActivityService interface {
	Record(ctx context.Context, tx *gorm.DB, subjectType string, subjectID uint, action string, changes map[string]interface{})
}

type activityService struct {
	db      *gorm.DB
	log     *logger.Logger
	logRepo repos.ActivityLogRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, logRepo repos.ActivityLogRepo) ActivityService {
	return &activityService{
		db:      db,
		log:     log.With("service", "ActivityService"),
		logRepo: logRepo,
	}
}

func (as *activityService) Record(ctx context.Context, tx *gorm.DB, subjectType string, subjectID uint, action string, changes map[string]interface{}) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return
	}

	var raw []byte
	if len(changes) > 0 {
		var err error
		raw, err = json.Marshal(changes)
		if err != nil {
			as.log.Warn("activity changes marshal failed", "action", action, "error", err)
			raw = nil
		}
	}

	record := &types.ActivityLog{
		TeamID:      rd.TeamID,
		UserID:      rd.UserID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Action:      action,
		Changes:     datatypes.JSON(raw),
	}
	if _, err := as.logRepo.Create(ctx, tx, record); err != nil {
		as.log.Warn("activity record failed", "action", action, "subject_type", subjectType, "subject_id", subjectID, "error", err)
	}
}
