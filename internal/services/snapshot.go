package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/requestdata"
	"github.com/yungbote/bmc-backend/internal/types"
)

const (
	subjectSnapshot = "snapshot"

	// snapshotCreateAttempts bounds the retry loop for version races: two
	// concurrent creators can both read the same max version, and the
	// (canvas_id, version) unique index rejects the loser.
	snapshotCreateAttempts = 3
)

type SnapshotList struct {
	Snapshots  []*types.Snapshot    `json:"snapshots"`
	Pagination listquery.Pagination `json:"pagination"`
}

type SnapshotService interface {
	Create(ctx context.Context, canvasID uint, teamID *uint) (*types.Snapshot, error)
	List(ctx context.Context, canvasID uint, teamID *uint, p listquery.Params) (*SnapshotList, error)
	Get(ctx context.Context, id uint, teamID *uint) (*types.Snapshot, error)
	Compare(ctx context.Context, snapshotAID, snapshotBID uint, teamID *uint) (*types.SnapshotDiff, error)
}

type snapshotService struct {
	db           *gorm.DB
	log          *logger.Logger
	snapshotRepo repos.SnapshotRepo
	canvasRepo   repos.CanvasRepo
	authService  AuthService
	activity     ActivityService
}

func NewSnapshotService(
	db *gorm.DB,
	log *logger.Logger,
	snapshotRepo repos.SnapshotRepo,
	canvasRepo repos.CanvasRepo,
	authService AuthService,
	activity ActivityService,
) SnapshotService {
	return &snapshotService{
		db:           db,
		log:          log.With("service", "SnapshotService"),
		snapshotRepo: snapshotRepo,
		canvasRepo:   canvasRepo,
		authService:  authService,
		activity:     activity,
	}
}

// Create persists the canvas's current export as the next version. Version
// assignment races are resolved by retrying against the unique index.
func (ss *snapshotService) Create(ctx context.Context, canvasID uint, teamID *uint) (*types.Snapshot, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	effectiveTeam, err := ss.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	canvas, err := ss.canvasRepo.GetForTeamWithBlocks(ctx, nil, canvasID, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}

	raw, err := json.Marshal(BuildExport(canvas))
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to encode snapshot", err)
	}

	var snapshot *types.Snapshot
	for attempt := 0; attempt < snapshotCreateAttempts; attempt++ {
		snapshot = &types.Snapshot{
			CanvasID:     canvas.ID,
			SnapshotData: datatypes.JSON(raw),
			CreatedByID:  rd.UserID,
		}
		err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			max, mErr := ss.snapshotRepo.MaxVersion(ctx, tx, canvas.ID)
			if mErr != nil {
				return mErr
			}
			snapshot.Version = max + 1
			if _, cErr := ss.snapshotRepo.Create(ctx, tx, snapshot); cErr != nil {
				return cErr
			}
			ss.activity.Record(ctx, tx, subjectSnapshot, snapshot.ID, "created", map[string]interface{}{"canvas_id": canvas.ID, "version": snapshot.Version})
			return nil
		})
		if err == nil {
			ss.log.Info("snapshot created", "canvas_id", canvas.ID, "version", snapshot.Version)
			return snapshot, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		ss.log.Warn("snapshot version race, retrying", "canvas_id", canvas.ID, "attempt", attempt+1)
	}
	return nil, apierr.Wrap(apierr.CodeExecution, "Failed to create snapshot", err)
}

func (ss *snapshotService) List(ctx context.Context, canvasID uint, teamID *uint, p listquery.Params) (*SnapshotList, error) {
	effectiveTeam, err := ss.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	canvas, err := ss.canvasRepo.GetForTeam(ctx, nil, canvasID, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}
	snapshots, pagination, err := ss.snapshotRepo.ListByCanvas(ctx, nil, canvas.ID, p)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to list snapshots", err)
	}
	return &SnapshotList{Snapshots: snapshots, Pagination: pagination}, nil
}

func (ss *snapshotService) Get(ctx context.Context, id uint, teamID *uint) (*types.Snapshot, error) {
	effectiveTeam, err := ss.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	snapshot, err := ss.snapshotRepo.GetForTeam(ctx, nil, id, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load snapshot", err)
	}
	if snapshot == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Snapshot not found")
	}
	return snapshot, nil
}

// Compare diffs two snapshots of the same canvas, A as the baseline and B
// as the later state.
func (ss *snapshotService) Compare(ctx context.Context, snapshotAID, snapshotBID uint, teamID *uint) (*types.SnapshotDiff, error) {
	snapA, err := ss.Get(ctx, snapshotAID, teamID)
	if err != nil {
		return nil, err
	}
	snapB, err := ss.Get(ctx, snapshotBID, teamID)
	if err != nil {
		return nil, err
	}
	if snapA.CanvasID != snapB.CanvasID {
		return nil, apierr.New(apierr.CodeValidation, "Snapshots belong to different canvases")
	}

	exportA, err := decodeExport(snapA)
	if err != nil {
		return nil, err
	}
	exportB, err := decodeExport(snapB)
	if err != nil {
		return nil, err
	}

	return CompareExports(exportA, exportB, snapshotRef(snapA), snapshotRef(snapB)), nil
}

func decodeExport(snapshot *types.Snapshot) (*types.CanvasExport, error) {
	var export types.CanvasExport
	if err := json.Unmarshal(snapshot.SnapshotData, &export); err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Corrupt snapshot data", err)
	}
	return &export, nil
}

func snapshotRef(snapshot *types.Snapshot) types.SnapshotRef {
	return types.SnapshotRef{
		Version:   snapshot.Version,
		CreatedAt: snapshot.CreatedAt.Format(time.RFC3339),
	}
}
