package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/contextable"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/normalization"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/requestdata"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

const (
	subjectCanvas = "canvas"
)

type CanvasCreateInput struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	ContextableType *string `json:"contextable_type"`
	ContextableID   *uint   `json:"contextable_id"`
	TeamID          *uint   `json:"team_id"`
}

type CanvasUpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	TeamID      *uint   `json:"team_id"`
}

type CanvasListInput struct {
	Status string `json:"status"`
	TeamID *uint  `json:"team_id"`
	listquery.Params
}

// CanvasListItem pairs a canvas with its aggregate counts for list views.
type CanvasListItem struct {
	*types.Canvas
	BuildingBlocksCount int   `json:"building_blocks_count"`
	SnapshotsCount      int64 `json:"snapshots_count"`
}

type CanvasList struct {
	Canvases   []*CanvasListItem    `json:"canvases"`
	Pagination listquery.Pagination `json:"pagination"`
}

// CanvasDetail is the get view: the full canvas tree plus aggregate counts.
type CanvasDetail struct {
	*types.Canvas
	BuildingBlocksCount int   `json:"building_blocks_count"`
	SnapshotsCount      int64 `json:"snapshots_count"`
}

type CanvasService interface {
	Create(ctx context.Context, input CanvasCreateInput) (*types.Canvas, error)
	List(ctx context.Context, input CanvasListInput) (*CanvasList, error)
	Get(ctx context.Context, id uint, teamID *uint) (*CanvasDetail, error)
	Update(ctx context.Context, id uint, input CanvasUpdateInput) (*types.Canvas, error)
	Delete(ctx context.Context, id uint, teamID *uint) error
	Export(ctx context.Context, id uint, teamID *uint) (*types.CanvasSections, error)
}

type canvasService struct {
	db          *gorm.DB
	log         *logger.Logger
	canvasRepo  repos.CanvasRepo
	blockRepo   repos.BuildingBlockRepo
	authService AuthService
	activity    ActivityService
	cache       redis.CalcCache
}

func NewCanvasService(
	db *gorm.DB,
	log *logger.Logger,
	canvasRepo repos.CanvasRepo,
	blockRepo repos.BuildingBlockRepo,
	authService AuthService,
	activity ActivityService,
	cache redis.CalcCache,
) CanvasService {
	return &canvasService{
		db:          db,
		log:         log.With("service", "CanvasService"),
		canvasRepo:  canvasRepo,
		blockRepo:   blockRepo,
		authService: authService,
		activity:    activity,
		cache:       cache,
	}
}

// Create inserts the canvas together with all nine template blocks in one
// transaction. A canvas without its full block set never becomes visible.
func (cs *canvasService) Create(ctx context.Context, input CanvasCreateInput) (*types.Canvas, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	teamID, err := cs.authService.ResolveTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}

	name := normalization.TrimInput(input.Name)
	if name == "" {
		return nil, apierr.New(apierr.CodeValidation, "Canvas name is required")
	}
	status := types.CanvasStatusDraft
	if input.Status != nil && *input.Status != "" {
		if !types.ValidCanvasStatus(*input.Status) {
			return nil, apierr.Newf(apierr.CodeValidation, "Invalid status %q", *input.Status)
		}
		status = *input.Status
	}
	description := normalizeOptionalText(input.Description)

	if input.ContextableType != nil || input.ContextableID != nil {
		if input.ContextableType == nil || input.ContextableID == nil {
			return nil, apierr.New(apierr.CodeValidation, "contextable_type and contextable_id must be provided together")
		}
		if !contextable.IsValidKind(*input.ContextableType) {
			return nil, apierr.Newf(apierr.CodeValidation, "Unknown contextable type %q", *input.ContextableType)
		}
		exists, cErr := contextable.Exists(ctx, cs.db, *input.ContextableType, *input.ContextableID, teamID)
		if cErr != nil {
			return nil, apierr.Wrap(apierr.CodeExecution, "Failed to resolve contextable", cErr)
		}
		if !exists {
			return nil, apierr.New(apierr.CodeValidation, "Linked contextable record not found")
		}
	}

	canvas := &types.Canvas{
		TeamID:          teamID,
		Name:            name,
		Description:     description,
		Status:          status,
		ContextableType: input.ContextableType,
		ContextableID:   input.ContextableID,
		CreatedByID:     rd.UserID,
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, crErr := cs.canvasRepo.Create(ctx, tx, canvas); crErr != nil {
			return fmt.Errorf("create canvas: %w", crErr)
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
		if _, bErr := cs.blockRepo.CreateMany(ctx, tx, blocks); bErr != nil {
			return fmt.Errorf("create building blocks: %w", bErr)
		}
		canvas.Blocks = blocks
		cs.activity.Record(ctx, tx, subjectCanvas, canvas.ID, "created", map[string]interface{}{"name": canvas.Name, "status": canvas.Status})
		return nil
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to create canvas", err)
	}

	cs.log.Info("canvas created", "canvas_id", canvas.ID, "team_id", teamID)
	return canvas, nil
}

func (cs *canvasService) List(ctx context.Context, input CanvasListInput) (*CanvasList, error) {
	teamID, err := cs.authService.ResolveTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	if input.Status != "" && !types.ValidCanvasStatus(input.Status) {
		return nil, apierr.Newf(apierr.CodeValidation, "Invalid status %q", input.Status)
	}

	canvases, pagination, err := cs.canvasRepo.List(ctx, nil, repos.CanvasListFilter{
		TeamID: teamID,
		Status: input.Status,
		Params: input.Params,
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to list canvases", err)
	}

	ids := make([]uint, 0, len(canvases))
	for _, c := range canvases {
		ids = append(ids, c.ID)
	}
	counts, err := cs.canvasRepo.SnapshotCounts(ctx, nil, ids)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to count snapshots", err)
	}

	items := make([]*CanvasListItem, 0, len(canvases))
	for _, c := range canvases {
		items = append(items, &CanvasListItem{
			Canvas:              c,
			BuildingBlocksCount: len(c.Blocks),
			SnapshotsCount:      counts[c.ID],
		})
	}
	return &CanvasList{Canvases: items, Pagination: pagination}, nil
}

func (cs *canvasService) Get(ctx context.Context, id uint, teamID *uint) (*CanvasDetail, error) {
	effectiveTeam, err := cs.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	canvas, err := cs.canvasRepo.GetForTeamWithBlocks(ctx, nil, id, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}
	count, err := cs.canvasRepo.CountSnapshots(ctx, nil, canvas.ID)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to count snapshots", err)
	}
	return &CanvasDetail{
		Canvas:              canvas,
		BuildingBlocksCount: len(canvas.Blocks),
		SnapshotsCount:      count,
	}, nil
}

// Update resolves the canvas without a team filter so a cross-team id
// surfaces as access denied rather than not found.
func (cs *canvasService) Update(ctx context.Context, id uint, input CanvasUpdateInput) (*types.Canvas, error) {
	effectiveTeam, err := cs.authService.ResolveTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	canvas, err := cs.canvasRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}
	if canvas.TeamID != effectiveTeam {
		return nil, apierr.New(apierr.CodeAccessDenied, "You do not have access to this canvas")
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		name := normalization.TrimInput(*input.Name)
		if name == "" {
			return nil, apierr.New(apierr.CodeValidation, "Canvas name cannot be empty")
		}
		if name != canvas.Name {
			changes["name"] = name
			canvas.Name = name
		}
	}
	if input.Description != nil {
		desc := normalizeOptionalText(input.Description)
		changes["description"] = descriptionValue(desc)
		canvas.Description = desc
	}
	if input.Status != nil {
		if !types.ValidCanvasStatus(*input.Status) {
			return nil, apierr.Newf(apierr.CodeValidation, "Invalid status %q", *input.Status)
		}
		if *input.Status != canvas.Status {
			changes["status"] = *input.Status
			canvas.Status = *input.Status
		}
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sErr := cs.canvasRepo.Save(ctx, tx, canvas); sErr != nil {
			return sErr
		}
		cs.activity.Record(ctx, tx, subjectCanvas, canvas.ID, "updated", changes)
		return nil
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to update canvas", err)
	}

	cs.cache.Invalidate(ctx, canvas.ID)
	return canvas, nil
}

func (cs *canvasService) Delete(ctx context.Context, id uint, teamID *uint) error {
	effectiveTeam, err := cs.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return err
	}
	canvas, err := cs.canvasRepo.GetByID(ctx, nil, id)
	if err != nil {
		return apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return apierr.New(apierr.CodeNotFound, "Canvas not found")
	}
	if canvas.TeamID != effectiveTeam {
		return apierr.New(apierr.CodeAccessDenied, "You do not have access to this canvas")
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := cs.canvasRepo.SoftDelete(ctx, tx, canvas); dErr != nil {
			return dErr
		}
		cs.activity.Record(ctx, tx, subjectCanvas, canvas.ID, "deleted", map[string]interface{}{"name": canvas.Name})
		return nil
	})
	if err != nil {
		return apierr.Wrap(apierr.CodeExecution, "Failed to delete canvas", err)
	}

	cs.cache.Invalidate(ctx, canvas.ID)
	cs.log.Info("canvas deleted", "canvas_id", canvas.ID, "team_id", canvas.TeamID)
	return nil
}

// Export renders the document-oriented view: every template block becomes a
// section in template order whether or not it holds entries.
func (cs *canvasService) Export(ctx context.Context, id uint, teamID *uint) (*types.CanvasSections, error) {
	effectiveTeam, err := cs.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	canvas, err := cs.canvasRepo.GetForTeamWithBlocks(ctx, nil, id, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}

	blocksByType := make(map[string]*types.BuildingBlock, len(canvas.Blocks))
	for _, b := range canvas.Blocks {
		blocksByType[b.BlockType] = b
	}

	sections := make([]*types.CanvasSection, 0, templates.Count())
	totalEntries := 0
	filled := 0
	for _, def := range templates.All() {
		entries := []*types.EntryExport{}
		if b, ok := blocksByType[def.Type]; ok {
			entries = exportEntries(b.Entries)
		}
		if len(entries) > 0 {
			filled++
		}
		totalEntries += len(entries)
		sections = append(sections, &types.CanvasSection{
			BlockType:   def.Type,
			Label:       def.Label,
			Description: def.Description,
			Entries:     entries,
			EntryCount:  len(entries),
		})
	}

	return &types.CanvasSections{
		Canvas:   exportCanvasInfo(canvas),
		Sections: sections,
		Summary: types.ExportSummary{
			TotalEntries: totalEntries,
			FilledBlocks: filled,
			TotalBlocks:  templates.Count(),
		},
	}, nil
}

// BuildExport produces the persisted snapshot shape for a canvas loaded with
// blocks and entries. Blocks are keyed by block type.
func BuildExport(canvas *types.Canvas) *types.CanvasExport {
	blocks := make(map[string]*types.BlockExport, len(canvas.Blocks))
	for _, b := range canvas.Blocks {
		blocks[b.BlockType] = &types.BlockExport{
			ID:       b.ID,
			Label:    b.Label,
			Position: b.Position,
			Entries:  exportEntries(b.Entries),
		}
	}
	return &types.CanvasExport{
		Canvas: exportCanvasInfo(canvas),
		Blocks: blocks,
	}
}

func exportCanvasInfo(canvas *types.Canvas) types.CanvasExportInfo {
	return types.CanvasExportInfo{
		ID:          canvas.ID,
		UUID:        canvas.UUID.String(),
		Name:        canvas.Name,
		Description: canvas.Description,
		Status:      canvas.Status,
		TeamID:      canvas.TeamID,
		CreatedAt:   canvas.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   canvas.UpdatedAt.Format(time.RFC3339),
	}
}

func exportEntries(entries []*types.Entry) []*types.EntryExport {
	out := make([]*types.EntryExport, 0, len(entries))
	for _, e := range entries {
		var meta map[string]interface{}
		if len(e.Metadata) > 0 {
			if err := json.Unmarshal(e.Metadata, &meta); err != nil {
				meta = nil
			}
		}
		out = append(out, &types.EntryExport{
			ID:       e.ID,
			UUID:     e.UUID.String(),
			Title:    e.Title,
			Content:  e.Content,
			Position: e.Position,
			Metadata: meta,
		})
	}
	return out
}

// normalizeOptionalText trims an optional field and maps an empty result to
// null.
func normalizeOptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := normalization.TrimInput(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func descriptionValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
