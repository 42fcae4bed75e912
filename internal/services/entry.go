package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/normalization"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/requestdata"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

const (
	subjectEntry = "entry"
)

type EntryCreateInput struct {
	BlockID  uint                   `json:"block_id"`
	Title    string                 `json:"title"`
	Content  *string                `json:"content"`
	Position *int                   `json:"position"`
	Metadata map[string]interface{} `json:"metadata"`
	TeamID   *uint                  `json:"team_id"`
}

// EntryItem is one row of a bulk create; block and position handling follow
// the single-create path. Items without a position land after the block's
// running maximum.
type EntryItem struct {
	Title    string                 `json:"title"`
	Content  *string                `json:"content"`
	Position *int                   `json:"position"`
	Metadata map[string]interface{} `json:"metadata"`
}

type EntryUpdateInput struct {
	Title    *string                `json:"title"`
	Content  *string                `json:"content"`
	Position *int                   `json:"position"`
	Metadata map[string]interface{} `json:"metadata"`
	TeamID   *uint                  `json:"team_id"`
}

type EntryListInput struct {
	BlockID   *uint  `json:"block_id"`
	CanvasID  *uint  `json:"canvas_id"`
	BlockType string `json:"block_type"`
	TeamID    *uint  `json:"team_id"`
	listquery.Params
}

type EntryList struct {
	Entries    []*types.Entry       `json:"entries"`
	Pagination listquery.Pagination `json:"pagination"`
}

type EntryService interface {
	Create(ctx context.Context, input EntryCreateInput) (*types.Entry, error)
	BulkCreate(ctx context.Context, blockID uint, items []EntryItem, teamID *uint) ([]*types.Entry, error)
	Update(ctx context.Context, id uint, input EntryUpdateInput) (*types.Entry, error)
	Delete(ctx context.Context, id uint, teamID *uint) error
	Reorder(ctx context.Context, blockID uint, entryIDs []uint, teamID *uint) error
	List(ctx context.Context, input EntryListInput) (*EntryList, error)
}

type entryService struct {
	db          *gorm.DB
	log         *logger.Logger
	entryRepo   repos.EntryRepo
	blockRepo   repos.BuildingBlockRepo
	canvasRepo  repos.CanvasRepo
	authService AuthService
	activity    ActivityService
	cache       redis.CalcCache
}

func NewEntryService(
	db *gorm.DB,
	log *logger.Logger,
	entryRepo repos.EntryRepo,
	blockRepo repos.BuildingBlockRepo,
	canvasRepo repos.CanvasRepo,
	authService AuthService,
	activity ActivityService,
	cache redis.CalcCache,
) EntryService {
	return &entryService{
		db:          db,
		log:         log.With("service", "EntryService"),
		entryRepo:   entryRepo,
		blockRepo:   blockRepo,
		canvasRepo:  canvasRepo,
		authService: authService,
		activity:    activity,
		cache:       cache,
	}
}

// Create appends an entry to a block. When no position is given the entry
// lands after the block's current maximum.
func (es *entryService) Create(ctx context.Context, input EntryCreateInput) (*types.Entry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	effectiveTeam, err := es.authService.ResolveTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}

	block, err := es.blockRepo.GetForTeam(ctx, nil, input.BlockID, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load building block", err)
	}
	if block == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Building block not found")
	}

	title := normalization.TrimInput(input.Title)
	if title == "" {
		return nil, apierr.New(apierr.CodeValidation, "Entry title is required")
	}
	metadata, err := marshalMetadata(input.Metadata)
	if err != nil {
		return nil, err
	}

	entry := &types.Entry{
		BlockID:     block.ID,
		Title:       title,
		Content:     normalizeOptionalText(input.Content),
		Metadata:    metadata,
		CreatedByID: rd.UserID,
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Position != nil {
			entry.Position = *input.Position
		} else {
			max, mErr := es.entryRepo.MaxPosition(ctx, tx, block.ID)
			if mErr != nil {
				return fmt.Errorf("max position: %w", mErr)
			}
			entry.Position = max + 1
		}
		if _, cErr := es.entryRepo.Create(ctx, tx, entry); cErr != nil {
			return cErr
		}
		es.activity.Record(ctx, tx, subjectEntry, entry.ID, "created", map[string]interface{}{"title": entry.Title, "block_id": block.ID})
		return nil
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to create entry", err)
	}

	es.cache.Invalidate(ctx, block.CanvasID)
	return entry, nil
}

// BulkCreate inserts all items in one transaction. Items without an explicit
// position are placed sequentially after the block's current maximum. All
// rows land or none do.
func (es *entryService) BulkCreate(ctx context.Context, blockID uint, items []EntryItem, teamID *uint) ([]*types.Entry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	effectiveTeam, err := es.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apierr.New(apierr.CodeValidation, "At least one entry is required")
	}

	block, err := es.blockRepo.GetForTeam(ctx, nil, blockID, effectiveTeam)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load building block", err)
	}
	if block == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Building block not found")
	}

	entries := make([]*types.Entry, 0, len(items))
	for i, item := range items {
		title := normalization.TrimInput(item.Title)
		if title == "" {
			return nil, apierr.Newf(apierr.CodeValidation, "Entry %d: title is required", i+1)
		}
		metadata, mErr := marshalMetadata(item.Metadata)
		if mErr != nil {
			return nil, mErr
		}
		entries = append(entries, &types.Entry{
			BlockID:     block.ID,
			Title:       title,
			Content:     normalizeOptionalText(item.Content),
			Metadata:    metadata,
			CreatedByID: rd.UserID,
		})
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, mErr := es.entryRepo.MaxPosition(ctx, tx, block.ID)
		if mErr != nil {
			return fmt.Errorf("max position: %w", mErr)
		}
		for i, e := range entries {
			if items[i].Position != nil {
				e.Position = *items[i].Position
				continue
			}
			next++
			e.Position = next
		}
		if _, cErr := es.entryRepo.CreateMany(ctx, tx, entries); cErr != nil {
			return cErr
		}
		es.activity.Record(ctx, tx, subjectEntry, block.ID, "bulk_created", map[string]interface{}{"count": len(entries), "block_id": block.ID})
		return nil
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to create entries", err)
	}

	es.cache.Invalidate(ctx, block.CanvasID)
	return entries, nil
}

func (es *entryService) Update(ctx context.Context, id uint, input EntryUpdateInput) (*types.Entry, error) {
	entry, err := es.resolveOwned(ctx, id, input.TeamID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Title != nil {
		title := normalization.TrimInput(*input.Title)
		if title == "" {
			return nil, apierr.New(apierr.CodeValidation, "Entry title cannot be empty")
		}
		if title != entry.Title {
			changes["title"] = title
			entry.Title = title
		}
	}
	if input.Content != nil {
		content := normalizeOptionalText(input.Content)
		changes["content"] = descriptionValue(content)
		entry.Content = content
	}
	if input.Position != nil && *input.Position != entry.Position {
		changes["position"] = *input.Position
		entry.Position = *input.Position
	}
	if input.Metadata != nil {
		metadata, mErr := marshalMetadata(input.Metadata)
		if mErr != nil {
			return nil, mErr
		}
		changes["metadata"] = input.Metadata
		entry.Metadata = metadata
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sErr := es.entryRepo.Save(ctx, tx, entry); sErr != nil {
			return sErr
		}
		es.activity.Record(ctx, tx, subjectEntry, entry.ID, "updated", changes)
		return nil
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to update entry", err)
	}

	if entry.Block != nil {
		es.cache.Invalidate(ctx, entry.Block.CanvasID)
	}
	return entry, nil
}

func (es *entryService) Delete(ctx context.Context, id uint, teamID *uint) error {
	entry, err := es.resolveOwned(ctx, id, teamID)
	if err != nil {
		return err
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := es.entryRepo.SoftDelete(ctx, tx, entry); dErr != nil {
			return dErr
		}
		es.activity.Record(ctx, tx, subjectEntry, entry.ID, "deleted", map[string]interface{}{"title": entry.Title})
		return nil
	})
	if err != nil {
		return apierr.Wrap(apierr.CodeExecution, "Failed to delete entry", err)
	}

	if entry.Block != nil {
		es.cache.Invalidate(ctx, entry.Block.CanvasID)
	}
	return nil
}

// Reorder rewrites positions 1..N in the order given. Positions are written
// per entry id without re-checking block membership of each id; ids from
// other blocks get repositioned within their own block.
func (es *entryService) Reorder(ctx context.Context, blockID uint, entryIDs []uint, teamID *uint) error {
	effectiveTeam, err := es.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if len(entryIDs) == 0 {
		return apierr.New(apierr.CodeValidation, "entry_ids is required")
	}

	block, err := es.blockRepo.GetForTeam(ctx, nil, blockID, effectiveTeam)
	if err != nil {
		return apierr.Wrap(apierr.CodeExecution, "Failed to load building block", err)
	}
	if block == nil {
		return apierr.New(apierr.CodeNotFound, "Building block not found")
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, entryID := range entryIDs {
			if uErr := es.entryRepo.UpdatePosition(ctx, tx, entryID, i+1); uErr != nil {
				return fmt.Errorf("reorder entry %d: %w", entryID, uErr)
			}
		}
		es.activity.Record(ctx, tx, subjectEntry, block.ID, "reordered", map[string]interface{}{"count": len(entryIDs), "block_id": block.ID})
		return nil
	})
	if err != nil {
		return apierr.Wrap(apierr.CodeExecution, "Failed to reorder entries", err)
	}

	es.cache.Invalidate(ctx, block.CanvasID)
	return nil
}

func (es *entryService) List(ctx context.Context, input EntryListInput) (*EntryList, error) {
	effectiveTeam, err := es.authService.ResolveTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	if input.BlockID == nil && input.CanvasID == nil {
		return nil, apierr.New(apierr.CodeValidation, "block_id or canvas_id is required")
	}
	if input.BlockType != "" && !templates.IsValidType(input.BlockType) {
		return nil, apierr.Newf(apierr.CodeValidation, "Unknown block type %q", input.BlockType)
	}

	filter := repos.EntryListFilter{BlockType: input.BlockType, Params: input.Params}
	if input.BlockID != nil {
		block, err := es.blockRepo.GetForTeam(ctx, nil, *input.BlockID, effectiveTeam)
		if err != nil {
			return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load building block", err)
		}
		if block == nil {
			return nil, apierr.New(apierr.CodeNotFound, "Building block not found")
		}
		filter.BlockID = block.ID
	} else {
		canvas, err := es.canvasRepo.GetForTeam(ctx, nil, *input.CanvasID, effectiveTeam)
		if err != nil {
			return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load canvas", err)
		}
		if canvas == nil {
			return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
		}
		filter.CanvasID = canvas.ID
	}

	entries, pagination, err := es.entryRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to list entries", err)
	}
	return &EntryList{Entries: entries, Pagination: pagination}, nil
}

// resolveOwned loads an entry by id and enforces team ownership through the
// preloaded canvas. A soft deleted canvas reads as not found.
func (es *entryService) resolveOwned(ctx context.Context, id uint, teamID *uint) (*types.Entry, error) {
	effectiveTeam, err := es.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	entry, err := es.entryRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeExecution, "Failed to load entry", err)
	}
	if entry == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Entry not found")
	}
	if entry.Block == nil || entry.Block.Canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Entry not found")
	}
	if entry.Block.Canvas.TeamID != effectiveTeam {
		return nil, apierr.New(apierr.CodeAccessDenied, "You do not have access to this entry")
	}
	return entry, nil
}

func marshalMetadata(metadata map[string]interface{}) (datatypes.JSON, error) {
	if metadata == nil {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeValidation, "Invalid metadata", err)
	}
	return datatypes.JSON(raw), nil
}
