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

type EntryListFilter struct {
	BlockID   uint
	CanvasID  uint
	BlockType string
	Params    listquery.Params
}

type EntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.Entry) (*types.Entry, error)
	CreateMany(ctx context.Context, tx *gorm.DB, entries []*types.Entry) ([]*types.Entry, error)
	// GetByID is the raw primary-key lookup with the owning block and canvas
	// preloaded; team checks happen in the caller.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Entry, error)
	List(ctx context.Context, tx *gorm.DB, filter EntryListFilter) ([]*types.Entry, listquery.Pagination, error)
	MaxPosition(ctx context.Context, tx *gorm.DB, blockID uint) (int, error)
	Save(ctx context.Context, tx *gorm.DB, entry *types.Entry) error
	SoftDelete(ctx context.Context, tx *gorm.DB, entry *types.Entry) error
	UpdatePosition(ctx context.Context, tx *gorm.DB, entryID uint, position int) error
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (er *entryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.Entry) (*types.Entry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (er *entryRepo) CreateMany(ctx context.Context, tx *gorm.DB, entries []*types.Entry) ([]*types.Entry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(entries) == 0 {
		return []*types.Entry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (er *entryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Entry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var entry types.Entry
	err := transaction.WithContext(ctx).
		Preload("Block").
		Preload("Block.Canvas").
		First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (er *entryRepo) List(ctx context.Context, tx *gorm.DB, filter EntryListFilter) ([]*types.Entry, listquery.Pagination, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Entry{}).
		Preload("Block")
	if filter.BlockID != 0 {
		q = q.Where("bmc_building_block_id = ?", filter.BlockID)
	} else {
		sub := transaction.WithContext(ctx).
			Model(&types.BuildingBlock{}).
			Select("id").
			Where("bmc_canvas_id = ?", filter.CanvasID)
		if filter.BlockType != "" {
			sub = sub.Where("block_type = ?", filter.BlockType)
		}
		q = q.Where("bmc_building_block_id IN (?)", sub)
	}
	q = listquery.ApplySort(q, filter.Params, []string{"position", "created_at", "updated_at"}, "position", "asc")

	var entries []*types.Entry
	pagination, err := listquery.Paginate(q, filter.Params, &entries)
	if err != nil {
		return nil, listquery.Pagination{}, err
	}
	return entries, pagination, nil
}

func (er *entryRepo) MaxPosition(ctx context.Context, tx *gorm.DB, blockID uint) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var max *int
	err := transaction.WithContext(ctx).
		Model(&types.Entry{}).
		Where("bmc_building_block_id = ?", blockID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (er *entryRepo) Save(ctx context.Context, tx *gorm.DB, entry *types.Entry) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).Omit(clause.Associations).Save(entry).Error
}

func (er *entryRepo) SoftDelete(ctx context.Context, tx *gorm.DB, entry *types.Entry) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).Delete(entry).Error
}

func (er *entryRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, entryID uint, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Entry{}).
		Where("id = ?", entryID).
		Update("position", position).Error
}
