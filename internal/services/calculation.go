package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

// Health tier boundaries, in percent of filled blocks. Boundaries are
// inclusive at the low end, so exactly 80% reads as good and exactly 50%
// as partial.
const (
	healthGoodPercent    = 80.0
	healthPartialPercent = 50.0
)

const (
	HealthGood    = "good"
	HealthPartial = "partial"
	HealthMinimal = "minimal"
	HealthEmpty   = "empty"
)

type CalculationService interface {
	Calculate(ctx context.Context, canvasID uint, teamID *uint) (*types.CanvasCalculation, error)
}

type calculationService struct {
	db          *gorm.DB
	log         *logger.Logger
	canvasRepo  repos.CanvasRepo
	authService AuthService
	cache       redis.CalcCache
}

func NewCalculationService(db *gorm.DB, log *logger.Logger, canvasRepo repos.CanvasRepo, authService AuthService, cache redis.CalcCache) CalculationService {
	return &calculationService{
		db:          db,
		log:         log.With("service", "CalculationService"),
		canvasRepo:  canvasRepo,
		authService: authService,
		cache:       cache,
	}
}

func (cs *calculationService) Calculate(ctx context.Context, canvasID uint, teamID *uint) (*types.CanvasCalculation, error) {
	effectiveTeam, err := cs.authService.ResolveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked before the cache is consulted so a cached result
	// never leaks across teams.
	canvas, err := cs.canvasRepo.GetForTeam(ctx, nil, canvasID, effectiveTeam)
	if err != nil {
		return nil, fmt.Errorf("load canvas %d: %w", canvasID, err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}

	if cached, ok := cs.cache.Get(ctx, canvasID); ok {
		return cached, nil
	}

	canvas, err = cs.canvasRepo.GetForTeamWithBlocks(ctx, nil, canvasID, effectiveTeam)
	if err != nil {
		return nil, fmt.Errorf("load canvas %d: %w", canvasID, err)
	}
	if canvas == nil {
		return nil, apierr.New(apierr.CodeNotFound, "Canvas not found")
	}

	calc := CalculateCanvas(canvas)
	cs.cache.Set(ctx, canvasID, calc)
	return calc, nil
}

// CalculateCanvas computes the completeness report from an already loaded
// canvas. A block counts as filled when it has at least one entry; soft
// deleted entries never reach this point.
func CalculateCanvas(canvas *types.Canvas) *types.CanvasCalculation {
	total := templates.Count()
	filled := 0
	totalEntries := 0

	blocksByType := make(map[string]*types.BuildingBlock, len(canvas.Blocks))
	for _, b := range canvas.Blocks {
		blocksByType[b.BlockType] = b
	}

	stats := make(map[string]*types.BlockStats, total)
	var missing []*types.MissingBlock
	var singles []string

	for _, def := range templates.All() {
		entryCount := 0
		// Prefer the block row's own label; it can lag the template after a
		// template revision.
		label := def.Label
		if b, ok := blocksByType[def.Type]; ok {
			entryCount = len(b.Entries)
			label = b.Label
		}
		totalEntries += entryCount
		isFilled := entryCount > 0
		if isFilled {
			filled++
		} else {
			missing = append(missing, &types.MissingBlock{
				BlockType:        def.Type,
				Label:            label,
				GuidingQuestions: def.GuidingQuestions,
			})
		}
		if entryCount == 1 {
			singles = append(singles, label)
		}
		stats[def.Type] = &types.BlockStats{
			Label:                 label,
			EntryCount:            entryCount,
			IsFilled:              isFilled,
			GuidingQuestions:      def.GuidingQuestions,
			GuidingQuestionsCount: len(def.GuidingQuestions),
		}
	}

	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(filled)/float64(total)*1000) / 10
	}

	return &types.CanvasCalculation{
		CanvasID:            canvas.ID,
		CanvasName:          canvas.Name,
		CompletenessPercent: percent,
		Health:              healthFor(percent),
		FilledBlocks:        filled,
		TotalBlocks:         total,
		TotalEntries:        totalEntries,
		BlockStats:          stats,
		MissingBlocks:       missing,
		Recommendations:     buildRecommendations(missing, singles),
	}
}

func healthFor(percent float64) string {
	switch {
	case percent >= healthGoodPercent:
		return HealthGood
	case percent >= healthPartialPercent:
		return HealthPartial
	case percent > 0:
		return HealthMinimal
	default:
		return HealthEmpty
	}
}

// buildRecommendations emits one combined sentence for all missing blocks,
// then one sentence per block holding a single entry.
func buildRecommendations(missing []*types.MissingBlock, singles []string) []string {
	var recs []string
	if len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, m := range missing {
			labels = append(labels, m.Label)
		}
		recs = append(recs, fmt.Sprintf("Fill in the missing blocks: %s", strings.Join(labels, ", ")))
	}
	for _, label := range singles {
		recs = append(recs, fmt.Sprintf("Consider adding more entries to %s (currently only 1)", label))
	}
	return recs
}
