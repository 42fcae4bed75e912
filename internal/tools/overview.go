package tools

import (
	"context"

	"github.com/yungbote/bmc-backend/internal/services"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

// overviewTool describes the module itself: the block templates, the status
// and health vocabularies, and the tool catalog. Useful for clients that
// discover capabilities at runtime.
type overviewTool struct {
	registry *Registry
}

func NewOverviewTool(registry *Registry) Tool {
	return &overviewTool{registry: registry}
}

func (t *overviewTool) Name() string { return "bmc.overview.GET" }

func (t *overviewTool) Description() string {
	return "Describe the business model canvas module: block templates, statuses, health tiers and available tools."
}

func (t *overviewTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *overviewTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	return OK(map[string]interface{}{
		"block_templates": templates.All(),
		"total_blocks":    templates.Count(),
		"statuses":        []string{types.CanvasStatusDraft, types.CanvasStatusActive, types.CanvasStatusArchived},
		"health_tiers":    []string{services.HealthGood, services.HealthPartial, services.HealthMinimal, services.HealthEmpty},
		"tools":           t.registry.List(),
	})
}

// RegisterAll wires the full tool catalog against the given services.
func RegisterAll(
	registry *Registry,
	canvasService services.CanvasService,
	entryService services.EntryService,
	snapshotService services.SnapshotService,
	calcService services.CalculationService,
) {
	registry.Register(NewCanvasListTool(canvasService))
	registry.Register(NewCanvasCreateTool(canvasService))
	registry.Register(NewCanvasGetTool(canvasService))
	registry.Register(NewCanvasUpdateTool(canvasService))
	registry.Register(NewCanvasDeleteTool(canvasService))
	registry.Register(NewEntryListTool(entryService))
	registry.Register(NewEntryCreateTool(entryService))
	registry.Register(NewEntryBulkCreateTool(entryService))
	registry.Register(NewEntryUpdateTool(entryService))
	registry.Register(NewEntryDeleteTool(entryService))
	registry.Register(NewEntryReorderTool(entryService))
	registry.Register(NewSnapshotListTool(snapshotService))
	registry.Register(NewSnapshotCreateTool(snapshotService))
	registry.Register(NewSnapshotGetTool(snapshotService))
	registry.Register(NewSnapshotCompareTool(snapshotService))
	registry.Register(NewExportTool(canvasService))
	registry.Register(NewCalculateTool(calcService))
	registry.Register(NewOverviewTool(registry))
}
