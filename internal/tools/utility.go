package tools

import (
	"context"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/services"
)

type exportTool struct {
	canvasService services.CanvasService
}

func NewExportTool(canvasService services.CanvasService) Tool {
	return &exportTool{canvasService: canvasService}
}

func (t *exportTool) Name() string { return "bmc.export.GET" }

func (t *exportTool) Description() string {
	return "Export a canvas as an ordered list of sections, one per building block, with summary totals."
}

func (t *exportTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"team_id":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *exportTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	sections, err := t.canvasService.Export(ctx, id, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(sections)
}

type calculateTool struct {
	calcService services.CalculationService
}

func NewCalculateTool(calcService services.CalculationService) Tool {
	return &calculateTool{calcService: calcService}
}

func (t *calculateTool) Name() string { return "bmc.calculate.GET" }

func (t *calculateTool) Description() string {
	return "Compute canvas completeness, health tier, per-block stats and recommendations."
}

func (t *calculateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"team_id":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *calculateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	calc, err := t.calcService.Calculate(ctx, id, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(calc)
}
