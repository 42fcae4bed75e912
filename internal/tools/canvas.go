package tools

import (
	"context"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/services"
)

func listParams(args map[string]interface{}) listquery.Params {
	p := listquery.Params{}
	if s, ok := argString(args, "search"); ok {
		p.Search = s
	}
	if s, ok := argString(args, "sort_by"); ok {
		p.SortBy = s
	}
	if s, ok := argString(args, "sort_dir"); ok {
		p.SortDir = s
	}
	if n, ok := argInt(args, "limit"); ok {
		p.Limit = n
	}
	if n, ok := argInt(args, "offset"); ok {
		p.Offset = n
	}
	return p
}

type canvasListTool struct {
	canvasService services.CanvasService
}

func NewCanvasListTool(canvasService services.CanvasService) Tool {
	return &canvasListTool{canvasService: canvasService}
}

func (t *canvasListTool) Name() string { return "bmc.canvases.GET" }

func (t *canvasListTool) Description() string {
	return "List business model canvases for the current team, with optional status filter, search and pagination."
}

func (t *canvasListTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"team_id":  map[string]interface{}{"type": "integer", "description": "Override team scope; caller must be a member."},
			"status":   map[string]interface{}{"type": "string", "enum": []string{"draft", "active", "archived"}},
			"search":   map[string]interface{}{"type": "string"},
			"sort_by":  map[string]interface{}{"type": "string", "enum": []string{"name", "status", "created_at", "updated_at"}},
			"sort_dir": map[string]interface{}{"type": "string", "enum": []string{"asc", "desc"}},
			"limit":    map[string]interface{}{"type": "integer"},
			"offset":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *canvasListTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	input := services.CanvasListInput{
		TeamID: optUint(args, "team_id"),
		Params: listParams(args),
	}
	if s, ok := argString(args, "status"); ok {
		input.Status = s
	}
	list, err := t.canvasService.List(ctx, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(list)
}

type canvasCreateTool struct {
	canvasService services.CanvasService
}

func NewCanvasCreateTool(canvasService services.CanvasService) Tool {
	return &canvasCreateTool{canvasService: canvasService}
}

func (t *canvasCreateTool) Name() string { return "bmc.canvases.POST" }

func (t *canvasCreateTool) Description() string {
	return "Create a canvas; the nine standard building blocks are initialized automatically."
}

func (t *canvasCreateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]interface{}{
			"name":             map[string]interface{}{"type": "string"},
			"description":      map[string]interface{}{"type": "string"},
			"status":           map[string]interface{}{"type": "string", "enum": []string{"draft", "active", "archived"}},
			"team_id":          map[string]interface{}{"type": "integer"},
			"contextable_type": map[string]interface{}{"type": "string"},
			"contextable_id":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *canvasCreateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	name, ok := argString(args, "name")
	if !ok {
		return Fail(apierr.CodeValidation, "name is required")
	}
	input := services.CanvasCreateInput{
		Name:            name,
		Description:     optString(args, "description"),
		Status:          optString(args, "status"),
		TeamID:          optUint(args, "team_id"),
		ContextableType: optString(args, "contextable_type"),
		ContextableID:   optUint(args, "contextable_id"),
	}
	canvas, err := t.canvasService.Create(ctx, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{
		"canvas":                canvas,
		"building_blocks_count": len(canvas.Blocks),
		"team_id":               canvas.TeamID,
	})
}

type canvasGetTool struct {
	canvasService services.CanvasService
}

func NewCanvasGetTool(canvasService services.CanvasService) Tool {
	return &canvasGetTool{canvasService: canvasService}
}

func (t *canvasGetTool) Name() string { return "bmc.canvas.GET" }

func (t *canvasGetTool) Description() string {
	return "Fetch one canvas with its blocks and entries, ordered by position."
}

func (t *canvasGetTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"team_id":   map[string]interface{}{"type": "integer", "description": "Override team scope; caller must be a member."},
		},
	}
}

func (t *canvasGetTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	detail, err := t.canvasService.Get(ctx, id, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(detail)
}

type canvasUpdateTool struct {
	canvasService services.CanvasService
}

func NewCanvasUpdateTool(canvasService services.CanvasService) Tool {
	return &canvasUpdateTool{canvasService: canvasService}
}

func (t *canvasUpdateTool) Name() string { return "bmc.canvases.PUT" }

func (t *canvasUpdateTool) Description() string {
	return "Update a canvas's name, description or status."
}

func (t *canvasUpdateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id":   map[string]interface{}{"type": "integer"},
			"name":        map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"status":      map[string]interface{}{"type": "string", "enum": []string{"draft", "active", "archived"}},
			"team_id":     map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *canvasUpdateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	input := services.CanvasUpdateInput{
		Name:        optString(args, "name"),
		Description: optString(args, "description"),
		Status:      optString(args, "status"),
		TeamID:      optUint(args, "team_id"),
	}
	canvas, err := t.canvasService.Update(ctx, id, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"canvas": canvas})
}

type canvasDeleteTool struct {
	canvasService services.CanvasService
}

func NewCanvasDeleteTool(canvasService services.CanvasService) Tool {
	return &canvasDeleteTool{canvasService: canvasService}
}

func (t *canvasDeleteTool) Name() string { return "bmc.canvases.DELETE" }

func (t *canvasDeleteTool) Description() string {
	return "Soft delete a canvas and everything under it. Requires confirm=true."
}

func (t *canvasDeleteTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id", "confirm"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"confirm":   map[string]interface{}{"type": "boolean"},
			"team_id":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *canvasDeleteTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	if !argBool(args, "confirm") {
		return Fail(apierr.CodeConfirmationRequired, "Pass confirm=true to delete this canvas")
	}
	if err := t.canvasService.Delete(ctx, id, optUint(args, "team_id")); err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"deleted": true, "canvas_id": id})
}
