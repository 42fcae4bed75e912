package tools

import (
	"context"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/services"
)

type entryListTool struct {
	entryService services.EntryService
}

func NewEntryListTool(entryService services.EntryService) Tool {
	return &entryListTool{entryService: entryService}
}

func (t *entryListTool) Name() string { return "bmc.entries.GET" }

func (t *entryListTool) Description() string {
	return "List entries for a building block or a whole canvas, optionally filtered by block type."
}

func (t *entryListTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"building_block_id": map[string]interface{}{"type": "integer"},
			"canvas_id":         map[string]interface{}{"type": "integer"},
			"block_type":        map[string]interface{}{"type": "string"},
			"team_id":           map[string]interface{}{"type": "integer"},
			"search":            map[string]interface{}{"type": "string"},
			"sort_by":           map[string]interface{}{"type": "string", "enum": []string{"position", "created_at", "updated_at"}},
			"sort_dir":          map[string]interface{}{"type": "string", "enum": []string{"asc", "desc"}},
			"limit":             map[string]interface{}{"type": "integer"},
			"offset":            map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *entryListTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	blockID := optUint(args, "building_block_id")
	canvasID := optUint(args, "canvas_id")
	if blockID != nil && canvasID != nil {
		return Fail(apierr.CodeValidation, "Pass building_block_id or canvas_id, not both")
	}
	input := services.EntryListInput{
		BlockID:  blockID,
		CanvasID: canvasID,
		TeamID:   optUint(args, "team_id"),
		Params:   listParams(args),
	}
	if bt, ok := argString(args, "block_type"); ok {
		if canvasID == nil {
			return Fail(apierr.CodeValidation, "block_type filter requires canvas_id")
		}
		input.BlockType = bt
	}
	list, err := t.entryService.List(ctx, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(list)
}

type entryCreateTool struct {
	entryService services.EntryService
}

func NewEntryCreateTool(entryService services.EntryService) Tool {
	return &entryCreateTool{entryService: entryService}
}

func (t *entryCreateTool) Name() string { return "bmc.entries.POST" }

func (t *entryCreateTool) Description() string {
	return "Add an entry to a building block. Without an explicit position it is appended at the end."
}

func (t *entryCreateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"building_block_id", "title"},
		"properties": map[string]interface{}{
			"building_block_id": map[string]interface{}{"type": "integer"},
			"title":             map[string]interface{}{"type": "string"},
			"content":           map[string]interface{}{"type": "string"},
			"position":          map[string]interface{}{"type": "integer"},
			"metadata":          map[string]interface{}{"type": "object"},
			"team_id":           map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *entryCreateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	blockID, ok := argUint(args, "building_block_id")
	if !ok {
		return Fail(apierr.CodeValidation, "building_block_id is required")
	}
	title, ok := argString(args, "title")
	if !ok {
		return Fail(apierr.CodeValidation, "title is required")
	}
	input := services.EntryCreateInput{
		BlockID:  blockID,
		Title:    title,
		Content:  optString(args, "content"),
		Position: optInt(args, "position"),
		TeamID:   optUint(args, "team_id"),
	}
	if m, ok := argMap(args, "metadata"); ok {
		input.Metadata = m
	}
	entry, err := t.entryService.Create(ctx, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"entry": entry})
}

type entryBulkCreateTool struct {
	entryService services.EntryService
}

func NewEntryBulkCreateTool(entryService services.EntryService) Tool {
	return &entryBulkCreateTool{entryService: entryService}
}

func (t *entryBulkCreateTool) Name() string { return "bmc.entries.bulk.POST" }

func (t *entryBulkCreateTool) Description() string {
	return "Add several entries to one building block atomically."
}

func (t *entryBulkCreateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"building_block_id", "entries"},
		"properties": map[string]interface{}{
			"building_block_id": map[string]interface{}{"type": "integer"},
			"team_id":           map[string]interface{}{"type": "integer"},
			"entries": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"title"},
					"properties": map[string]interface{}{
						"title":    map[string]interface{}{"type": "string"},
						"content":  map[string]interface{}{"type": "string"},
						"position": map[string]interface{}{"type": "integer"},
						"metadata": map[string]interface{}{"type": "object"},
					},
				},
			},
		},
	}
}

func (t *entryBulkCreateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	blockID, ok := argUint(args, "building_block_id")
	if !ok {
		return Fail(apierr.CodeValidation, "building_block_id is required")
	}
	rawItems, ok := args["entries"].([]interface{})
	if !ok || len(rawItems) == 0 {
		return Fail(apierr.CodeValidation, "entries is required")
	}
	items := make([]services.EntryItem, 0, len(rawItems))
	for _, raw := range rawItems {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return Fail(apierr.CodeValidation, "entries must be an array of objects")
		}
		title, _ := argString(obj, "title")
		item := services.EntryItem{
			Title:    title,
			Content:  optString(obj, "content"),
			Position: optInt(obj, "position"),
		}
		if m, ok := argMap(obj, "metadata"); ok {
			item.Metadata = m
		}
		items = append(items, item)
	}
	entries, err := t.entryService.BulkCreate(ctx, blockID, items, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"entries": entries, "created": len(entries)})
}

type entryUpdateTool struct {
	entryService services.EntryService
}

func NewEntryUpdateTool(entryService services.EntryService) Tool {
	return &entryUpdateTool{entryService: entryService}
}

func (t *entryUpdateTool) Name() string { return "bmc.entries.PUT" }

func (t *entryUpdateTool) Description() string {
	return "Update an entry's title, content, position or metadata. An empty content string clears the column."
}

func (t *entryUpdateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"entry_id"},
		"properties": map[string]interface{}{
			"entry_id": map[string]interface{}{"type": "integer"},
			"title":    map[string]interface{}{"type": "string"},
			"content":  map[string]interface{}{"type": "string"},
			"position": map[string]interface{}{"type": "integer"},
			"metadata": map[string]interface{}{"type": "object"},
			"team_id":  map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *entryUpdateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "entry_id")
	if !ok {
		return Fail(apierr.CodeValidation, "entry_id is required")
	}
	input := services.EntryUpdateInput{
		Title:    optString(args, "title"),
		Content:  optString(args, "content"),
		Position: optInt(args, "position"),
		TeamID:   optUint(args, "team_id"),
	}
	if m, ok := argMap(args, "metadata"); ok {
		input.Metadata = m
	}
	entry, err := t.entryService.Update(ctx, id, input)
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"entry": entry})
}

type entryDeleteTool struct {
	entryService services.EntryService
}

func NewEntryDeleteTool(entryService services.EntryService) Tool {
	return &entryDeleteTool{entryService: entryService}
}

func (t *entryDeleteTool) Name() string { return "bmc.entries.DELETE" }

func (t *entryDeleteTool) Description() string {
	return "Soft delete an entry. Requires confirm=true."
}

func (t *entryDeleteTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"entry_id", "confirm"},
		"properties": map[string]interface{}{
			"entry_id": map[string]interface{}{"type": "integer"},
			"confirm":  map[string]interface{}{"type": "boolean"},
			"team_id":  map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *entryDeleteTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "entry_id")
	if !ok {
		return Fail(apierr.CodeValidation, "entry_id is required")
	}
	if !argBool(args, "confirm") {
		return Fail(apierr.CodeConfirmationRequired, "Pass confirm=true to delete this entry")
	}
	if err := t.entryService.Delete(ctx, id, optUint(args, "team_id")); err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"deleted": true, "entry_id": id})
}

type entryReorderTool struct {
	entryService services.EntryService
}

func NewEntryReorderTool(entryService services.EntryService) Tool {
	return &entryReorderTool{entryService: entryService}
}

func (t *entryReorderTool) Name() string { return "bmc.entries.reorder.PUT" }

func (t *entryReorderTool) Description() string {
	return "Rewrite entry positions 1..N in the given order within a building block."
}

func (t *entryReorderTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"building_block_id", "entry_ids"},
		"properties": map[string]interface{}{
			"building_block_id": map[string]interface{}{"type": "integer"},
			"team_id":           map[string]interface{}{"type": "integer"},
			"entry_ids": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "integer"},
			},
		},
	}
}

func (t *entryReorderTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	blockID, ok := argUint(args, "building_block_id")
	if !ok {
		return Fail(apierr.CodeValidation, "building_block_id is required")
	}
	entryIDs, ok := argUintSlice(args, "entry_ids")
	if !ok || len(entryIDs) == 0 {
		return Fail(apierr.CodeValidation, "entry_ids is required")
	}
	if err := t.entryService.Reorder(ctx, blockID, entryIDs, optUint(args, "team_id")); err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{"reordered": len(entryIDs)})
}
