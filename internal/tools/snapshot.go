package tools

import (
	"context"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/services"
)

type snapshotListTool struct {
	snapshotService services.SnapshotService
}

func NewSnapshotListTool(snapshotService services.SnapshotService) Tool {
	return &snapshotListTool{snapshotService: snapshotService}
}

func (t *snapshotListTool) Name() string { return "bmc.snapshots.GET" }

func (t *snapshotListTool) Description() string {
	return "List a canvas's snapshots, newest version first."
}

func (t *snapshotListTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"team_id":   map[string]interface{}{"type": "integer"},
			"limit":     map[string]interface{}{"type": "integer"},
			"offset":    map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *snapshotListTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	canvasID, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	list, err := t.snapshotService.List(ctx, canvasID, optUint(args, "team_id"), listParams(args))
	if err != nil {
		return FailErr(err)
	}
	return OK(list)
}

type snapshotCreateTool struct {
	snapshotService services.SnapshotService
}

func NewSnapshotCreateTool(snapshotService services.SnapshotService) Tool {
	return &snapshotCreateTool{snapshotService: snapshotService}
}

func (t *snapshotCreateTool) Name() string { return "bmc.snapshots.POST" }

func (t *snapshotCreateTool) Description() string {
	return "Capture the canvas's current state as the next snapshot version."
}

func (t *snapshotCreateTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"canvas_id"},
		"properties": map[string]interface{}{
			"canvas_id": map[string]interface{}{"type": "integer"},
			"team_id":   map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *snapshotCreateTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	canvasID, ok := argUint(args, "canvas_id")
	if !ok {
		return Fail(apierr.CodeValidation, "canvas_id is required")
	}
	snapshot, err := t.snapshotService.Create(ctx, canvasID, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(map[string]interface{}{
		"snapshot_id": snapshot.ID,
		"canvas_id":   snapshot.CanvasID,
		"version":     snapshot.Version,
		"created_at":  snapshot.CreatedAt,
	})
}

type snapshotGetTool struct {
	snapshotService services.SnapshotService
}

func NewSnapshotGetTool(snapshotService services.SnapshotService) Tool {
	return &snapshotGetTool{snapshotService: snapshotService}
}

func (t *snapshotGetTool) Name() string { return "bmc.snapshot.GET" }

func (t *snapshotGetTool) Description() string {
	return "Fetch one snapshot including its stored canvas state."
}

func (t *snapshotGetTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"snapshot_id"},
		"properties": map[string]interface{}{
			"snapshot_id": map[string]interface{}{"type": "integer"},
			"team_id":     map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *snapshotGetTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	id, ok := argUint(args, "snapshot_id")
	if !ok {
		return Fail(apierr.CodeValidation, "snapshot_id is required")
	}
	snapshot, err := t.snapshotService.Get(ctx, id, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(snapshot)
}

type snapshotCompareTool struct {
	snapshotService services.SnapshotService
}

func NewSnapshotCompareTool(snapshotService services.SnapshotService) Tool {
	return &snapshotCompareTool{snapshotService: snapshotService}
}

func (t *snapshotCompareTool) Name() string { return "bmc.snapshots.compare.GET" }

func (t *snapshotCompareTool) Description() string {
	return "Diff two snapshots of the same canvas: entries added, removed and modified per block."
}

func (t *snapshotCompareTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"snapshot_a_id", "snapshot_b_id"},
		"properties": map[string]interface{}{
			"snapshot_a_id": map[string]interface{}{"type": "integer", "description": "Baseline snapshot."},
			"snapshot_b_id": map[string]interface{}{"type": "integer", "description": "Later snapshot."},
			"team_id":       map[string]interface{}{"type": "integer"},
		},
	}
}

func (t *snapshotCompareTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	aID, ok := argUint(args, "snapshot_a_id")
	if !ok {
		return Fail(apierr.CodeValidation, "snapshot_a_id is required")
	}
	bID, ok := argUint(args, "snapshot_b_id")
	if !ok {
		return Fail(apierr.CodeValidation, "snapshot_b_id is required")
	}
	diff, err := t.snapshotService.Compare(ctx, aID, bID, optUint(args, "team_id"))
	if err != nil {
		return FailErr(err)
	}
	return OK(diff)
}
