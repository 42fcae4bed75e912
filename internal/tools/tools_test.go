package tools

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/services"
	"github.com/yungbote/bmc-backend/internal/testutil"
	"github.com/yungbote/bmc-backend/internal/types"
)

type toolEnv struct {
	tx       *gorm.DB
	ctx      context.Context
	user     *types.User
	registry *Registry
}

func newToolEnv(t *testing.T) *toolEnv {
	t.Helper()
	tx := testutil.Tx(t)
	log := testutil.Logger(t)

	team := testutil.SeedTeam(t, tx, "Acme")
	user := testutil.SeedUser(t, tx, team.ID)

	userRepo := repos.NewUserRepo(tx, log)
	canvasRepo := repos.NewCanvasRepo(tx, log)
	blockRepo := repos.NewBuildingBlockRepo(tx, log)
	entryRepo := repos.NewEntryRepo(tx, log)
	snapshotRepo := repos.NewSnapshotRepo(tx, log)
	activityRepo := repos.NewActivityLogRepo(tx, log)

	cache := redis.NewNopCalcCache()
	authSvc := services.NewAuthService(tx, log, userRepo, "test-secret", time.Hour)
	activitySvc := services.NewActivityService(tx, log, activityRepo)
	canvasSvc := services.NewCanvasService(tx, log, canvasRepo, blockRepo, authSvc, activitySvc, cache)
	entrySvc := services.NewEntryService(tx, log, entryRepo, blockRepo, canvasRepo, authSvc, activitySvc, cache)
	snapshotSvc := services.NewSnapshotService(tx, log, snapshotRepo, canvasRepo, authSvc, activitySvc)
	calcSvc := services.NewCalculationService(tx, log, canvasRepo, authSvc, cache)

	registry := NewRegistry(log)
	RegisterAll(registry, canvasSvc, entrySvc, snapshotSvc, calcSvc)

	return &toolEnv{tx: tx, ctx: testutil.Ctx(user.ID, team.ID), user: user, registry: registry}
}

func exec(t *testing.T, env *toolEnv, name string, args map[string]interface{}) *Result {
	t.Helper()
	result := env.registry.Execute(env.ctx, name, args)
	if result == nil {
		t.Fatalf("%s returned nil result", name)
	}
	return result
}

func wantSuccess(t *testing.T, result *Result) map[string]interface{} {
	t.Helper()
	if !result.Success {
		t.Fatalf("tool failed: %+v", result.Error)
	}
	data, _ := result.Data.(map[string]interface{})
	return data
}

func wantFailure(t *testing.T, result *Result, code apierr.Code) {
	t.Helper()
	if result.Success {
		t.Fatalf("expected %s failure, got success: %+v", code, result.Data)
	}
	if result.Error == nil || result.Error.Code != string(code) {
		t.Fatalf("error = %+v, want code %s", result.Error, code)
	}
}

func createCanvas(t *testing.T, env *toolEnv, name string) uint {
	t.Helper()
	result := exec(t, env, "bmc.canvases.POST", map[string]interface{}{"name": name})
	data := wantSuccess(t, result)
	if data["building_blocks_count"] != 9 {
		t.Fatalf("building_blocks_count = %v, want 9", data["building_blocks_count"])
	}
	listResult := exec(t, env, "bmc.canvases.GET", map[string]interface{}{"search": name})
	list := listResult.Data.(*services.CanvasList)
	for _, item := range list.Canvases {
		if item.Name == name {
			return item.ID
		}
	}
	t.Fatalf("created canvas %q not found in list", name)
	return 0
}

func blockID(t *testing.T, env *toolEnv, canvasID uint, blockType string) uint {
	t.Helper()
	result := exec(t, env, "bmc.canvas.GET", map[string]interface{}{"canvas_id": float64(canvasID)})
	if !result.Success {
		t.Fatalf("bmc.canvas.GET failed: %+v", result.Error)
	}
	detail := result.Data.(*services.CanvasDetail)
	for _, b := range detail.Blocks {
		if b.BlockType == blockType {
			return b.ID
		}
	}
	t.Fatalf("block %q not found", blockType)
	return 0
}

func TestUnknownToolIsNotFound(t *testing.T) {
	env := newToolEnv(t)
	wantFailure(t, exec(t, env, "bmc.nonsense.GET", nil), apierr.CodeNotFound)
}

func TestToolCatalogListsAllTools(t *testing.T) {
	env := newToolEnv(t)
	infos := env.registry.List()
	if len(infos) != 18 {
		t.Fatalf("catalog size = %d, want 18", len(infos))
	}
	for _, info := range infos {
		if info.Name == "" || info.Description == "" || info.Schema == nil {
			t.Fatalf("incomplete catalog entry: %+v", info)
		}
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	env := newToolEnv(t)
	canvasID := createCanvas(t, env, "Deletable")

	result := exec(t, env, "bmc.canvases.DELETE", map[string]interface{}{"canvas_id": float64(canvasID)})
	wantFailure(t, result, apierr.CodeConfirmationRequired)

	// Unconfirmed delete must not touch state.
	get := exec(t, env, "bmc.canvas.GET", map[string]interface{}{"canvas_id": float64(canvasID)})
	if !get.Success {
		t.Fatalf("canvas gone after unconfirmed delete: %+v", get.Error)
	}

	confirmed := exec(t, env, "bmc.canvases.DELETE", map[string]interface{}{"canvas_id": float64(canvasID), "confirm": true})
	wantSuccess(t, confirmed)
	gone := exec(t, env, "bmc.canvas.GET", map[string]interface{}{"canvas_id": float64(canvasID)})
	wantFailure(t, gone, apierr.CodeNotFound)
}

func TestToolValidationErrors(t *testing.T) {
	env := newToolEnv(t)
	wantFailure(t, exec(t, env, "bmc.canvases.POST", map[string]interface{}{}), apierr.CodeValidation)
	wantFailure(t, exec(t, env, "bmc.canvas.GET", map[string]interface{}{}), apierr.CodeValidation)
	wantFailure(t, exec(t, env, "bmc.entries.POST", map[string]interface{}{"title": "x"}), apierr.CodeValidation)
	wantFailure(t, exec(t, env, "bmc.entries.reorder.PUT", map[string]interface{}{"building_block_id": float64(1)}), apierr.CodeValidation)
	wantFailure(t, exec(t, env, "bmc.snapshots.compare.GET", map[string]interface{}{"snapshot_a_id": float64(1)}), apierr.CodeValidation)

	// Both scopes at once is rejected.
	wantFailure(t, exec(t, env, "bmc.entries.GET", map[string]interface{}{
		"building_block_id": float64(1),
		"canvas_id":         float64(2),
	}), apierr.CodeValidation)
}

func TestEntryLifecycleThroughTools(t *testing.T) {
	env := newToolEnv(t)
	canvasID := createCanvas(t, env, "Entry Flow")
	segID := blockID(t, env, canvasID, "customer_segments")

	created := exec(t, env, "bmc.entries.POST", map[string]interface{}{
		"building_block_id": float64(segID),
		"title":             "Startups",
		"content":           "early adopters",
		"metadata":          map[string]interface{}{"color": "blue"},
	})
	wantSuccess(t, created)

	bulk := exec(t, env, "bmc.entries.bulk.POST", map[string]interface{}{
		"building_block_id": float64(segID),
		"entries": []interface{}{
			map[string]interface{}{"title": "Enterprises"},
			map[string]interface{}{"title": "SMBs"},
		},
	})
	data := wantSuccess(t, bulk)
	if data["created"] != 2 {
		t.Fatalf("bulk created = %v, want 2", data["created"])
	}

	list := exec(t, env, "bmc.entries.GET", map[string]interface{}{"building_block_id": float64(segID)})
	if !list.Success {
		t.Fatalf("entries list failed: %+v", list.Error)
	}
	entries := list.Data.(*services.EntryList)
	if entries.Pagination.Total != 3 {
		t.Fatalf("entries total = %d, want 3", entries.Pagination.Total)
	}

	entryID := entries.Entries[0].ID
	wantFailure(t, exec(t, env, "bmc.entries.DELETE", map[string]interface{}{"entry_id": float64(entryID)}), apierr.CodeConfirmationRequired)
	wantSuccess(t, exec(t, env, "bmc.entries.DELETE", map[string]interface{}{"entry_id": float64(entryID), "confirm": true}))
}

func TestCalculateAndExportThroughTools(t *testing.T) {
	env := newToolEnv(t)
	canvasID := createCanvas(t, env, "Scored")
	segID := blockID(t, env, canvasID, "customer_segments")
	wantSuccess(t, exec(t, env, "bmc.entries.POST", map[string]interface{}{
		"building_block_id": float64(segID),
		"title":             "Startups",
	}))

	calcResult := exec(t, env, "bmc.calculate.GET", map[string]interface{}{"canvas_id": float64(canvasID)})
	if !calcResult.Success {
		t.Fatalf("calculate failed: %+v", calcResult.Error)
	}

	exportResult := exec(t, env, "bmc.export.GET", map[string]interface{}{"canvas_id": float64(canvasID)})
	if !exportResult.Success {
		t.Fatalf("export failed: %+v", exportResult.Error)
	}
}

func TestSnapshotFlowThroughTools(t *testing.T) {
	env := newToolEnv(t)
	canvasID := createCanvas(t, env, "Snapped")

	first := wantSuccess(t, exec(t, env, "bmc.snapshots.POST", map[string]interface{}{"canvas_id": float64(canvasID)}))
	second := wantSuccess(t, exec(t, env, "bmc.snapshots.POST", map[string]interface{}{"canvas_id": float64(canvasID)}))
	if first["version"] != 1 || second["version"] != 2 {
		t.Fatalf("versions = %v, %v, want 1, 2", first["version"], second["version"])
	}

	compare := exec(t, env, "bmc.snapshots.compare.GET", map[string]interface{}{
		"snapshot_a_id": first["snapshot_id"],
		"snapshot_b_id": second["snapshot_id"],
	})
	if !compare.Success {
		t.Fatalf("compare failed: %+v", compare.Error)
	}
}

func TestCanvasGetWithTeamOverride(t *testing.T) {
	env := newToolEnv(t)
	second := testutil.SeedTeam(t, env.tx, "Second Venture")
	testutil.SeedMembership(t, env.tx, env.user.ID, second.ID)
	canvas := testutil.SeedCanvas(t, env.tx, second.ID, env.user.ID, "Side Project")

	// The current team cannot see the other team's canvas.
	miss := exec(t, env, "bmc.canvas.GET", map[string]interface{}{"canvas_id": canvas.ID})
	wantFailure(t, miss, apierr.CodeNotFound)

	hit := exec(t, env, "bmc.canvas.GET", map[string]interface{}{
		"canvas_id": canvas.ID,
		"team_id":   second.ID,
	})
	detail, ok := hit.Data.(*services.CanvasDetail)
	if !ok || !hit.Success {
		t.Fatalf("canvas.GET with team_id: %+v", hit)
	}
	if detail.Name != "Side Project" {
		t.Fatalf("canvas name = %q, want %q", detail.Name, "Side Project")
	}
}

func TestOverviewTool(t *testing.T) {
	env := newToolEnv(t)
	result := exec(t, env, "bmc.overview.GET", nil)
	data := wantSuccess(t, result)
	if data["total_blocks"] != 9 {
		t.Fatalf("total_blocks = %v, want 9", data["total_blocks"])
	}
	tools, ok := data["tools"].([]Info)
	if !ok || len(tools) != 18 {
		t.Fatalf("tools listing wrong: %T len %d", data["tools"], len(tools))
	}
}
