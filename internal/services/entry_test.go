package services

import (
	"testing"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/testutil"
	"github.com/yungbote/bmc-backend/internal/types"
)

func seedCanvasWithBlocks(t *testing.T, env *testEnv) *types.Canvas {
	t.Helper()
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Entry Canvas"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}
	return canvas
}

func TestCreateEntryAppendsPosition(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.CustomerSegments)

	first, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Startups"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Position != 1 {
		t.Fatalf("first position = %d, want 1", first.Position)
	}
	second, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Enterprises"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.Position != 2 {
		t.Fatalf("second position = %d, want 2", second.Position)
	}

	// Explicit position wins over append.
	pos := 10
	third, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "SMBs", Position: &pos})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if third.Position != 10 {
		t.Fatalf("explicit position = %d, want 10", third.Position)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.Channels)

	_, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "   "})
	wantCode(t, err, apierr.CodeValidation)

	_, err = env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: 999999, Title: "x"})
	wantCode(t, err, apierr.CodeNotFound)
}

func TestBulkCreateEntries(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.RevenueStreams)

	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Subscriptions"}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	entries, err := env.entrySvc.BulkCreate(env.ctx, block.ID, []EntryItem{
		{Title: "Consulting"},
		{Title: "Licensing", Content: strPtr("per-seat")},
	}, nil)
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("created = %d, want 2", len(entries))
	}
	if entries[0].Position != 2 || entries[1].Position != 3 {
		t.Fatalf("positions = %d,%d, want 2,3", entries[0].Position, entries[1].Position)
	}

	// One bad row rejects the whole batch.
	_, err = env.entrySvc.BulkCreate(env.ctx, block.ID, []EntryItem{
		{Title: "ok"},
		{Title: " "},
	}, nil)
	wantCode(t, err, apierr.CodeValidation)
	list, err := env.entrySvc.List(env.ctx, EntryListInput{BlockID: &block.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Pagination.Total != 3 {
		t.Fatalf("entries after failed batch = %d, want 3", list.Pagination.Total)
	}
}

func TestUpdateEntryMovesPosition(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.CustomerSegments)

	entry, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Startups"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Position != 1 {
		t.Fatalf("position before update = %d, want 1", entry.Position)
	}

	pos := 5
	updated, err := env.entrySvc.Update(env.ctx, entry.ID, EntryUpdateInput{Position: &pos})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Position != 5 {
		t.Fatalf("position = %d, want 5", updated.Position)
	}

	var reloaded types.Entry
	if err := env.tx.First(&reloaded, entry.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Position != 5 {
		t.Fatalf("persisted position = %d, want 5", reloaded.Position)
	}
}

func TestBulkCreateHonorsExplicitPositions(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.KeyResources)

	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Engineers"}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	pinned := 10
	entries, err := env.entrySvc.BulkCreate(env.ctx, block.ID, []EntryItem{
		{Title: "Brand"},
		{Title: "Patents", Position: &pinned},
		{Title: "Capital"},
	}, nil)
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if entries[0].Position != 2 || entries[2].Position != 3 {
		t.Fatalf("appended positions = %d,%d, want 2,3", entries[0].Position, entries[2].Position)
	}
	if entries[1].Position != 10 {
		t.Fatalf("pinned position = %d, want 10", entries[1].Position)
	}
}

func TestUpdateEntryEmptyContentClearsColumn(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.KeyActivities)

	entry, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Build", Content: strPtr("ship weekly")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	empty := ""
	updated, err := env.entrySvc.Update(env.ctx, entry.ID, EntryUpdateInput{Content: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != nil {
		t.Fatalf("content = %q, want nil", *updated.Content)
	}

	var reloaded types.Entry
	if err := env.tx.First(&reloaded, entry.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Content != nil {
		t.Fatalf("persisted content = %q, want NULL", *reloaded.Content)
	}

	blank := "  "
	_, err = env.entrySvc.Update(env.ctx, entry.ID, EntryUpdateInput{Title: &blank})
	wantCode(t, err, apierr.CodeValidation)
}

func TestEntryCrossTeamAccess(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.KeyPartners)
	entry, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Supplier"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	foreign := env.otherTeamCtx(t)

	_, err = env.entrySvc.Create(foreign, EntryCreateInput{BlockID: block.ID, Title: "x"})
	wantCode(t, err, apierr.CodeNotFound)

	_, err = env.entrySvc.Update(foreign, entry.ID, EntryUpdateInput{})
	wantCode(t, err, apierr.CodeAccessDenied)
	wantCode(t, env.entrySvc.Delete(foreign, entry.ID, nil), apierr.CodeAccessDenied)
}

func TestDeleteEntrySoftDeletes(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.CostStructure)
	entry, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Hosting"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.entrySvc.Delete(env.ctx, entry.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err := env.entrySvc.List(env.ctx, EntryListInput{BlockID: &block.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Pagination.Total != 0 {
		t.Fatalf("entries after delete = %d, want 0", list.Pagination.Total)
	}
	wantCode(t, env.entrySvc.Delete(env.ctx, entry.ID, nil), apierr.CodeNotFound)
}

func TestReorderRewritesPositions(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	block := testutil.Block(t, canvas, templates.ValuePropositions)

	a, _ := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "A"})
	b, _ := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "B"})
	c, _ := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "C"})

	if err := env.entrySvc.Reorder(env.ctx, block.ID, []uint{c.ID, a.ID, b.ID}, nil); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	list, err := env.entrySvc.List(env.ctx, EntryListInput{BlockID: &block.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantOrder := []uint{c.ID, a.ID, b.ID}
	for i, e := range list.Entries {
		if e.ID != wantOrder[i] {
			t.Fatalf("position %d holds entry %d, want %d", i+1, e.ID, wantOrder[i])
		}
		if e.Position != i+1 {
			t.Fatalf("entry %d position = %d, want %d", e.ID, e.Position, i+1)
		}
	}

	// Reordering with the same order is idempotent.
	if err := env.entrySvc.Reorder(env.ctx, block.ID, []uint{c.ID, a.ID, b.ID}, nil); err != nil {
		t.Fatalf("Reorder again: %v", err)
	}
}

func TestListEntriesByCanvasAndBlockType(t *testing.T) {
	env := newTestEnv(t)
	canvas := seedCanvasWithBlocks(t, env)
	seg := testutil.Block(t, canvas, templates.CustomerSegments)
	ch := testutil.Block(t, canvas, templates.Channels)

	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: seg.ID, Title: "Startups"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: ch.ID, Title: "Direct"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := env.entrySvc.List(env.ctx, EntryListInput{CanvasID: &canvas.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Pagination.Total != 2 {
		t.Fatalf("canvas entries = %d, want 2", all.Pagination.Total)
	}

	chOnly, err := env.entrySvc.List(env.ctx, EntryListInput{CanvasID: &canvas.ID, BlockType: templates.Channels})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if chOnly.Pagination.Total != 1 || chOnly.Entries[0].Title != "Direct" {
		t.Fatalf("channels filter wrong: %+v", chOnly.Entries)
	}

	_, err = env.entrySvc.List(env.ctx, EntryListInput{})
	wantCode(t, err, apierr.CodeValidation)
}
