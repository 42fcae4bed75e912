package services

import (
	"encoding/json"
	"testing"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/testutil"
	"github.com/yungbote/bmc-backend/internal/types"
)

func TestSnapshotVersionsIncrement(t *testing.T) {
	env := newTestEnv(t)
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Versioned"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}

	first, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("first version = %d, want 1", first.Version)
	}
	second, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("second version = %d, want 2", second.Version)
	}
}

func TestSnapshotCapturesExportShape(t *testing.T) {
	env := newTestEnv(t)
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Captured"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}
	block := testutil.Block(t, canvas, templates.ValuePropositions)
	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Fast onboarding", Content: strPtr("under a minute")}); err != nil {
		t.Fatalf("entry: %v", err)
	}

	snapshot, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	var export types.CanvasExport
	if err := json.Unmarshal(snapshot.SnapshotData, &export); err != nil {
		t.Fatalf("decode snapshot_data: %v", err)
	}
	if export.Canvas.ID != canvas.ID || export.Canvas.Name != "Captured" {
		t.Fatalf("canvas info wrong: %+v", export.Canvas)
	}
	if len(export.Blocks) != 9 {
		t.Fatalf("export blocks = %d, want 9", len(export.Blocks))
	}
	vp := export.Blocks[templates.ValuePropositions]
	if vp == nil || len(vp.Entries) != 1 {
		t.Fatalf("value_propositions export wrong: %+v", vp)
	}
	if vp.Entries[0].Title != "Fast onboarding" || vp.Entries[0].UUID == "" {
		t.Fatalf("entry export wrong: %+v", vp.Entries[0])
	}
	// Empty blocks are present with empty entry lists.
	if export.Blocks[templates.KeyPartners] == nil || len(export.Blocks[templates.KeyPartners].Entries) != 0 {
		t.Fatalf("empty block missing from export")
	}
}

func TestSnapshotListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Listed"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil); err != nil {
			t.Fatalf("snapshot %d: %v", i+1, err)
		}
	}
	list, err := env.snapshotSvc.List(env.ctx, canvas.ID, nil, listParamsEmpty())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Pagination.Total != 3 {
		t.Fatalf("total = %d, want 3", list.Pagination.Total)
	}
	for i, s := range list.Snapshots {
		if want := 3 - i; s.Version != want {
			t.Fatalf("snapshot %d version = %d, want %d", i, s.Version, want)
		}
	}
}

func TestCompareSnapshotsEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Compared"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}
	block := testutil.Block(t, canvas, templates.ValuePropositions)

	entry, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Original", Content: strPtr("v1")})
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	v1, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("v1: %v", err)
	}

	if _, err := env.entrySvc.Update(env.ctx, entry.ID, EntryUpdateInput{Content: strPtr("v2")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := env.entrySvc.Create(env.ctx, EntryCreateInput{BlockID: block.ID, Title: "Added later"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	v2, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("v2: %v", err)
	}

	diff, err := env.snapshotSvc.Compare(env.ctx, v1.ID, v2.ID, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !diff.HasChanges {
		t.Fatal("expected changes")
	}
	if len(diff.Changes) != 1 {
		t.Fatalf("changed blocks = %d, want 1: %+v", len(diff.Changes), diff.Changes)
	}
	vp := diff.Changes[templates.ValuePropositions]
	if vp == nil || len(vp.Added) != 1 || len(vp.Modified) != 1 || len(vp.Removed) != 0 {
		t.Fatalf("value_propositions diff wrong: %+v", vp)
	}
	if diff.SnapshotA.Version != 1 || diff.SnapshotB.Version != 2 {
		t.Fatalf("refs wrong: %+v %+v", diff.SnapshotA, diff.SnapshotB)
	}
}

func TestCompareSnapshotsOfDifferentCanvases(t *testing.T) {
	env := newTestEnv(t)
	c1, _ := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "One"})
	c2, _ := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Two"})
	s1, err := env.snapshotSvc.Create(env.ctx, c1.ID, nil)
	if err != nil {
		t.Fatalf("s1: %v", err)
	}
	s2, err := env.snapshotSvc.Create(env.ctx, c2.ID, nil)
	if err != nil {
		t.Fatalf("s2: %v", err)
	}
	_, err = env.snapshotSvc.Compare(env.ctx, s1.ID, s2.ID, nil)
	wantCode(t, err, apierr.CodeValidation)
}

func TestSnapshotTeamScoping(t *testing.T) {
	env := newTestEnv(t)
	canvas, _ := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Scoped"})
	snapshot, err := env.snapshotSvc.Create(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	foreign := env.otherTeamCtx(t)

	_, err = env.snapshotSvc.Get(foreign, snapshot.ID, nil)
	wantCode(t, err, apierr.CodeNotFound)
	_, err = env.snapshotSvc.Create(foreign, canvas.ID, nil)
	wantCode(t, err, apierr.CodeNotFound)
	_, err = env.snapshotSvc.List(foreign, canvas.ID, nil, listParamsEmpty())
	wantCode(t, err, apierr.CodeNotFound)
}
