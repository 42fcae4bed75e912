package services

import (
	"sort"

	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

// CompareExports diffs two persisted canvas exports. Entries are matched by
// uuid, never by row id: ids are stable within one database but the uuid is
// the identity that survives export. Only title and content changes count
// as modifications.
func CompareExports(a, b *types.CanvasExport, refA, refB types.SnapshotRef) *types.SnapshotDiff {
	changes := make(map[string]*types.BlockDiff)

	for _, blockType := range unionBlockTypes(a, b) {
		entriesA := entriesByUUID(a, blockType)
		entriesB := entriesByUUID(b, blockType)

		diff := &types.BlockDiff{
			Added:    []*types.EntryExport{},
			Removed:  []*types.EntryExport{},
			Modified: []*types.EntryModification{},
		}

		for _, e := range sortedEntries(entriesB) {
			prev, existed := entriesA[e.UUID]
			if !existed {
				diff.Added = append(diff.Added, e)
				continue
			}
			if prev.Title != e.Title || !contentEqual(prev.Content, e.Content) {
				diff.Modified = append(diff.Modified, &types.EntryModification{
					UUID:   e.UUID,
					Before: types.EntryVersion{Title: prev.Title, Content: prev.Content},
					After:  types.EntryVersion{Title: e.Title, Content: e.Content},
				})
			}
		}
		for _, e := range sortedEntries(entriesA) {
			if _, stillThere := entriesB[e.UUID]; !stillThere {
				diff.Removed = append(diff.Removed, e)
			}
		}

		if len(diff.Added) > 0 || len(diff.Removed) > 0 || len(diff.Modified) > 0 {
			changes[blockType] = diff
		}
	}

	return &types.SnapshotDiff{
		SnapshotA:  refA,
		SnapshotB:  refB,
		Changes:    changes,
		HasChanges: len(changes) > 0,
	}
}

// unionBlockTypes returns every block key present in either export, template
// blocks first in position order, then any unknown keys sorted.
func unionBlockTypes(a, b *types.CanvasExport) []string {
	seen := make(map[string]bool)
	collect := func(e *types.CanvasExport) {
		if e == nil {
			return
		}
		for k := range e.Blocks {
			seen[k] = true
		}
	}
	collect(a)
	collect(b)

	out := make([]string, 0, len(seen))
	for _, t := range templates.Types() {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	var extra []string
	for k := range seen {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func entriesByUUID(export *types.CanvasExport, blockType string) map[string]*types.EntryExport {
	out := make(map[string]*types.EntryExport)
	if export == nil {
		return out
	}
	block, ok := export.Blocks[blockType]
	if !ok || block == nil {
		return out
	}
	for _, e := range block.Entries {
		out[e.UUID] = e
	}
	return out
}

func sortedEntries(m map[string]*types.EntryExport) []*types.EntryExport {
	out := make([]*types.EntryExport, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].UUID < out[j].UUID
	})
	return out
}

func contentEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
