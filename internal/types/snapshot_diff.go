package types

// SnapshotDiff is the structural comparison of two snapshots of one canvas.
// Blocks with no additions, removals or modifications are omitted from
// Changes entirely.
type SnapshotDiff struct {
	SnapshotA  SnapshotRef           `json:"snapshot_a"`
	SnapshotB  SnapshotRef           `json:"snapshot_b"`
	Changes    map[string]*BlockDiff `json:"changes"`
	HasChanges bool                  `json:"has_changes"`
}

type SnapshotRef struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

type BlockDiff struct {
	Added    []*EntryExport       `json:"added"`
	Removed  []*EntryExport       `json:"removed"`
	Modified []*EntryModification `json:"modified"`
}

// EntryModification records a title or content change between snapshots.
// Position and metadata changes deliberately do not count as modifications.
type EntryModification struct {
	UUID   string       `json:"uuid"`
	Before EntryVersion `json:"before"`
	After  EntryVersion `json:"after"`
}

type EntryVersion struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}
