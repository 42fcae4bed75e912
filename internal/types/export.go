package types

// The export shape is the one wire format with forward-compatibility weight:
// it is persisted verbatim inside snapshot_data and consumed by the snapshot
// differ and the export operation, so field names must stay stable.

type CanvasExport struct {
	Canvas CanvasExportInfo        `json:"canvas"`
	Blocks map[string]*BlockExport `json:"blocks"`
}

type CanvasExportInfo struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	TeamID      uint    `json:"team_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type BlockExport struct {
	ID       uint           `json:"id"`
	Label    string         `json:"label"`
	Position int            `json:"position"`
	Entries  []*EntryExport `json:"entries"`
}

type EntryExport struct {
	ID       uint                   `json:"id"`
	UUID     string                 `json:"uuid"`
	Title    string                 `json:"title"`
	Content  *string                `json:"content"`
	Position int                    `json:"position"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CanvasSections is the export operation's document-oriented view: every
// template block appears as a section in template order, filled or not.
type CanvasSections struct {
	Canvas   CanvasExportInfo `json:"canvas"`
	Sections []*CanvasSection `json:"sections"`
	Summary  ExportSummary    `json:"summary"`
}

type CanvasSection struct {
	BlockType   string         `json:"block_type"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Entries     []*EntryExport `json:"entries"`
	EntryCount  int            `json:"entry_count"`
}

type ExportSummary struct {
	TotalEntries int `json:"total_entries"`
	FilledBlocks int `json:"filled_blocks"`
	TotalBlocks  int `json:"total_blocks"`
}
