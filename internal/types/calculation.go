package types

// CanvasCalculation is the completeness/health report for one canvas.
type CanvasCalculation struct {
	CanvasID            uint                   `json:"canvas_id"`
	CanvasName          string                 `json:"canvas_name"`
	CompletenessPercent float64                `json:"completeness_percent"`
	Health              string                 `json:"health"`
	FilledBlocks        int                    `json:"filled_blocks"`
	TotalBlocks         int                    `json:"total_blocks"`
	TotalEntries        int                    `json:"total_entries"`
	BlockStats          map[string]*BlockStats `json:"block_stats"`
	MissingBlocks       []*MissingBlock        `json:"missing_blocks"`
	Recommendations     []string               `json:"recommendations"`
}

type BlockStats struct {
	Label                 string   `json:"label"`
	EntryCount            int      `json:"entry_count"`
	IsFilled              bool     `json:"is_filled"`
	GuidingQuestions      []string `json:"guiding_questions"`
	GuidingQuestionsCount int      `json:"guiding_questions_count"`
}

// MissingBlock names a template block with no entries, carrying its guiding
// questions so a caller can prompt for content.
type MissingBlock struct {
	BlockType        string   `json:"block_type"`
	Label            string   `json:"label"`
	GuidingQuestions []string `json:"guiding_questions"`
}
