package services

import (
	"strings"
	"testing"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

func buildCanvas(t *testing.T, entriesPerBlock map[string]int) *types.Canvas {
	t.Helper()
	if err := templates.Load(); err != nil {
		t.Fatalf("templates: %v", err)
	}
	canvas := &types.Canvas{ID: 1, Name: "Test Model", Status: types.CanvasStatusDraft}
	var blockID uint
	for _, def := range templates.All() {
		blockID++
		block := &types.BuildingBlock{
			ID:        blockID,
			CanvasID:  canvas.ID,
			BlockType: def.Type,
			Label:     def.Label,
			Position:  def.Position,
		}
		for i := 0; i < entriesPerBlock[def.Type]; i++ {
			block.Entries = append(block.Entries, &types.Entry{
				ID:      blockID*100 + uint(i),
				BlockID: block.ID,
				Title:   "entry",
			})
		}
		canvas.Blocks = append(canvas.Blocks, block)
	}
	return canvas
}

func TestCalculateEmptyCanvas(t *testing.T) {
	calc := CalculateCanvas(buildCanvas(t, nil))
	if calc.CompletenessPercent != 0 {
		t.Fatalf("completeness = %v, want 0", calc.CompletenessPercent)
	}
	if calc.Health != HealthEmpty {
		t.Fatalf("health = %q, want %q", calc.Health, HealthEmpty)
	}
	if len(calc.MissingBlocks) != 9 {
		t.Fatalf("missing blocks = %d, want 9", len(calc.MissingBlocks))
	}
	if calc.MissingBlocks[0].BlockType != templates.CustomerSegments {
		t.Fatalf("first missing block = %q, want %q", calc.MissingBlocks[0].BlockType, templates.CustomerSegments)
	}
	if len(calc.Recommendations) != 1 {
		t.Fatalf("recommendations = %d, want 1 combined sentence", len(calc.Recommendations))
	}
}

func TestCalculateHealthTiers(t *testing.T) {
	cases := []struct {
		name        string
		filled      int
		wantPercent float64
		wantHealth  string
	}{
		{name: "one_block_minimal", filled: 1, wantPercent: 11.1, wantHealth: HealthMinimal},
		{name: "four_blocks_minimal", filled: 4, wantPercent: 44.4, wantHealth: HealthMinimal},
		{name: "five_blocks_partial", filled: 5, wantPercent: 55.6, wantHealth: HealthPartial},
		{name: "seven_blocks_partial", filled: 7, wantPercent: 77.8, wantHealth: HealthPartial},
		{name: "eight_blocks_good", filled: 8, wantPercent: 88.9, wantHealth: HealthGood},
		{name: "all_blocks_good", filled: 9, wantPercent: 100, wantHealth: HealthGood},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := map[string]int{}
			for i, blockType := range templates.Types() {
				if i < tc.filled {
					entries[blockType] = 2
				}
			}
			calc := CalculateCanvas(buildCanvas(t, entries))
			if calc.CompletenessPercent != tc.wantPercent {
				t.Fatalf("completeness = %v, want %v", calc.CompletenessPercent, tc.wantPercent)
			}
			if calc.Health != tc.wantHealth {
				t.Fatalf("health = %q, want %q", calc.Health, tc.wantHealth)
			}
			if calc.FilledBlocks != tc.filled {
				t.Fatalf("filled = %d, want %d", calc.FilledBlocks, tc.filled)
			}
		})
	}
}

func TestCalculateRecommendations(t *testing.T) {
	// Two blocks with one entry each, three with several, four empty.
	entries := map[string]int{
		templates.CustomerSegments:  1,
		templates.ValuePropositions: 3,
		templates.Channels:          1,
		templates.RevenueStreams:    2,
		templates.KeyResources:      2,
	}
	calc := CalculateCanvas(buildCanvas(t, entries))

	if calc.TotalEntries != 9 {
		t.Fatalf("total entries = %d, want 9", calc.TotalEntries)
	}
	if len(calc.MissingBlocks) != 4 {
		t.Fatalf("missing blocks = %d, want 4", len(calc.MissingBlocks))
	}
	// One combined missing sentence plus one per single-entry block.
	if len(calc.Recommendations) != 3 {
		t.Fatalf("recommendations = %d, want 3: %v", len(calc.Recommendations), calc.Recommendations)
	}
	if !strings.Contains(calc.Recommendations[0], "Customer Relationships") {
		t.Fatalf("combined recommendation missing a label: %q", calc.Recommendations[0])
	}
	if !strings.Contains(calc.Recommendations[1], "Customer Segments") {
		t.Fatalf("single-entry recommendation order wrong: %q", calc.Recommendations[1])
	}
	if !strings.Contains(calc.Recommendations[2], "Channels") {
		t.Fatalf("single-entry recommendation order wrong: %q", calc.Recommendations[2])
	}

	stats := calc.BlockStats[templates.ValuePropositions]
	if stats == nil || stats.EntryCount != 3 || !stats.IsFilled {
		t.Fatalf("value_propositions stats wrong: %+v", stats)
	}
	if stats.GuidingQuestionsCount != len(stats.GuidingQuestions) {
		t.Fatalf("guiding question count mismatch: %+v", stats)
	}
}

func TestCalculateUsesBlockRowLabels(t *testing.T) {
	canvas := buildCanvas(t, map[string]int{templates.CustomerSegments: 1})
	for _, b := range canvas.Blocks {
		if b.BlockType == templates.CustomerSegments {
			b.Label = "Audiences"
		}
	}

	calc := CalculateCanvas(canvas)
	if stats := calc.BlockStats[templates.CustomerSegments]; stats == nil || stats.Label != "Audiences" {
		t.Fatalf("customer_segments stats = %+v, want renamed label", stats)
	}
	found := false
	for _, r := range calc.Recommendations {
		if strings.Contains(r, "Audiences") {
			found = true
		}
		if strings.Contains(r, "Customer Segments") {
			t.Fatalf("recommendation uses template label: %q", r)
		}
	}
	if !found {
		t.Fatal("no recommendation mentions the renamed block")
	}
}

func TestCalculationServiceLoadsScopedCanvas(t *testing.T) {
	env := newTestEnv(t)
	canvas, err := env.canvasSvc.Create(env.ctx, CanvasCreateInput{Name: "Calc Canvas"})
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}

	calc, err := env.calcSvc.Calculate(env.ctx, canvas.ID, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if calc.CanvasID != canvas.ID || calc.CanvasName != "Calc Canvas" {
		t.Fatalf("calc identity wrong: %+v", calc)
	}
	if calc.Health != HealthEmpty {
		t.Fatalf("health = %q, want empty", calc.Health)
	}

	foreign := env.otherTeamCtx(t)
	_, err = env.calcSvc.Calculate(foreign, canvas.ID, nil)
	wantCode(t, err, apierr.CodeNotFound)
}

func TestCalculateBlockStatsCoverAllTemplates(t *testing.T) {
	calc := CalculateCanvas(buildCanvas(t, map[string]int{templates.CostStructure: 1}))
	if len(calc.BlockStats) != 9 {
		t.Fatalf("block stats = %d, want 9", len(calc.BlockStats))
	}
	empty := calc.BlockStats[templates.KeyPartners]
	if empty == nil || empty.IsFilled || empty.EntryCount != 0 {
		t.Fatalf("key_partners stats wrong: %+v", empty)
	}
}
