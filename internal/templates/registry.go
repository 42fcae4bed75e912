// Package templates holds the static Osterwalder block definitions. The
// registry is parsed once from the embedded YAML and never mutated; block
// labels and positions are copied onto rows at canvas creation, so a later
// change to the YAML does not alter existing canvases.
package templates

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	CustomerSegments      = "customer_segments"
	ValuePropositions     = "value_propositions"
	Channels              = "channels"
	CustomerRelationships = "customer_relationships"
	RevenueStreams        = "revenue_streams"
	KeyResources          = "key_resources"
	KeyActivities         = "key_activities"
	KeyPartners           = "key_partners"
	CostStructure         = "cost_structure"
)

type Definition struct {
	Type             string   `yaml:"type" json:"type"`
	Label            string   `yaml:"label" json:"label"`
	Description      string   `yaml:"description" json:"description"`
	Position         int      `yaml:"position" json:"position"`
	GuidingQuestions []string `yaml:"guiding_questions" json:"guiding_questions"`
}

//go:embed templates.yaml
var rawTemplates []byte

var (
	loadOnce sync.Once
	loadErr  error
	all      []Definition
	byType   map[string]Definition
)

// Load parses the embedded registry. It is called implicitly by every
// accessor; calling it once at startup surfaces a malformed registry early.
func Load() error {
	loadOnce.Do(func() {
		var doc struct {
			BlockTypes []Definition `yaml:"block_types"`
		}
		if err := yaml.Unmarshal(rawTemplates, &doc); err != nil {
			loadErr = fmt.Errorf("parse block templates: %w", err)
			return
		}
		if len(doc.BlockTypes) == 0 {
			loadErr = fmt.Errorf("block templates: empty registry")
			return
		}
		defs := doc.BlockTypes
		sort.SliceStable(defs, func(i, j int) bool { return defs[i].Position < defs[j].Position })
		index := make(map[string]Definition, len(defs))
		for _, d := range defs {
			if d.Type == "" || d.Label == "" || d.Position <= 0 {
				loadErr = fmt.Errorf("block templates: invalid definition %+v", d)
				return
			}
			if _, dup := index[d.Type]; dup {
				loadErr = fmt.Errorf("block templates: duplicate type %q", d.Type)
				return
			}
			index[d.Type] = d
		}
		all = defs
		byType = index
	})
	return loadErr
}

// All returns the definitions in template position order.
func All() []Definition {
	mustLoad()
	out := make([]Definition, len(all))
	copy(out, all)
	return out
}

func Get(blockType string) (Definition, bool) {
	mustLoad()
	d, ok := byType[blockType]
	return d, ok
}

// Types returns the block type keys in template position order.
func Types() []string {
	mustLoad()
	out := make([]string, 0, len(all))
	for _, d := range all {
		out = append(out, d.Type)
	}
	return out
}

func Count() int {
	mustLoad()
	return len(all)
}

func IsValidType(blockType string) bool {
	mustLoad()
	_, ok := byType[blockType]
	return ok
}

func mustLoad() {
	if err := Load(); err != nil {
		panic(err)
	}
}
