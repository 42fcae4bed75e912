package tools

import (
	"context"
	"sort"
	"sync"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/logger"
)

// Info is the catalog entry returned by List.
type Info struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}

type Registry struct {
	mu    sync.RWMutex
	log   *logger.Logger
	tools map[string]Tool
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		log:   log.With("service", "ToolRegistry"),
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, Info{Name: t.Name(), Description: t.Description(), Schema: t.Schema()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute dispatches to the named tool. A tool panic is contained and
// reported as an execution failure instead of taking the process down.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (result *Result) {
	tool, ok := r.Get(name)
	if !ok {
		return Fail(apierr.CodeNotFound, "Unknown tool: "+name)
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tool panicked", "tool", name, "panic", rec)
			result = Fail(apierr.CodeExecution, "Tool execution failed")
		}
	}()
	if args == nil {
		args = map[string]interface{}{}
	}
	return tool.Execute(ctx, args)
}
