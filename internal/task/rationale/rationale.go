// Package rationale implements the catalogue of named PreDefinedRationale
// templates. A template is a factory that produces a deterministic
// sequence of task.RationaleItem whose weights sum to 1.0, all
// is_complete=false, with stable ids starting at 1. New templates are
// added by registering a factory, never by branching on the name at call sites.
package rationale

import (
	"fmt"
	"sort"

	"github.com/cpmforge/scheduler/internal/task"
)

// Factory produces a fresh RationaleItem sequence for one template.
type Factory func() []task.RationaleItem

var registry = map[string]Factory{
	"fifty_fifty": func() []task.RationaleItem {
		return items("Started", 0.5, "Finished", 0.5)
	},
	"twenty_five_seventy_five": func() []task.RationaleItem {
		return items("Started", 0.25, "Finished", 0.75)
	},
	"seventy_five_twenty_five": func() []task.RationaleItem {
		return items("Started", 0.75, "Finished", 0.25)
	},
	"not_started_complete": func() []task.RationaleItem {
		return items("Not started", 0.0, "Complete", 1.0)
	},
	"thirds": func() []task.RationaleItem {
		return items("First third", 1.0/3, "Second third", 1.0/3, "Final third", 1.0/3)
	},
}

func items(nameWeight ...interface{}) []task.RationaleItem {
	out := make([]task.RationaleItem, 0, len(nameWeight)/2)
	var id int32 = 1
	for i := 0; i < len(nameWeight); i += 2 {
		out = append(out, task.RationaleItem{
			ID:     id,
			Name:   nameWeight[i].(string),
			Weight: nameWeight[i+1].(float64),
		})
		id++
	}
	return out
}

// Register adds a new named template to the catalogue. It overwrites any
// existing factory registered under the same name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Apply returns a fresh RationaleItem sequence for the named template, or
// an error if the name is not in the catalogue.
func Apply(name string) ([]task.RationaleItem, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("rationale: unknown template %q", name)
	}
	return factory(), nil
}

// Names returns the registered template names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
