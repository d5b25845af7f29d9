// Package compiler turns a blueprint class into Rust source files: one file
// per event entry point, a shared macros file when macro instances are
// reachable, and a mod.rs tying the set together. Compilation is
// all-or-nothing; callers only write output once every event generated.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
)

// Input is everything one compile run consumes. Graph is the class's main
// event graph; macro bodies come from LocalMacros and Registry in their
// stored description form and are expanded on first use.
type Input struct {
	ClassName   string
	Graph       *mgraph.Graph
	LocalMacros []msubgraph.SubGraphDefinition
	Variables   []mvariable.Variable
	Registry    *macrolib.Registry
	Catalog     *nodedef.Catalog
}

// File is one generated source file. Name is relative to the output
// directory chosen by the caller.
type File struct {
	Name    string
	Content string
}

// Result carries the generated file set and the event function names it
// exports, in generation order.
type Result struct {
	Files  []File
	Events []string
}

// Compile generates Rust source for every event node in the main graph.
// Any node anywhere in the graph that does not resolve against the catalog
// or a macro definition fails the whole run, reachable or not, so stale
// assets surface immediately instead of producing partial output.
func Compile(in Input, logger *slog.Logger) (Result, error) {
	if in.Graph == nil || in.Catalog == nil {
		return Result{}, errors.New("compile input needs a graph and a catalog")
	}
	if logger == nil {
		logger = slog.Default()
	}

	gen := newGenerator(in, logger)
	if err := gen.validateNodes(in.Graph); err != nil {
		return Result{}, err
	}

	events := eventEntryNodes(in.Graph)
	if len(events) == 0 {
		return Result{}, ErrNoEventNodes
	}

	var result Result
	seen := map[string]int{}
	for _, node := range events {
		fnName := eventFunctionName(node, seen)
		file, err := gen.generateEvent(node, fnName)
		if err != nil {
			return Result{}, fmt.Errorf("event %s: %w", fnName, err)
		}
		result.Files = append(result.Files, file)
		result.Events = append(result.Events, fnName)
	}

	if macros := gen.macrosFile(); macros != nil {
		result.Files = append(result.Files, *macros)
	}
	result.Files = append([]File{gen.modFile(result.Files)}, result.Files...)

	logger.Info("blueprint compiled",
		"class", in.ClassName,
		"events", len(result.Events),
		"files", len(result.Files))
	return result, nil
}

// validateNodes resolves every node in a graph before any code is emitted.
func (g *generator) validateNodes(graph *mgraph.Graph) error {
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if node.Kind == mnode.NODE_KIND_MACRO_INSTANCE {
			if _, _, err := g.resolveMacroInstance(node); err != nil {
				return err
			}
			continue
		}
		if _, ok := g.in.Catalog.Get(node.DefinitionID); !ok {
			return &UnresolvedNodeTypeError{NodeID: node.ID, DefinitionID: node.DefinitionID}
		}
	}
	return nil
}

// eventEntryNodes returns the graph's event nodes ordered by title then id,
// so repeated compiles of the same asset emit files in the same order.
func eventEntryNodes(g *mgraph.Graph) []*mnode.Node {
	var events []*mnode.Node
	for i := range g.Nodes {
		if g.Nodes[i].Kind == mnode.NODE_KIND_EVENT {
			events = append(events, &g.Nodes[i])
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Title != events[j].Title {
			return events[i].Title < events[j].Title
		}
		return events[i].ID.Compare(events[j].ID) < 0
	})
	return events
}

func eventFunctionName(node *mnode.Node, seen map[string]int) string {
	var base string
	switch node.DefinitionID {
	case "event.begin_play":
		base = "on_begin_play"
	case "event.tick":
		base = "on_tick"
	case "event.actor_overlap":
		base = "on_actor_overlap"
	case "event.custom":
		name := strings.TrimSpace(node.Properties[nodedef.ParamEventName])
		if name == "" {
			name = "custom_event"
		}
		base = "event_" + sanitizeIdent(name)
	default:
		title := node.Title
		if title == "" {
			title = node.DefinitionID
		}
		base = "event_" + sanitizeIdent(title)
	}
	seen[base]++
	if seen[base] > 1 {
		return fmt.Sprintf("%s_%d", base, seen[base])
	}
	return base
}
