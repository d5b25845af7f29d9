//nolint:revive // exported
package mtab

import (
	"errors"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
)

// MainTabID is the reserved id of the tab holding the main event graph.
// Macro tabs use the macro's ULID string.
const MainTabID = "main"

var ErrMainTabNotClosable = errors.New("main tab cannot be closed")

// GraphTab is one open, independently navigable graph. Graph holds a
// working copy; the editing session syncs it against the active graph on
// every tab switch. Exactly one tab has IsMain set and it is never
// removable. IsLibraryMacro marks read-only provenance: the tab was opened
// from an engine library and is never written back.
type GraphTab struct {
	ID             string
	Name           string
	Graph          *mgraph.Graph
	IsMain         bool
	IsDirty        bool
	IsLibraryMacro bool
	LibraryID      string
}

func NewMain(graph *mgraph.Graph) GraphTab {
	return GraphTab{
		ID:     MainTabID,
		Name:   "Event Graph",
		Graph:  graph,
		IsMain: true,
	}
}

// Editable reports whether sync-out may write the tab's graph back into a
// macro definition.
func (t *GraphTab) Editable() bool {
	return !t.IsMain && !t.IsLibraryMacro
}
