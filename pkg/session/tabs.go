package session

import (
	"fmt"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mtab"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"
)

// TabIndex returns the position of the tab with the given id, or -1.
func (s *EditingSession) TabIndex(tabID string) int {
	for i := range s.Tabs {
		if s.Tabs[i].ID == tabID {
			return i
		}
	}
	return -1
}

// SwitchToTab flushes the active graph into its tab and loads the tab at
// index into the active slot. Switching to the already-active tab or to an
// out-of-range index is a no-op.
func (s *EditingSession) SwitchToTab(index int) {
	if index == s.ActiveTabIndex || index < 0 || index >= len(s.Tabs) {
		return
	}
	s.flushActiveTab()
	s.loadTabIntoActive(index)
}

// CloseTab removes the tab at index. The main tab is refused; closing an
// out-of-range index is a no-op. Closing the active editable tab syncs its
// graph into the macro definition first, so edits survive in the macro even
// though the tab view is gone. The active index re-clamps to the tab now at
// the same position, or the nearest lower one when the last tab closed.
func (s *EditingSession) CloseTab(index int) error {
	if index < 0 || index >= len(s.Tabs) {
		return nil
	}
	if s.Tabs[index].IsMain {
		return mtab.ErrMainTabNotClosable
	}

	closingActive := index == s.ActiveTabIndex
	if closingActive {
		s.flushActiveTab()
	}
	s.Tabs = append(s.Tabs[:index], s.Tabs[index+1:]...)

	switch {
	case closingActive:
		next := index
		if next >= len(s.Tabs) {
			next = len(s.Tabs) - 1
		}
		s.loadTabIntoActive(next)
	case index < s.ActiveTabIndex:
		s.ActiveTabIndex--
	}
	return nil
}

// ActivateTab loads the tab at index into the active slot without flushing
// the current one. Only the load path uses it, after placing tab contents
// directly; interactive navigation goes through SwitchToTab.
func (s *EditingSession) ActivateTab(index int) {
	if index < 0 || index >= len(s.Tabs) {
		index = 0
	}
	s.loadTabIntoActive(index)
}

// OpenLocalMacro opens a tab on one of the session's own macros. If a tab
// for the macro already exists it becomes active instead of duplicating.
func (s *EditingSession) OpenLocalMacro(id idwrap.IDWrap) error {
	idx, ok := msubgraph.FindByID(s.LocalMacros, id)
	if !ok {
		return fmt.Errorf("%w: %s", msubgraph.ErrSubGraphNotFound, id.String())
	}
	s.openMacroTab(s.LocalMacros[idx], "", false)
	return nil
}

// OpenLibraryMacro opens a read-only tab on an engine-library macro. An
// empty libraryID scans all libraries. Library tabs are never written back.
func (s *EditingSession) OpenLibraryMacro(libraryID string, id idwrap.IDWrap) error {
	def, owner, ok := s.findLibraryMacro(libraryID, id)
	if !ok {
		return fmt.Errorf("%w: %s", msubgraph.ErrSubGraphNotFound, id.String())
	}
	s.openMacroTab(def, owner, true)
	return nil
}

// OpenSubGraph opens the macro a subgraph: definition id points at,
// resolving local macros first and the library registry second. Used when
// the user drills into a macro-instance node.
func (s *EditingSession) OpenSubGraph(definitionID string) error {
	libraryID, macroText, ok := mnode.ParseSubGraphDefinitionID(definitionID)
	if !ok {
		return fmt.Errorf("%w: %q is not a sub-graph reference", msubgraph.ErrSubGraphNotFound, definitionID)
	}
	id, err := idwrap.NewText(macroText)
	if err != nil {
		return fmt.Errorf("%w: %q", msubgraph.ErrSubGraphNotFound, definitionID)
	}
	if libraryID == "" {
		if err := s.OpenLocalMacro(id); err == nil {
			return nil
		}
	}
	return s.OpenLibraryMacro(libraryID, id)
}

func (s *EditingSession) findLibraryMacro(libraryID string, id idwrap.IDWrap) (msubgraph.SubGraphDefinition, string, bool) {
	if libraryID != "" {
		def, ok := s.registry.Resolve(libraryID, id)
		return def, libraryID, ok
	}
	return s.registry.Find(id)
}

// openMacroTab implements the shared open transition: reuse an existing tab
// when one exists, otherwise sync the active graph out, convert the macro
// body to its editable form, and activate the new tab.
func (s *EditingSession) openMacroTab(def msubgraph.SubGraphDefinition, libraryID string, isLibrary bool) {
	tabID := def.ID.String()
	if existing := s.TabIndex(tabID); existing >= 0 {
		s.SwitchToTab(existing)
		return
	}

	s.flushActiveTab()
	s.Tabs = append(s.Tabs, mtab.GraphTab{
		ID:             tabID,
		Name:           def.Name,
		Graph:          tgraph.DeserializeDescriptionToGraph(def.Graph, s.catalog, s.logger),
		IsLibraryMacro: isLibrary,
		LibraryID:      libraryID,
	})
	s.loadTabIntoActive(len(s.Tabs) - 1)
}

// RestoreTab reopens a tab by its persisted id without touching the active
// slot, resolving local macros first and the library registry second. It
// reports false for ids that no longer resolve; restore skips those rather
// than failing the load.
func (s *EditingSession) RestoreTab(tabID string) bool {
	if s.TabIndex(tabID) >= 0 {
		return true
	}
	id, err := idwrap.NewText(tabID)
	if err != nil {
		return false
	}

	if idx, ok := msubgraph.FindByID(s.LocalMacros, id); ok {
		s.appendTab(s.LocalMacros[idx], "", false)
		return true
	}
	if def, owner, ok := s.registry.Find(id); ok {
		s.appendTab(def, owner, true)
		return true
	}
	return false
}

func (s *EditingSession) appendTab(def msubgraph.SubGraphDefinition, libraryID string, isLibrary bool) {
	s.Tabs = append(s.Tabs, mtab.GraphTab{
		ID:             def.ID.String(),
		Name:           def.Name,
		Graph:          tgraph.DeserializeDescriptionToGraph(def.Graph, s.catalog, s.logger),
		IsLibraryMacro: isLibrary,
		LibraryID:      libraryID,
	})
}

// SetTabViewState applies a restored pan and zoom to a tab's graph, and to
// the active graph as well when that tab is the active one.
func (s *EditingSession) SetTabViewState(tabID string, pan mnode.Position, zoom float64) {
	index := s.TabIndex(tabID)
	if index < 0 {
		return
	}
	s.Tabs[index].Graph.Pan = pan
	s.Tabs[index].Graph.SetZoom(zoom)
	if index == s.ActiveTabIndex {
		s.activeGraph.Pan = pan
		s.activeGraph.SetZoom(zoom)
	}
}
