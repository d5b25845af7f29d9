// Package session owns the editing state of one open blueprint class: the
// tab set, the local macro list, the class variables, and the single live
// active graph. The active graph is a working copy of exactly one tab;
// sync-in and sync-out on tab transitions are the only paths between the
// active graph and tab storage, so no two components ever hold independent
// references to "the current graph".
package session

import (
	"log/slog"
	"time"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphedit"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphlayout"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mblueprint"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mtab"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"
)

// EditingSession is one open blueprint class under edit. Tabs always holds
// at least the main tab and ActiveTabIndex always points at a valid entry.
type EditingSession struct {
	Metadata       mblueprint.Metadata
	Tabs           []mtab.GraphTab
	ActiveTabIndex int
	LocalMacros    []msubgraph.SubGraphDefinition
	Variables      []mvariable.Variable

	activeGraph *mgraph.Graph
	catalog     *nodedef.Catalog
	registry    *macrolib.Registry
	logger      *slog.Logger
}

// New starts a session for a fresh blueprint class with an empty main graph.
func New(className string, catalog *nodedef.Catalog, registry *macrolib.Registry, logger *slog.Logger) *EditingSession {
	return Restore(mblueprint.NewMetadata(className, time.Now()), mgraph.New(), catalog, registry, logger)
}

// Restore starts a session around an already-built main graph. The load path
// uses it after deserializing the persisted asset; local macros, variables
// and extra tabs are applied afterwards through the session's own methods.
func Restore(metadata mblueprint.Metadata, mainGraph *mgraph.Graph, catalog *nodedef.Catalog, registry *macrolib.Registry, logger *slog.Logger) *EditingSession {
	if registry == nil {
		registry = macrolib.NewRegistry(nil)
	}
	s := &EditingSession{
		Metadata: metadata,
		Tabs:     []mtab.GraphTab{mtab.NewMain(mainGraph)},
		catalog:  catalog,
		registry: registry,
		logger:   logger,
	}
	s.activeGraph = mainGraph.Clone()
	return s
}

// ActiveGraph returns the live graph of the active tab. All editing
// operations target this graph; it is flushed back into tab storage on
// every tab transition and on save.
func (s *EditingSession) ActiveGraph() *mgraph.Graph {
	return s.activeGraph
}

func (s *EditingSession) ActiveTab() *mtab.GraphTab {
	return &s.Tabs[s.ActiveTabIndex]
}

// MainTab returns the never-closable tab holding the main event graph.
func (s *EditingSession) MainTab() *mtab.GraphTab {
	for i := range s.Tabs {
		if s.Tabs[i].IsMain {
			return &s.Tabs[i]
		}
	}
	return &s.Tabs[0]
}

func (s *EditingSession) Catalog() *nodedef.Catalog {
	return s.catalog
}

func (s *EditingSession) Registry() *macrolib.Registry {
	return s.registry
}

func (s *EditingSession) Logger() *slog.Logger {
	return s.logger
}

// MarkActiveDirty flags the active tab as carrying unsaved edits. The
// editor calls it after every mutation of the active graph.
func (s *EditingSession) MarkActiveDirty() {
	s.Tabs[s.ActiveTabIndex].IsDirty = true
}

// ClearDirty marks every tab clean. Runs after a successful save.
func (s *EditingSession) ClearDirty() {
	for i := range s.Tabs {
		s.Tabs[i].IsDirty = false
	}
}

// ArrangeActiveGraph auto-lays-out the active graph from its event entry
// points and refreshes comment containment for the moved nodes.
func (s *EditingSession) ArrangeActiveGraph() error {
	if err := graphlayout.ArrangeGraph(s.activeGraph, graphlayout.DefaultHorizontalConfig()); err != nil {
		return err
	}
	graphedit.RecomputeContainment(s.activeGraph)
	s.MarkActiveDirty()
	return nil
}

// FlushTabs syncs the active graph into its tab and writes every editable
// macro tab back into its definition. Save runs this before assembling the
// persisted asset so tab storage and the macro list are both current.
func (s *EditingSession) FlushTabs() {
	s.flushActiveTab()
	for i := range s.Tabs {
		if i == s.ActiveTabIndex {
			continue
		}
		s.writeBackMacro(&s.Tabs[i])
	}
}

// flushActiveTab snapshots the active graph into the active tab's storage
// and, for editable macro tabs, writes the macro definition through.
func (s *EditingSession) flushActiveTab() {
	tab := &s.Tabs[s.ActiveTabIndex]
	tab.Graph = s.activeGraph.Clone()
	s.writeBackMacro(tab)
}

// writeBackMacro converts an editable macro tab's stored graph back into its
// definition, re-deriving the call signature from the entry and exit nodes
// and bumping the modified timestamp. Main and library tabs are never
// written back.
func (s *EditingSession) writeBackMacro(tab *mtab.GraphTab) {
	if !tab.Editable() {
		return
	}
	id, err := idwrap.NewText(tab.ID)
	if err != nil {
		s.logger.Warn("macro tab id does not parse, skipping write-back", "tab", tab.ID, "error", err)
		return
	}
	idx, ok := msubgraph.FindByID(s.LocalMacros, id)
	if !ok {
		s.logger.Warn("macro tab has no backing definition, skipping write-back", "tab", tab.ID)
		return
	}
	desc := tgraph.SerializeGraphToDescription(tab.Graph, s.catalog, s.logger)
	s.LocalMacros[idx].Graph = desc
	s.LocalMacros[idx].Interface = msubgraph.InterfaceFromDescription(desc)
	s.LocalMacros[idx].Metadata.ModifiedAt = time.Now()
}

// loadTabIntoActive makes the tab at index the active one, cloning its
// stored graph into the active slot. Callers flush the previous tab first.
func (s *EditingSession) loadTabIntoActive(index int) {
	s.ActiveTabIndex = index
	s.activeGraph = s.Tabs[index].Graph.Clone()
}
