package session

import (
	"sort"
	"strings"
	"time"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/fuzzyfinder"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
)

// CreateNewLocalMacro synthesizes a minimal macro (entry and exit nodes with
// one execution pin pair), stores it in the local macro list and opens a tab
// on it. The new tab becomes active.
func (s *EditingSession) CreateNewLocalMacro(name string) msubgraph.SubGraphDefinition {
	if name == "" {
		name = "New Macro"
	}
	def := msubgraph.NewLocalMacro(idwrap.NewNow(), name, time.Now())
	s.LocalMacros = append(s.LocalMacros, def)
	s.openMacroTab(def, "", false)
	s.MarkActiveDirty()
	return def
}

// ResolveMacro finds a macro by id: the session's local macros first, then
// the library registry. The returned library id is empty for local macros.
func (s *EditingSession) ResolveMacro(libraryID string, id idwrap.IDWrap) (msubgraph.SubGraphDefinition, string, bool) {
	if libraryID == "" {
		if idx, ok := msubgraph.FindByID(s.LocalMacros, id); ok {
			return s.LocalMacros[idx], "", true
		}
	}
	return s.findLibraryMacro(libraryID, id)
}

// MacroHit is one macro matched by SearchMacros. LibraryID is empty for the
// session's own macros.
type MacroHit struct {
	LibraryID string
	Macro     msubgraph.SubGraphDefinition
}

// SearchMacros fuzzy-matches macro names, keywords and categories across the
// local list and every loaded library, best matches first. Local macros are
// listed ahead of equally ranked library macros, mirroring resolution order.
func (s *EditingSession) SearchMacros(query string) []MacroHit {
	var keys []string
	var hits []MacroHit
	for _, macro := range s.LocalMacros {
		keys = append(keys, macroSearchText(macro))
		hits = append(hits, MacroHit{Macro: macro})
	}
	for _, lib := range s.registry.Libraries() {
		for _, macro := range lib.Macros {
			keys = append(keys, macroSearchText(macro))
			hits = append(hits, MacroHit{LibraryID: lib.ID, Macro: macro})
		}
	}
	if query == "" {
		return hits
	}

	ranks := fuzzyfinder.RankFindFold(keys, query)
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })

	out := make([]MacroHit, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, hits[rank.OriginalIndex])
	}
	return out
}

func macroSearchText(macro msubgraph.SubGraphDefinition) string {
	return macro.Name + " " + macro.Config.Category + " " + strings.Join(macro.Config.Keywords, " ")
}
