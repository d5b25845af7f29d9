// Package macrolib loads and serves the engine's global macro libraries:
// read-only collections of sub-graph definitions shipped beside the engine
// or its plugins. Libraries are immutable after load; refreshing means
// loading a new registry and swapping it in wholesale.
package macrolib

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/fuzzyfinder"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/zstdcompress"
)

const libraryExtension = ".json"

var ErrLibraryNotFound = errors.New("macro library not found")

// Library is one shipped collection of macros. ID is the file base name and
// is what qualified references (`<library>.<macro-id>`) use.
type Library struct {
	ID          string                         `json:"-"`
	Name        string                         `json:"name"`
	Version     string                         `json:"version,omitempty"`
	Description string                         `json:"description,omitempty"`
	Macros      []msubgraph.SubGraphDefinition `json:"macros"`
}

// FindMacro returns the macro with the given id.
func (l Library) FindMacro(macroID idwrap.IDWrap) (msubgraph.SubGraphDefinition, bool) {
	if i, ok := msubgraph.FindByID(l.Macros, macroID); ok {
		return l.Macros[i], true
	}
	return msubgraph.SubGraphDefinition{}, false
}

// Registry holds every loaded library. Read-only after construction, so
// concurrent readers need no locking.
type Registry struct {
	libraries []Library
}

// NewRegistry builds a registry from pre-parsed libraries, sorted by id.
// Used by tests and by embedders that ship libraries in memory.
func NewRegistry(libraries []Library) *Registry {
	sorted := make([]Library, len(libraries))
	copy(sorted, libraries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Registry{libraries: sorted}
}

// LoadDir reads every `<name>.json` and `<name>.json.zst` library document
// in dir. A file that fails to read or parse is skipped with a warning;
// shipping one broken plugin library must not take down the rest. A missing
// directory yields an empty registry.
func LoadDir(dir string, logger *slog.Logger) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewRegistry(nil), nil
		}
		return nil, fmt.Errorf("read macro library dir %s: %w", dir, err)
	}

	var libraries []Library
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, libraryExtension) && !strings.HasSuffix(name, libraryExtension+zstdcompress.Extension) {
			continue
		}

		path := filepath.Join(dir, name)
		lib, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping macro library", "path", path, "error", err)
			continue
		}
		libraries = append(libraries, lib)
	}

	return NewRegistry(libraries), nil
}

// LoadFile parses one library document, decompressing `.zst` files first.
func LoadFile(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, err
	}

	name := filepath.Base(path)
	if zstdcompress.IsCompressedPath(name) {
		data, err = zstdcompress.Decompress(data)
		if err != nil {
			return Library{}, fmt.Errorf("decompress %s: %w", path, err)
		}
		name = zstdcompress.TrimExtension(name)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return Library{}, fmt.Errorf("parse macro library: %w", err)
	}

	lib.ID = strings.TrimSuffix(name, libraryExtension)
	if lib.Name == "" {
		lib.Name = lib.ID
	}
	return lib, nil
}

// Libraries returns every loaded library, sorted by id.
func (r *Registry) Libraries() []Library {
	return r.libraries
}

// Library returns one library by id.
func (r *Registry) Library(id string) (Library, bool) {
	for _, lib := range r.libraries {
		if lib.ID == id {
			return lib, true
		}
	}
	return Library{}, false
}

// Resolve looks up a macro through its qualified reference. An empty
// libraryID scans every library in id order and returns the first hit, for
// references persisted before libraries were qualified.
func (r *Registry) Resolve(libraryID string, macroID idwrap.IDWrap) (msubgraph.SubGraphDefinition, bool) {
	if libraryID != "" {
		lib, ok := r.Library(libraryID)
		if !ok {
			return msubgraph.SubGraphDefinition{}, false
		}
		return lib.FindMacro(macroID)
	}
	def, _, ok := r.Find(macroID)
	return def, ok
}

// Find scans every library for the macro id and reports which library owns
// it.
func (r *Registry) Find(macroID idwrap.IDWrap) (msubgraph.SubGraphDefinition, string, bool) {
	for _, lib := range r.libraries {
		if def, ok := lib.FindMacro(macroID); ok {
			return def, lib.ID, true
		}
	}
	return msubgraph.SubGraphDefinition{}, "", false
}

// MacroCount totals the macros across all libraries.
func (r *Registry) MacroCount() int {
	n := 0
	for _, lib := range r.libraries {
		n += len(lib.Macros)
	}
	return n
}

// SearchHit is one macro matched by Search, qualified by its library.
type SearchHit struct {
	LibraryID string
	Macro     msubgraph.SubGraphDefinition
}

// Search fuzzy-matches macro names, keywords and categories across all
// libraries, best matches first.
func (r *Registry) Search(query string) []SearchHit {
	var keys []string
	var hits []SearchHit
	for _, lib := range r.libraries {
		for _, macro := range lib.Macros {
			text := macro.Name + " " + macro.Config.Category + " " + strings.Join(macro.Config.Keywords, " ")
			keys = append(keys, text)
			hits = append(hits, SearchHit{LibraryID: lib.ID, Macro: macro})
		}
	}
	if query == "" {
		return hits
	}

	ranks := fuzzyfinder.RankFindFold(keys, query)
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })

	out := make([]SearchHit, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, hits[rank.OriginalIndex])
	}
	return out
}
