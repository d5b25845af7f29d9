package blueprintjson

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mblueprint"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraphdesc"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mtab"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/session"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"
)

const (
	legacyMacrosFile = "macros.json"
	legacyTabsFile   = "tabs.json"
	legacyVarsFile   = "vars_save.json"
)

// documentEnvelope sniffs which format the body is in without committing to
// a full decode. Unified documents always carry format_version or main_graph;
// a legacy document is a bare graph description whose only top-level marker
// is the nodes map.
type documentEnvelope struct {
	FormatVersion *int            `json:"format_version"`
	MainGraph     json.RawMessage `json:"main_graph"`
	Nodes         json.RawMessage `json:"nodes"`
}

// legacyTab mirrors the historical tabs.json entry. Name and library hints
// are advisory; restore re-resolves everything by id.
type legacyTab struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsMain         bool   `json:"is_main"`
	IsLibraryMacro bool   `json:"is_library_macro"`
	LibraryID      string `json:"library_id"`
}

// Load reads an asset document and rebuilds the editing session it
// describes. A main graph that does not parse is fatal; auxiliary state
// (macros, tabs, variables, view state) degrades to defaults with a logged
// warning so one stale reference never blocks opening the class.
func Load(path string, catalog *nodedef.Catalog, registry *macrolib.Registry, logger *slog.Logger) (*session.EditingSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blueprint asset: %w", err)
	}
	body := stripHeader(data)

	var envelope documentEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedDocument, err)
	}

	var asset mblueprint.BlueprintAsset
	switch {
	case envelope.FormatVersion != nil || envelope.MainGraph != nil:
		if err := json.Unmarshal(body, &asset); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedDocument, err)
		}
		if asset.FormatVersion > mblueprint.FormatVersion {
			logger.Warn("blueprint asset was written by a newer editor, loading best-effort",
				"path", path, "documentVersion", asset.FormatVersion, "supportedVersion", mblueprint.FormatVersion)
		}
	case envelope.Nodes != nil:
		asset, err = loadLegacyAsset(path, body, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w: neither a versioned asset nor a legacy graph document", path, ErrMalformedDocument)
	}

	return restoreSession(asset, catalog, registry, logger), nil
}

// loadLegacyAsset upgrades the pre-versioning layout: the document itself is
// a bare graph description, and macros, tabs and variables live in sibling
// files next to it. Each sibling is tolerated independently.
func loadLegacyAsset(path string, body []byte, logger *slog.Logger) (mblueprint.BlueprintAsset, error) {
	var desc mgraphdesc.GraphDescription
	if err := json.Unmarshal(body, &desc); err != nil {
		return mblueprint.BlueprintAsset{}, fmt.Errorf("%s: %w: legacy graph document: %v", path, ErrMalformedDocument, err)
	}
	logger.Info("loading legacy multi-file blueprint layout", "path", path)

	className := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	asset := mblueprint.BlueprintAsset{
		FormatVersion: mblueprint.FormatVersion,
		MainGraph:     desc,
		Metadata:      mblueprint.NewMetadata(className, time.Now()),
		EditorState:   mblueprint.EditorState{OpenTabIDs: []string{mtab.MainTabID}},
	}

	dir := filepath.Dir(path)
	var macros []msubgraph.SubGraphDefinition
	if readSibling(filepath.Join(dir, legacyMacrosFile), &macros, logger) {
		asset.LocalMacros = macros
	}
	var tabs []legacyTab
	if readSibling(filepath.Join(dir, legacyTabsFile), &tabs, logger) {
		for _, tb := range tabs {
			if tb.IsMain || tb.ID == mtab.MainTabID {
				continue
			}
			asset.EditorState.OpenTabIDs = append(asset.EditorState.OpenTabIDs, tb.ID)
		}
	}
	var vars []mvariable.Variable
	if readSibling(filepath.Join(dir, legacyVarsFile), &vars, logger) {
		asset.Variables = vars
	}
	return asset, nil
}

// readSibling loads one optional legacy file. Absence is the normal case
// and stays silent; unreadable or malformed files warn and fall back.
func readSibling(path string, out any, logger *slog.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false
		}
		logger.Warn("cannot read legacy sibling file, continuing with defaults", "path", path, "error", err)
		return false
	}
	if err := json.Unmarshal(stripHeader(data), out); err != nil {
		logger.Warn("legacy sibling file is malformed, continuing with defaults", "path", path, "error", err)
		return false
	}
	return true
}

// restoreSession rebuilds the live session from a decoded asset: main graph
// first, then macros and variables, then the advisory tab layout. Tab ids
// that resolve to nothing are skipped so renames and deleted macros never
// block a load.
func restoreSession(asset mblueprint.BlueprintAsset, catalog *nodedef.Catalog, registry *macrolib.Registry, logger *slog.Logger) *session.EditingSession {
	mainGraph := tgraph.DeserializeDescriptionToGraph(asset.MainGraph, catalog, logger)
	sess := session.Restore(asset.Metadata, mainGraph, catalog, registry, logger)
	sess.LocalMacros = asset.LocalMacros
	sess.Variables = asset.Variables

	for _, tabID := range asset.EditorState.OpenTabIDs {
		if !sess.RestoreTab(tabID) {
			logger.Warn("skipping tab that no longer resolves to a macro",
				"tab", tabID, "error", ErrUnresolvedMacroReference)
		}
	}
	for tabID, view := range asset.EditorState.GraphViewStates {
		sess.SetTabViewState(tabID, mnode.Position{X: view.PanOffsetX, Y: view.PanOffsetY}, view.Zoom)
	}

	active := asset.EditorState.ActiveTabIndex
	if active >= len(sess.Tabs) {
		active = len(sess.Tabs) - 1
	}
	if active < 0 {
		active = 0
	}
	sess.ActivateTab(active)
	return sess
}
