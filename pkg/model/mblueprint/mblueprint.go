//nolint:revive // exported
package mblueprint

import (
	"time"

	"github.com/google/uuid"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraphdesc"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
)

// FormatVersion is the current unified asset document version.
const FormatVersion = 1

// Metadata identifies the blueprint class across sessions. AssetID is the
// stable identity the engine references; it never changes once assigned.
type Metadata struct {
	AssetID     uuid.UUID `json:"asset_id"`
	ClassName   string    `json:"class_name"`
	ParentClass string    `json:"parent_class,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	Tags        []string  `json:"tags,omitempty"`
}

func NewMetadata(className string, now time.Time) Metadata {
	return Metadata{
		AssetID:    uuid.New(),
		ClassName:  className,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// ViewState is the per-tab pan and zoom restored on load.
type ViewState struct {
	PanOffsetX float64 `json:"pan_offset_x"`
	PanOffsetY float64 `json:"pan_offset_y"`
	Zoom       float64 `json:"zoom"`
}

// EditorState restores the tab layout: which tabs were open, which was
// active, and each tab's viewport. Tab ids that no longer resolve are
// skipped on restore, so the state is advisory, never load-fatal.
type EditorState struct {
	OpenTabIDs      []string             `json:"open_tab_ids"`
	ActiveTabIndex  int                  `json:"active_tab_index"`
	GraphViewStates map[string]ViewState `json:"graph_view_states,omitempty"`
}

// BlueprintAsset is the complete persisted editable state of one class:
// main graph, local macros, class variables, tab layout and identity.
type BlueprintAsset struct {
	FormatVersion int                             `json:"format_version"`
	MainGraph     mgraphdesc.GraphDescription     `json:"main_graph"`
	LocalMacros   []msubgraph.SubGraphDefinition  `json:"local_macros,omitempty"`
	Variables     []mvariable.Variable            `json:"variables,omitempty"`
	EditorState   EditorState                     `json:"editor_state"`
	Metadata      Metadata                        `json:"blueprint_metadata"`
}
