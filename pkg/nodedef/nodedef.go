// Package nodedef holds the node-type catalog: the metadata describing every
// node type the palette offers and the factory that stamps out graph nodes
// from it. Node behavior lives in the compiler; this package only knows
// shape (pins, params, presentation).
package nodedef

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/fuzzyfinder"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
)

var (
	ErrDefinitionExists   = errors.New("node definition already registered")
	ErrDefinitionNotFound = errors.New("node definition not found")
	ErrInvalidDefinition  = errors.New("invalid node definition")
)

// PinTemplate describes one pin every instance of a definition starts with.
type PinTemplate struct {
	ID   string
	Name string
	Type mpin.DataType
}

// Param is one editable property on the node body. Name doubles as the
// property key; for data inputs it matches the pin id so the compiler's
// literal fallback finds it.
type Param struct {
	Name    string
	Type    mpin.DataType
	Default string
}

// Definition is the palette entry for one node type.
type Definition struct {
	ID          string
	Title       string
	Icon        string
	Description string
	Category    string
	Color       string
	Kind        mnode.NodeKind
	Inputs      []PinTemplate
	Outputs     []PinTemplate
	Params      []Param
	Keywords    []string
}

// IsPure reports whether the definition carries no execution pins. Pure
// nodes are value producers; the compiler emits them on demand instead of
// routing execution through them.
func (d Definition) IsPure() bool {
	for _, p := range d.Inputs {
		if p.Type.IsExecution() {
			return false
		}
	}
	for _, p := range d.Outputs {
		if p.Type.IsExecution() {
			return false
		}
	}
	return true
}

func (d Definition) searchText() string {
	parts := []string{d.Title, d.ID}
	parts = append(parts, d.Keywords...)
	return strings.Join(parts, " ")
}

// Catalog is the registry of node definitions. Registration order is
// palette order.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Register adds a definition. Duplicate ids and duplicate pin ids within a
// direction are rejected.
func (c *Catalog) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	if _, ok := c.defs[def.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDefinitionExists, def.ID)
	}
	if !pinTemplateIDsUnique(def.Inputs) || !pinTemplateIDsUnique(def.Outputs) {
		return fmt.Errorf("%w: %s: duplicate pin id", ErrInvalidDefinition, def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

func pinTemplateIDsUnique(pins []PinTemplate) bool {
	seen := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		if _, ok := seen[p.ID]; ok {
			return false
		}
		seen[p.ID] = struct{}{}
	}
	return true
}

// Get returns the definition registered under id.
func (c *Catalog) Get(id string) (Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// List returns every definition in registration order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// ListByCategory returns the definitions in one palette category, in
// registration order.
func (c *Catalog) ListByCategory(category string) []Definition {
	var out []Definition
	for _, id := range c.order {
		if c.defs[id].Category == category {
			out = append(out, c.defs[id])
		}
	}
	return out
}

// Categories returns the distinct category names, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range c.order {
		cat := c.defs[id].Category
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Search fuzzy-matches the query against title, id and keywords, best
// matches first. An empty query lists everything.
func (c *Catalog) Search(query string) []Definition {
	if query == "" {
		return c.List()
	}
	keys := make([]string, len(c.order))
	for i, id := range c.order {
		keys[i] = c.defs[id].searchText()
	}
	ranks := fuzzyfinder.RankFindFold(keys, query)
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	out := make([]Definition, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, c.defs[c.order[r.OriginalIndex]])
	}
	return out
}

// Instantiate stamps a fresh node from the definition: new ULID, pins from
// the templates, properties seeded with param defaults.
func (c *Catalog) Instantiate(definitionID string, position mnode.Position) (mnode.Node, error) {
	def, ok := c.Get(definitionID)
	if !ok {
		return mnode.Node{}, fmt.Errorf("%w: %s", ErrDefinitionNotFound, definitionID)
	}

	node := mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: def.ID,
		Title:        def.Title,
		Icon:         def.Icon,
		Kind:         def.Kind,
		Position:     position,
		Size:         DefaultSize(def.Kind, len(def.Inputs), len(def.Outputs)),
		Description:  def.Description,
		Color:        def.Color,
	}
	for _, p := range def.Inputs {
		node.Inputs = append(node.Inputs, mpin.Pin{ID: p.ID, Name: p.Name, Kind: mpin.PIN_KIND_INPUT, Type: p.Type})
	}
	for _, p := range def.Outputs {
		node.Outputs = append(node.Outputs, mpin.Pin{ID: p.ID, Name: p.Name, Kind: mpin.PIN_KIND_OUTPUT, Type: p.Type})
	}
	if len(def.Params) > 0 {
		node.Properties = make(map[string]string, len(def.Params))
		for _, p := range def.Params {
			node.Properties[p.Name] = p.Default
		}
	}
	return node, nil
}

// GenericNode builds a placeholder for a definition id the catalog does not
// know. Rehydrating an asset that references a missing plugin must render
// something instead of crashing; the compiler rejects these separately.
func GenericNode(definitionID string, position mnode.Position) mnode.Node {
	return mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: definitionID,
		Title:        definitionID,
		Kind:         mnode.KindFromDefinitionID(definitionID),
		Position:     position,
		Size:         DefaultSize(mnode.NODE_KIND_UNSPECIFIED, 0, 0),
		Color:        "#616161",
	}
}

// InstantiateSubGraph stamps a macro-instance node from a macro's call
// signature. libraryID is empty for local macros.
func InstantiateSubGraph(def msubgraph.SubGraphDefinition, libraryID string, position mnode.Position) mnode.Node {
	node := mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: mnode.SubGraphDefinitionID(libraryID, def.ID),
		Title:        def.Name,
		Icon:         def.Config.Icon,
		Kind:         mnode.NODE_KIND_MACRO_INSTANCE,
		Position:     position,
		Size:         DefaultSize(mnode.NODE_KIND_MACRO_INSTANCE, len(def.Interface.Inputs), len(def.Interface.Outputs)),
		Description:  def.Config.Tooltip,
		Color:        def.Config.Color,
	}
	for _, p := range def.Interface.Inputs {
		node.Inputs = append(node.Inputs, mpin.Pin{ID: p.ID, Name: p.Name, Kind: mpin.PIN_KIND_INPUT, Type: p.Type})
	}
	for _, p := range def.Interface.Outputs {
		node.Outputs = append(node.Outputs, mpin.Pin{ID: p.ID, Name: p.Name, Kind: mpin.PIN_KIND_OUTPUT, Type: p.Type})
	}
	return node
}

// DefaultSize is the editor's initial node box: one row per pin, reroutes
// draw as small dots. Rehydration uses it when a stored node carries no
// explicit size.
func DefaultSize(kind mnode.NodeKind, inputs, outputs int) mnode.Size {
	if kind == mnode.NODE_KIND_REROUTE {
		return mnode.Size{Width: 24, Height: 24}
	}
	rows := inputs
	if outputs > rows {
		rows = outputs
	}
	if rows == 0 {
		rows = 1
	}
	return mnode.Size{Width: 180, Height: float64(40 + 26*rows)}
}
