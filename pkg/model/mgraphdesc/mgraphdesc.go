//nolint:revive // exported
package mgraphdesc

// GraphDescription is the serializable form of one graph, decoupled from the
// editor's live node and pin structs. Nodes are keyed by node id so the
// document diffs cleanly under version control. Transient UI state
// (selection, comment containment) is never part of the description.
type GraphDescription struct {
	Nodes       map[string]NodeDescription `json:"nodes"`
	Connections []ConnectionDescription    `json:"connections,omitempty"`
	Comments    []CommentDescription       `json:"comments,omitempty"`
}

func New() GraphDescription {
	return GraphDescription{Nodes: make(map[string]NodeDescription)}
}

// NodeDescription carries a placed node in its compact persisted form.
// NodeType is the definition id; display metadata is rehydrated from the
// node catalog on load, so only user-editable fields are stored.
type NodeDescription struct {
	NodeType    string                   `json:"node_type"`
	Title       string                   `json:"title,omitempty"`
	Position    Position                 `json:"position"`
	Size        *Size                    `json:"size,omitempty"`
	Pins        []PinDescription         `json:"pins"`
	Properties  map[string]PropertyValue `json:"properties,omitempty"`
	Description string                   `json:"description,omitempty"`
	Color       string                   `json:"color,omitempty"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PinDescription nests the pin payload under "pin" so the id stays a stable
// join key even if the pin schema grows more fields.
type PinDescription struct {
	ID  string  `json:"id"`
	Pin PinSpec `json:"pin"`
}

type PinSpec struct {
	Name     string `json:"name"`
	PinType  string `json:"pin_type"`
	DataType string `json:"data_type"`
}

type ConnectionDescription struct {
	ID         string `json:"id,omitempty"`
	SourceNode string `json:"source_node"`
	SourcePin  string `json:"source_pin"`
	TargetNode string `json:"target_node"`
	TargetPin  string `json:"target_pin"`
}

type CommentDescription struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
	Text     string   `json:"text"`
	Color    string   `json:"color,omitempty"`
}

type PropertyType = string

const (
	PropertyTypeString  PropertyType = "String"
	PropertyTypeNumber  PropertyType = "Number"
	PropertyTypeBoolean PropertyType = "Boolean"
	PropertyTypeVector2 PropertyType = "Vector2"
	PropertyTypeVector3 PropertyType = "Vector3"
	PropertyTypeColor   PropertyType = "Color"
)

// PropertyValue is a typed literal. In memory properties are plain strings;
// on disk they carry their type so external tooling can edit documents
// without consulting the node catalog.
type PropertyValue struct {
	Type  PropertyType `json:"type"`
	Value any          `json:"value"`
}

// VectorValue is the wire shape of Vector2/Vector3 property values.
type VectorValue struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}
