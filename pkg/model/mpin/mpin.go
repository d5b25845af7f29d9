//nolint:revive // exported
package mpin

type DataKind = int8

const (
	DATA_KIND_EXECUTION DataKind = 0
	DATA_KIND_BOOLEAN   DataKind = 1
	DATA_KIND_INTEGER   DataKind = 2
	DATA_KIND_FLOAT     DataKind = 3
	DATA_KIND_STRING    DataKind = 4
	DATA_KIND_VECTOR2   DataKind = 5
	DATA_KIND_VECTOR3   DataKind = 6
	DATA_KIND_COLOR     DataKind = 7
	DATA_KIND_OBJECT    DataKind = 8
	DATA_KIND_ANY       DataKind = 9
	DATA_KIND_CUSTOM    DataKind = 10
)

// DataType is the semantic type carried by a pin. Name is only set for
// DATA_KIND_CUSTOM (engine struct types such as "Transform").
type DataType struct {
	Kind DataKind `json:"kind"`
	Name string   `json:"name,omitempty"`
}

func Execution() DataType { return DataType{Kind: DATA_KIND_EXECUTION} }
func Boolean() DataType   { return DataType{Kind: DATA_KIND_BOOLEAN} }
func Integer() DataType   { return DataType{Kind: DATA_KIND_INTEGER} }
func Float() DataType     { return DataType{Kind: DATA_KIND_FLOAT} }
func String() DataType    { return DataType{Kind: DATA_KIND_STRING} }
func Vector2() DataType   { return DataType{Kind: DATA_KIND_VECTOR2} }
func Vector3() DataType   { return DataType{Kind: DATA_KIND_VECTOR3} }
func Color() DataType     { return DataType{Kind: DATA_KIND_COLOR} }
func Object() DataType    { return DataType{Kind: DATA_KIND_OBJECT} }
func Any() DataType       { return DataType{Kind: DATA_KIND_ANY} }

func Custom(name string) DataType {
	return DataType{Kind: DATA_KIND_CUSTOM, Name: name}
}

func (d DataType) IsExecution() bool { return d.Kind == DATA_KIND_EXECUTION }
func (d DataType) IsAny() bool       { return d.Kind == DATA_KIND_ANY }

// IsCompatibleWith reports whether a connection between two pins of these
// types is allowed. The predicate is symmetric: integer/float coercion is
// accepted in both directions so connect never depends on drag direction.
func (d DataType) IsCompatibleWith(other DataType) bool {
	if d.Kind == DATA_KIND_ANY || other.Kind == DATA_KIND_ANY {
		return true
	}
	if d.Kind == DATA_KIND_EXECUTION || other.Kind == DATA_KIND_EXECUTION {
		return d.Kind == other.Kind
	}
	if isNumeric(d.Kind) && isNumeric(other.Kind) {
		return true
	}
	if d.Kind != other.Kind {
		return false
	}
	if d.Kind == DATA_KIND_CUSTOM {
		return d.Name == other.Name
	}
	return true
}

func isNumeric(k DataKind) bool {
	return k == DATA_KIND_INTEGER || k == DATA_KIND_FLOAT
}

func (d DataType) DisplayString() string {
	if d.Kind == DATA_KIND_CUSTOM {
		return d.Name
	}
	names := [...]string{
		"Execution", "Boolean", "Integer", "Float", "String",
		"Vector2", "Vector3", "Color", "Object", "Any",
	}
	if int(d.Kind) < len(names) {
		return names[d.Kind]
	}
	return "Unknown"
}

// DefaultLiteral returns the literal text used when an input pin of this
// type has neither a connection nor an explicit property value.
func (d DataType) DefaultLiteral() string {
	switch d.Kind {
	case DATA_KIND_BOOLEAN:
		return "false"
	case DATA_KIND_INTEGER:
		return "0"
	case DATA_KIND_FLOAT:
		return "0.0"
	case DATA_KIND_STRING:
		return ""
	case DATA_KIND_VECTOR2:
		return "0,0"
	case DATA_KIND_VECTOR3:
		return "0,0,0"
	case DATA_KIND_COLOR:
		return "#FFFFFFFF"
	default:
		return "null"
	}
}

type PinShape = int8

const (
	PIN_SHAPE_CIRCLE  PinShape = 0
	PIN_SHAPE_ARROW   PinShape = 1
	PIN_SHAPE_DIAMOND PinShape = 2
	PIN_SHAPE_SQUARE  PinShape = 3
)

// Style is the opaque visual descriptor consumed by the rendering layer.
// The graph core never interprets it.
type Style struct {
	Color string
	Shape PinShape
}

func (d DataType) Style() Style {
	switch d.Kind {
	case DATA_KIND_EXECUTION:
		return Style{Color: "#FFFFFF", Shape: PIN_SHAPE_ARROW}
	case DATA_KIND_BOOLEAN:
		return Style{Color: "#8B0000", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_INTEGER:
		return Style{Color: "#1FE5C3", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_FLOAT:
		return Style{Color: "#9FF43A", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_STRING:
		return Style{Color: "#F623BE", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_VECTOR2:
		return Style{Color: "#F6A621", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_VECTOR3:
		return Style{Color: "#FFC94A", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_COLOR:
		return Style{Color: "#2574F6", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_OBJECT:
		return Style{Color: "#14B8F6", Shape: PIN_SHAPE_CIRCLE}
	case DATA_KIND_ANY:
		return Style{Color: "#9E9E9E", Shape: PIN_SHAPE_DIAMOND}
	default:
		return Style{Color: "#4AC8FF", Shape: PIN_SHAPE_SQUARE}
	}
}

type PinKind = int8

const (
	PIN_KIND_INPUT  PinKind = 0
	PIN_KIND_OUTPUT PinKind = 1
)

func StringPinKind(k PinKind) string {
	switch k {
	case PIN_KIND_INPUT:
		return "input"
	case PIN_KIND_OUTPUT:
		return "output"
	default:
		return "unknown"
	}
}

func ParsePinKind(s string) (PinKind, bool) {
	switch s {
	case "input":
		return PIN_KIND_INPUT, true
	case "output":
		return PIN_KIND_OUTPUT, true
	default:
		return PIN_KIND_INPUT, false
	}
}

// Pin is one connection point on a node. ID is unique within its node and
// direction; Name is the display label and may be empty for unnamed
// execution pins.
type Pin struct {
	ID   string
	Name string
	Kind PinKind
	Type DataType
}
