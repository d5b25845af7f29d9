package mpin

import "strings"

const customPrefix = "custom:"

// FormatDataType renders a DataType as the string form used by persisted
// documents and library manifests, e.g. "float" or "custom:Transform".
func FormatDataType(d DataType) string {
	if d.Kind == DATA_KIND_CUSTOM {
		return customPrefix + d.Name
	}
	names := [...]string{
		"execution", "boolean", "integer", "float", "string",
		"vector2", "vector3", "color", "object", "any",
	}
	if int(d.Kind) < len(names) {
		return names[d.Kind]
	}
	return "any"
}

// ParseDataType is the inverse of FormatDataType. Unknown names parse as
// false so callers can decide between rejecting and degrading to Any.
func ParseDataType(s string) (DataType, bool) {
	if strings.HasPrefix(s, customPrefix) {
		name := strings.TrimPrefix(s, customPrefix)
		if name == "" {
			return DataType{}, false
		}
		return Custom(name), true
	}
	switch s {
	case "execution", "exec":
		return Execution(), true
	case "boolean", "bool":
		return Boolean(), true
	case "integer", "int", "i64":
		return Integer(), true
	case "float", "f64":
		return Float(), true
	case "string":
		return String(), true
	case "vector2", "vec2":
		return Vector2(), true
	case "vector3", "vec3":
		return Vector3(), true
	case "color":
		return Color(), true
	case "object":
		return Object(), true
	case "any", "wildcard":
		return Any(), true
	default:
		return DataType{}, false
	}
}
