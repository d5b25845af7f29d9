package tgraph

import (
	"strconv"
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraphdesc"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

// propertyValueFromLiteral types a property literal for the document using
// the parameter's declared pin type. ok is false when the literal does not
// parse as that type; callers fall back to a plain string property.
func propertyValueFromLiteral(t mpin.DataType, literal string) (mgraphdesc.PropertyValue, bool) {
	switch t.Kind {
	case mpin.DATA_KIND_BOOLEAN:
		b, err := strconv.ParseBool(literal)
		if err != nil {
			return mgraphdesc.PropertyValue{}, false
		}
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeBoolean, Value: b}, true
	case mpin.DATA_KIND_INTEGER, mpin.DATA_KIND_FLOAT:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return mgraphdesc.PropertyValue{}, false
		}
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeNumber, Value: f}, true
	case mpin.DATA_KIND_VECTOR2:
		v, ok := parseVector(literal, 2)
		if !ok {
			return mgraphdesc.PropertyValue{}, false
		}
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeVector2, Value: v}, true
	case mpin.DATA_KIND_VECTOR3:
		v, ok := parseVector(literal, 3)
		if !ok {
			return mgraphdesc.PropertyValue{}, false
		}
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeVector3, Value: v}, true
	case mpin.DATA_KIND_COLOR:
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeColor, Value: literal}, true
	default:
		return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeString, Value: literal}, true
	}
}

func stringProperty(literal string) mgraphdesc.PropertyValue {
	return mgraphdesc.PropertyValue{Type: mgraphdesc.PropertyTypeString, Value: literal}
}

// literalFromPropertyValue flattens a typed document property back into the
// in-memory literal form. ok is false for values that do not match their
// declared type.
func literalFromPropertyValue(v mgraphdesc.PropertyValue) (string, bool) {
	switch v.Type {
	case mgraphdesc.PropertyTypeBoolean:
		b, ok := v.Value.(bool)
		if !ok {
			return "", false
		}
		return strconv.FormatBool(b), true
	case mgraphdesc.PropertyTypeNumber:
		f, ok := numberValue(v.Value)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case mgraphdesc.PropertyTypeVector2:
		vec, ok := vectorValue(v.Value)
		if !ok {
			return "", false
		}
		return formatVector(vec, 2), true
	case mgraphdesc.PropertyTypeVector3:
		vec, ok := vectorValue(v.Value)
		if !ok {
			return "", false
		}
		return formatVector(vec, 3), true
	case mgraphdesc.PropertyTypeString, mgraphdesc.PropertyTypeColor:
		s, ok := v.Value.(string)
		return s, ok
	default:
		return "", false
	}
}

func parseVector(literal string, dims int) (mgraphdesc.VectorValue, bool) {
	parts := strings.Split(literal, ",")
	if len(parts) != dims {
		return mgraphdesc.VectorValue{}, false
	}
	var out [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return mgraphdesc.VectorValue{}, false
		}
		out[i] = f
	}
	return mgraphdesc.VectorValue{X: out[0], Y: out[1], Z: out[2]}, true
}

func formatVector(v mgraphdesc.VectorValue, dims int) string {
	parts := []float64{v.X, v.Y, v.Z}[:dims]
	texts := make([]string, dims)
	for i, f := range parts {
		texts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(texts, ",")
}

func numberValue(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// vectorValue accepts both the decoded-JSON map form and the struct form
// used when descriptions are built in memory.
func vectorValue(value any) (mgraphdesc.VectorValue, bool) {
	switch v := value.(type) {
	case mgraphdesc.VectorValue:
		return v, true
	case map[string]any:
		var out mgraphdesc.VectorValue
		if x, ok := numberValue(v["x"]); ok {
			out.X = x
		}
		if y, ok := numberValue(v["y"]); ok {
			out.Y = y
		}
		if z, ok := numberValue(v["z"]); ok {
			out.Z = z
		}
		return out, true
	default:
		return mgraphdesc.VectorValue{}, false
	}
}
