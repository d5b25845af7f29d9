package nodedef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

// ManifestFormat is the YAML document engine plugins ship to extend the
// node palette.
type ManifestFormat struct {
	Plugin string             `yaml:"plugin,omitempty"`
	Nodes  []ManifestNodeSpec `yaml:"nodes"`
}

// ManifestNodeSpec declares one node definition. Pin data types use the
// persisted string form ("float", "vector3", "custom:Transform", ...).
type ManifestNodeSpec struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Icon        string            `yaml:"icon,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Category    string            `yaml:"category,omitempty"`
	Color       string            `yaml:"color,omitempty"`
	Inputs      []ManifestPinSpec `yaml:"inputs,omitempty"`
	Outputs     []ManifestPinSpec `yaml:"outputs,omitempty"`
	Params      []ManifestParam   `yaml:"params,omitempty"`
	Keywords    []string          `yaml:"keywords,omitempty"`
}

type ManifestPinSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type"`
}

type ManifestParam struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
}

// ManifestError reports what was wrong with a manifest entry and where.
type ManifestError struct {
	Message string
	Node    string
	Field   string
	Value   string
}

func (e *ManifestError) Error() string {
	msg := e.Message
	if e.Node != "" {
		msg = fmt.Sprintf("%s (node %q)", msg, e.Node)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s, field %q", msg, e.Field)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s, value %q", msg, e.Value)
	}
	return msg
}

// ParseManifest decodes a YAML manifest into definitions without
// registering them.
func ParseManifest(data []byte) ([]Definition, error) {
	var manifest ManifestFormat
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse node manifest: %w", err)
	}

	defs := make([]Definition, 0, len(manifest.Nodes))
	for _, spec := range manifest.Nodes {
		def, err := definitionFromSpec(spec)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func definitionFromSpec(spec ManifestNodeSpec) (Definition, error) {
	if spec.ID == "" {
		return Definition{}, &ManifestError{Message: "missing node id"}
	}
	if spec.Title == "" {
		return Definition{}, &ManifestError{Message: "missing title", Node: spec.ID}
	}

	def := Definition{
		ID:          spec.ID,
		Title:       spec.Title,
		Icon:        spec.Icon,
		Description: spec.Description,
		Category:    spec.Category,
		Color:       spec.Color,
		Kind:        mnode.KindFromDefinitionID(spec.ID),
		Keywords:    spec.Keywords,
	}
	if def.Category == "" {
		def.Category = CategoryUtility
	}

	for _, p := range spec.Inputs {
		tmpl, err := pinTemplateFromSpec(spec.ID, p)
		if err != nil {
			return Definition{}, err
		}
		def.Inputs = append(def.Inputs, tmpl)
	}
	for _, p := range spec.Outputs {
		tmpl, err := pinTemplateFromSpec(spec.ID, p)
		if err != nil {
			return Definition{}, err
		}
		def.Outputs = append(def.Outputs, tmpl)
	}
	for _, p := range spec.Params {
		paramType, ok := mpin.ParseDataType(p.Type)
		if !ok {
			return Definition{}, &ManifestError{Message: "unknown param type", Node: spec.ID, Field: p.Name, Value: p.Type}
		}
		d := p.Default
		if d == "" {
			d = paramType.DefaultLiteral()
		}
		def.Params = append(def.Params, Param{Name: p.Name, Type: paramType, Default: d})
	}
	return def, nil
}

func pinTemplateFromSpec(nodeID string, p ManifestPinSpec) (PinTemplate, error) {
	if p.ID == "" {
		return PinTemplate{}, &ManifestError{Message: "missing pin id", Node: nodeID}
	}
	dataType, ok := mpin.ParseDataType(p.Type)
	if !ok {
		return PinTemplate{}, &ManifestError{Message: "unknown pin type", Node: nodeID, Field: p.ID, Value: p.Type}
	}
	return PinTemplate{ID: p.ID, Name: p.Name, Type: dataType}, nil
}

// LoadManifestFile reads a manifest from disk and registers every
// definition it declares.
func (c *Catalog) LoadManifestFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read node manifest %s: %w", path, err)
	}
	defs, err := ParseManifest(data)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	return nil
}
