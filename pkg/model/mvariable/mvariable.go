//nolint:revive // exported
package mvariable

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

// Variable is one class variable of the edited blueprint class. Variables
// persist inside the blueprint asset and surface in graphs through getter
// and setter nodes.
type Variable struct {
	ID           idwrap.IDWrap `json:"id"`
	Name         string        `json:"name"`
	Type         mpin.DataType `json:"type"`
	DefaultValue string        `json:"default_value,omitempty"`
	Description  string        `json:"description,omitempty"`
	Category     string        `json:"category,omitempty"`
	Exposed      bool          `json:"exposed,omitempty"`
}

func New(id idwrap.IDWrap, name string, dataType mpin.DataType) Variable {
	return Variable{
		ID:           id,
		Name:         name,
		Type:         dataType,
		DefaultValue: dataType.DefaultLiteral(),
	}
}

// FindByName returns the index of the variable with the given name, or -1.
func FindByName(variables []Variable, name string) int {
	for i := range variables {
		if variables[i].Name == name {
			return i
		}
	}
	return -1
}
