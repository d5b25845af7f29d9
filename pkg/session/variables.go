package session

import (
	"errors"
	"fmt"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
)

var (
	ErrDuplicateVariableName = errors.New("variable name already in use")
	ErrVariableNotFound      = errors.New("variable not found")
)

// AddVariable declares a class variable. Names are unique across the class;
// a duplicate is rejected without mutating the list.
func (s *EditingSession) AddVariable(name string, dataType mpin.DataType) (mvariable.Variable, error) {
	if mvariable.FindByName(s.Variables, name) >= 0 {
		return mvariable.Variable{}, fmt.Errorf("%w: %s", ErrDuplicateVariableName, name)
	}
	v := mvariable.New(idwrap.NewNow(), name, dataType)
	s.Variables = append(s.Variables, v)
	s.MarkActiveDirty()
	return v, nil
}

// UpdateVariable replaces the variable with the same id. Renaming onto
// another variable's name is rejected.
func (s *EditingSession) UpdateVariable(v mvariable.Variable) error {
	if existing := mvariable.FindByName(s.Variables, v.Name); existing >= 0 && s.Variables[existing].ID != v.ID {
		return fmt.Errorf("%w: %s", ErrDuplicateVariableName, v.Name)
	}
	for i := range s.Variables {
		if s.Variables[i].ID == v.ID {
			s.Variables[i] = v
			s.MarkActiveDirty()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrVariableNotFound, v.ID.String())
}

// RemoveVariable deletes a class variable. Removing an unknown id is a
// no-op; getter and setter nodes referencing it are the compiler's problem,
// not the session's.
func (s *EditingSession) RemoveVariable(id idwrap.IDWrap) {
	for i := range s.Variables {
		if s.Variables[i].ID == id {
			s.Variables = append(s.Variables[:i], s.Variables[i+1:]...)
			s.MarkActiveDirty()
			return
		}
	}
}
