//nolint:revive // exported
package msubgraph

import (
	"errors"
	"time"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraphdesc"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

var ErrSubGraphNotFound = errors.New("sub-graph not found")

// SubGraphPin is one pin of a macro's externally visible call signature.
type SubGraphPin struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type mpin.DataType `json:"type"`
}

// Interface is the macro's call signature as seen by instance nodes. It is
// independent of the internal entry and exit node pins, though the editor
// keeps the two in sync on every sync-out.
type Interface struct {
	Inputs  []SubGraphPin `json:"inputs"`
	Outputs []SubGraphPin `json:"outputs"`
}

type Metadata struct {
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Author     string    `json:"author,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

// Config carries presentation and palette behavior for macro instances.
type Config struct {
	Pure                 bool     `json:"pure,omitempty"`
	Category             string   `json:"category,omitempty"`
	Icon                 string   `json:"icon,omitempty"`
	Color                string   `json:"color,omitempty"`
	Tooltip              string   `json:"tooltip,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	InstanceEditablePins []string `json:"instance_editable_pins,omitempty"`
}

// SubGraphDefinition is one reusable named graph. The body is stored in its
// persisted description form; opening a tab converts it to the editable
// representation and sync-out converts it back.
type SubGraphDefinition struct {
	ID          idwrap.IDWrap               `json:"id"`
	Name        string                      `json:"name"`
	Description string                      `json:"description,omitempty"`
	Graph       mgraphdesc.GraphDescription `json:"graph"`
	Interface   Interface                   `json:"interface"`
	Metadata    Metadata                    `json:"metadata"`
	Config      Config                      `json:"macro_config"`
}

// Interface pin ids for the execution pair every macro carries.
const (
	ExecInputPinID  = "exec_in"
	ExecOutputPinID = "exec_out"

	EntryBodyPinID = "body"
	ExitThenPinID  = "then"
)

// NewLocalMacro synthesizes the minimal macro body: a MacroEntry node with
// one execution output "Body" and a MacroExit node with one execution input
// "Then", plus the matching one-in one-out execution interface.
func NewLocalMacro(id idwrap.IDWrap, name string, now time.Time) SubGraphDefinition {
	graph := mgraphdesc.New()

	entryID := idwrap.NewNow().String()
	graph.Nodes[entryID] = mgraphdesc.NodeDescription{
		NodeType: mnode.DefinitionIDMacroEntry,
		Title:    "Entry",
		Position: mgraphdesc.Position{X: 100, Y: 200},
		Pins: []mgraphdesc.PinDescription{
			{
				ID: EntryBodyPinID,
				Pin: mgraphdesc.PinSpec{
					Name:     "Body",
					PinType:  mpin.StringPinKind(mpin.PIN_KIND_OUTPUT),
					DataType: mpin.FormatDataType(mpin.Execution()),
				},
			},
		},
	}

	exitID := idwrap.NewNow().String()
	graph.Nodes[exitID] = mgraphdesc.NodeDescription{
		NodeType: mnode.DefinitionIDMacroExit,
		Title:    "Exit",
		Position: mgraphdesc.Position{X: 560, Y: 200},
		Pins: []mgraphdesc.PinDescription{
			{
				ID: ExitThenPinID,
				Pin: mgraphdesc.PinSpec{
					Name:     "Then",
					PinType:  mpin.StringPinKind(mpin.PIN_KIND_INPUT),
					DataType: mpin.FormatDataType(mpin.Execution()),
				},
			},
		},
	}

	return SubGraphDefinition{
		ID:          id,
		Name:        name,
		Graph:       graph,
		Interface:   InterfaceFromDescription(graph),
		Metadata:    Metadata{CreatedAt: now, ModifiedAt: now},
		Config:      Config{Category: "Macros"},
	}
}

// InterfaceFromDescription derives the call signature from the entry and
// exit nodes of a macro body. Entry data outputs become macro inputs, exit
// data inputs become macro outputs; the execution pair is always present
// when the body carries entry and exit execution pins.
func InterfaceFromDescription(graph mgraphdesc.GraphDescription) Interface {
	var iface Interface
	for _, node := range graph.Nodes {
		switch node.NodeType {
		case mnode.DefinitionIDMacroEntry:
			for _, p := range node.Pins {
				kind, ok := mpin.ParsePinKind(p.Pin.PinType)
				if !ok || kind != mpin.PIN_KIND_OUTPUT {
					continue
				}
				dataType, ok := mpin.ParseDataType(p.Pin.DataType)
				if !ok {
					continue
				}
				if dataType.IsExecution() {
					iface.Inputs = append([]SubGraphPin{{ID: ExecInputPinID, Type: mpin.Execution()}}, iface.Inputs...)
					continue
				}
				iface.Inputs = append(iface.Inputs, SubGraphPin{ID: p.ID, Name: p.Pin.Name, Type: dataType})
			}
		case mnode.DefinitionIDMacroExit:
			for _, p := range node.Pins {
				kind, ok := mpin.ParsePinKind(p.Pin.PinType)
				if !ok || kind != mpin.PIN_KIND_INPUT {
					continue
				}
				dataType, ok := mpin.ParseDataType(p.Pin.DataType)
				if !ok {
					continue
				}
				if dataType.IsExecution() {
					iface.Outputs = append([]SubGraphPin{{ID: ExecOutputPinID, Type: mpin.Execution()}}, iface.Outputs...)
					continue
				}
				iface.Outputs = append(iface.Outputs, SubGraphPin{ID: p.ID, Name: p.Pin.Name, Type: dataType})
			}
		}
	}
	return iface
}

// DataInputs returns the interface inputs minus the execution pin.
func (i Interface) DataInputs() []SubGraphPin {
	var pins []SubGraphPin
	for _, p := range i.Inputs {
		if !p.Type.IsExecution() {
			pins = append(pins, p)
		}
	}
	return pins
}

// DataOutputs returns the interface outputs minus the execution pin.
func (i Interface) DataOutputs() []SubGraphPin {
	var pins []SubGraphPin
	for _, p := range i.Outputs {
		if !p.Type.IsExecution() {
			pins = append(pins, p)
		}
	}
	return pins
}

// FindByID returns the definition with the given id from a local macro list.
func FindByID(macros []SubGraphDefinition, id idwrap.IDWrap) (int, bool) {
	for i := range macros {
		if macros[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
