package mnode

import (
	"testing"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubGraphDefinitionID(t *testing.T) {
	id := idwrap.NewNow()

	t.Run("local macro round-trips", func(t *testing.T) {
		defID := SubGraphDefinitionID("", id)
		assert.Equal(t, SubGraphPrefix+id.String(), defID)

		libraryID, macroID, ok := ParseSubGraphDefinitionID(defID)
		require.True(t, ok)
		assert.Equal(t, "", libraryID)
		assert.Equal(t, id.String(), macroID)
	})

	t.Run("library macro round-trips", func(t *testing.T) {
		defID := SubGraphDefinitionID("engine.core", id)

		libraryID, macroID, ok := ParseSubGraphDefinitionID(defID)
		require.True(t, ok)
		assert.Equal(t, "engine.core", libraryID, "dotted library ids split at the last dot")
		assert.Equal(t, id.String(), macroID)
	})

	t.Run("non subgraph ids do not parse", func(t *testing.T) {
		_, _, ok := ParseSubGraphDefinitionID("math.add")
		assert.False(t, ok)

		_, _, ok = ParseSubGraphDefinitionID(SubGraphPrefix)
		assert.False(t, ok, "a bare prefix carries no macro id")

		_, _, ok = ParseSubGraphDefinitionID(SubGraphPrefix + ".")
		assert.False(t, ok, "empty library and macro parts are malformed")
	})
}

func TestKindFromDefinitionID(t *testing.T) {
	assert.Equal(t, NODE_KIND_EVENT, KindFromDefinitionID("event.begin_play"))
	assert.Equal(t, NODE_KIND_LOGIC, KindFromDefinitionID("logic.branch"))
	assert.Equal(t, NODE_KIND_MATH, KindFromDefinitionID("math.add"))
	assert.Equal(t, NODE_KIND_OBJECT, KindFromDefinitionID("object.spawn"))
	assert.Equal(t, NODE_KIND_REROUTE, KindFromDefinitionID(DefinitionIDReroute))
	assert.Equal(t, NODE_KIND_MACRO_ENTRY, KindFromDefinitionID(DefinitionIDMacroEntry))
	assert.Equal(t, NODE_KIND_MACRO_EXIT, KindFromDefinitionID(DefinitionIDMacroExit))
	assert.Equal(t, NODE_KIND_MACRO_INSTANCE, KindFromDefinitionID(SubGraphDefinitionID("", idwrap.NewNow())))
	assert.Equal(t, NODE_KIND_UNSPECIFIED, KindFromDefinitionID("plugin.super_jump"),
		"unknown namespaces stay renderable as unspecified")
	assert.Equal(t, NODE_KIND_UNSPECIFIED, KindFromDefinitionID("noseparator"))
}

func TestSetPinType(t *testing.T) {
	node := Node{
		Inputs: []mpin.Pin{
			{ID: "in", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Any()},
			{ID: "other", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Boolean()},
		},
		Outputs: []mpin.Pin{
			{ID: "in", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Any()},
		},
	}

	node.SetPinType("in", mpin.Float())

	assert.Equal(t, mpin.Float(), node.Inputs[0].Type, "matching input adopts the type")
	assert.Equal(t, mpin.Boolean(), node.Inputs[1].Type, "other pins keep their type")
	assert.Equal(t, mpin.Float(), node.Outputs[0].Type, "matching output adopts the type too")

	node.SetAllPinTypes(mpin.String())
	assert.Equal(t, mpin.String(), node.Inputs[1].Type, "SetAllPinTypes overwrites every pin")
}

func TestPinIDsUnique(t *testing.T) {
	node := Node{
		Inputs: []mpin.Pin{{ID: "exec"}, {ID: "a"}},
		Outputs: []mpin.Pin{
			{ID: "exec"}, // same id on the other side is fine
			{ID: "result"},
		},
	}
	assert.True(t, node.PinIDsUnique())

	node.Inputs = append(node.Inputs, mpin.Pin{ID: "a"})
	assert.False(t, node.PinIDsUnique(), "duplicate input ids collide")
}
