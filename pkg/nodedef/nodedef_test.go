package nodedef_test

import (
	"testing"
	"time"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	c := nodedef.NewCatalog()
	def := nodedef.Definition{ID: "test.node", Title: "Test", Kind: mnode.NODE_KIND_LOGIC}
	require.NoError(t, c.Register(def))

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := c.Register(def)
		assert.ErrorIs(t, err, nodedef.ErrDefinitionExists)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		err := c.Register(nodedef.Definition{Title: "Nameless"})
		assert.ErrorIs(t, err, nodedef.ErrInvalidDefinition)
	})

	t.Run("duplicate pin ids rejected", func(t *testing.T) {
		err := c.Register(nodedef.Definition{
			ID: "test.bad",
			Inputs: []nodedef.PinTemplate{
				{ID: "a", Type: mpin.Float()},
				{ID: "a", Type: mpin.Float()},
			},
		})
		assert.ErrorIs(t, err, nodedef.ErrInvalidDefinition)
	})
}

func TestBuiltinsCatalog(t *testing.T) {
	c := nodedef.NewBuiltins()

	for _, id := range []string{
		"event.begin_play", "event.tick", "event.actor_overlap", "event.custom",
		"math.add", "math.subtract", "math.multiply", "math.divide",
		"logic.branch", "logic.and", "logic.or", "logic.not",
		"logic.equals", "logic.greater", "logic.expression",
		"object.get_location", "object.set_location", "object.print",
		"object.spawn", "object.destroy",
		mnode.DefinitionIDReroute, mnode.DefinitionIDMacroEntry, mnode.DefinitionIDMacroExit,
	} {
		_, ok := c.Get(id)
		assert.True(t, ok, "builtin %s must be registered", id)
	}

	t.Run("kinds follow the definition id namespace", func(t *testing.T) {
		tick, ok := c.Get("event.tick")
		require.True(t, ok)
		assert.Equal(t, mnode.NODE_KIND_EVENT, tick.Kind)

		reroute, ok := c.Get(mnode.DefinitionIDReroute)
		require.True(t, ok)
		assert.Equal(t, mnode.NODE_KIND_REROUTE, reroute.Kind)
	})

	t.Run("purity is derived from execution pins", func(t *testing.T) {
		add, ok := c.Get("math.add")
		require.True(t, ok)
		assert.True(t, add.IsPure())

		branch, ok := c.Get("logic.branch")
		require.True(t, ok)
		assert.False(t, branch.IsPure())

		begin, ok := c.Get("event.begin_play")
		require.True(t, ok)
		assert.False(t, begin.IsPure())
	})

	t.Run("categories cover the palette", func(t *testing.T) {
		cats := c.Categories()
		assert.Contains(t, cats, nodedef.CategoryEvents)
		assert.Contains(t, cats, nodedef.CategoryMath)
		assert.NotEmpty(t, c.ListByCategory(nodedef.CategoryObjects))
	})
}

func TestInstantiate(t *testing.T) {
	c := nodedef.NewBuiltins()

	t.Run("unknown definition errors", func(t *testing.T) {
		_, err := c.Instantiate("plugin.missing", mnode.Position{})
		assert.ErrorIs(t, err, nodedef.ErrDefinitionNotFound)
	})

	t.Run("fresh node from templates", func(t *testing.T) {
		pos := mnode.Position{X: 10, Y: 20}
		node, err := c.Instantiate("logic.branch", pos)
		require.NoError(t, err)

		assert.False(t, node.ID.IsZero())
		assert.Equal(t, "logic.branch", node.DefinitionID)
		assert.Equal(t, "Branch", node.Title)
		assert.Equal(t, mnode.NODE_KIND_LOGIC, node.Kind)
		assert.Equal(t, pos, node.Position)
		require.Len(t, node.Inputs, 2)
		require.Len(t, node.Outputs, 2)
		assert.True(t, node.Outputs[0].Type.IsExecution())
		assert.Equal(t, "false", node.Properties["condition"], "params seed properties")
		assert.True(t, node.PinIDsUnique())
	})

	t.Run("instances get distinct ids", func(t *testing.T) {
		a, err := c.Instantiate("math.add", mnode.Position{})
		require.NoError(t, err)
		b, err := c.Instantiate("math.add", mnode.Position{})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestGenericNode(t *testing.T) {
	node := nodedef.GenericNode("plugin.vanished", mnode.Position{X: 5, Y: 5})
	assert.False(t, node.ID.IsZero())
	assert.Equal(t, "plugin.vanished", node.DefinitionID)
	assert.Equal(t, "plugin.vanished", node.Title, "unknown nodes render their raw id")
	assert.Equal(t, mnode.NODE_KIND_UNSPECIFIED, node.Kind)
	assert.Empty(t, node.Inputs)
}

func TestInstantiateSubGraph(t *testing.T) {
	def := msubgraph.NewLocalMacro(idwrap.NewNow(), "Damage Falloff", time.Now())

	node := nodedef.InstantiateSubGraph(def, "", mnode.Position{X: 1, Y: 2})
	assert.Equal(t, mnode.NODE_KIND_MACRO_INSTANCE, node.Kind)
	assert.Equal(t, "Damage Falloff", node.Title)
	assert.Equal(t, mnode.SubGraphDefinitionID("", def.ID), node.DefinitionID)
	require.Len(t, node.Inputs, 1, "fresh macro exposes one exec input")
	require.Len(t, node.Outputs, 1, "fresh macro exposes one exec output")
	assert.True(t, node.Inputs[0].Type.IsExecution())
	assert.True(t, node.Outputs[0].Type.IsExecution())

	t.Run("library-qualified definition id", func(t *testing.T) {
		libNode := nodedef.InstantiateSubGraph(def, "engine_std", mnode.Position{})
		lib, macroID, ok := mnode.ParseSubGraphDefinitionID(libNode.DefinitionID)
		require.True(t, ok)
		assert.Equal(t, "engine_std", lib)
		assert.Equal(t, def.ID.String(), macroID)
	})
}

func TestSearch(t *testing.T) {
	c := nodedef.NewBuiltins()

	t.Run("empty query lists everything", func(t *testing.T) {
		assert.Len(t, c.Search(""), len(c.List()))
	})

	t.Run("title match", func(t *testing.T) {
		results := c.Search("branch")
		require.NotEmpty(t, results)
		assert.Equal(t, "logic.branch", results[0].ID)
	})

	t.Run("keyword match", func(t *testing.T) {
		results := c.Search("teleport")
		require.NotEmpty(t, results)
		assert.Equal(t, "object.set_location", results[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, c.Search("zzzzzzzz"))
	})
}

func TestParseManifest(t *testing.T) {
	manifest := []byte(`
plugin: physics_extras
nodes:
  - id: object.apply_impulse
    title: Apply Impulse
    category: Objects
    inputs:
      - id: exec
        type: execution
      - id: target
        name: Target
        type: object
      - id: impulse
        name: Impulse
        type: vector3
    outputs:
      - id: then
        type: execution
    params:
      - name: impulse
        type: vector3
`)

	defs, err := nodedef.ParseManifest(manifest)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "object.apply_impulse", def.ID)
	assert.Equal(t, mnode.NODE_KIND_OBJECT, def.Kind, "kind inferred from id namespace")
	require.Len(t, def.Inputs, 3)
	assert.Equal(t, mpin.DATA_KIND_VECTOR3, def.Inputs[2].Type.Kind)
	require.Len(t, def.Params, 1)
	assert.Equal(t, "0,0,0", def.Params[0].Default, "default literal filled from type")

	t.Run("registers into a catalog", func(t *testing.T) {
		c := nodedef.NewBuiltins()
		for _, d := range defs {
			require.NoError(t, c.Register(d))
		}
		_, ok := c.Get("object.apply_impulse")
		assert.True(t, ok)
	})

	t.Run("unknown pin type rejected", func(t *testing.T) {
		bad := []byte(`
nodes:
  - id: x.y
    title: X
    inputs:
      - id: in
        type: quaternion
`)
		_, err := nodedef.ParseManifest(bad)
		require.Error(t, err)
		var manifestErr *nodedef.ManifestError
		assert.ErrorAs(t, err, &manifestErr)
	})
}
