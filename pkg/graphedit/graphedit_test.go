package graphedit_test

import (
	"testing"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphedit"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataNode(title string, out mpin.DataType, in ...mpin.DataType) mnode.Node {
	n := mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: "math.add",
		Title:        title,
		Kind:         mnode.NODE_KIND_MATH,
		Size:         mnode.Size{Width: 160, Height: 80},
		Outputs:      []mpin.Pin{{ID: "result", Name: "Result", Kind: mpin.PIN_KIND_OUTPUT, Type: out}},
	}
	for i, t := range in {
		id := "a"
		if i == 1 {
			id = "b"
		}
		n.Inputs = append(n.Inputs, mpin.Pin{ID: id, Kind: mpin.PIN_KIND_INPUT, Type: t})
	}
	return n
}

func execNode(title string) mnode.Node {
	return mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: "object.print",
		Title:        title,
		Kind:         mnode.NODE_KIND_OBJECT,
		Size:         mnode.Size{Width: 160, Height: 80},
		Inputs: []mpin.Pin{
			{ID: "exec", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Execution()},
			{ID: "message", Name: "Message", Kind: mpin.PIN_KIND_INPUT, Type: mpin.String()},
		},
		Outputs: []mpin.Pin{
			{ID: "then", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Execution()},
		},
	}
}

func rerouteNode() mnode.Node {
	return mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: mnode.DefinitionIDReroute,
		Title:        "Reroute",
		Kind:         mnode.NODE_KIND_REROUTE,
		Size:         mnode.Size{Width: 20, Height: 20},
		Inputs:       []mpin.Pin{{ID: "in", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Any()}},
		Outputs:      []mpin.Pin{{ID: "out", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Any()}},
	}
}

func mustAdd(t *testing.T, g *mgraph.Graph, n mnode.Node) {
	t.Helper()
	require.NoError(t, graphedit.AddNode(g, n))
}

func TestAddNode(t *testing.T) {
	t.Run("rejects duplicate node id", func(t *testing.T) {
		g := mgraph.New()
		n := dataNode("Add", mpin.Integer())
		mustAdd(t, g, n)

		err := graphedit.AddNode(g, n)
		assert.ErrorIs(t, err, graphedit.ErrNodeExists)
		assert.Len(t, g.Nodes, 1, "duplicate insert must not grow the graph")
	})

	t.Run("rejects duplicate pin ids within a direction", func(t *testing.T) {
		g := mgraph.New()
		n := dataNode("Add", mpin.Integer())
		n.Inputs = []mpin.Pin{
			{ID: "a", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Integer()},
			{ID: "a", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Integer()},
		}

		err := graphedit.AddNode(g, n)
		assert.ErrorIs(t, err, graphedit.ErrInvalidPins)
		assert.Empty(t, g.Nodes)
	})

	t.Run("same pin id across directions is allowed", func(t *testing.T) {
		g := mgraph.New()
		n := mnode.Node{
			ID:      idwrap.NewNow(),
			Inputs:  []mpin.Pin{{ID: "value", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Float()}},
			Outputs: []mpin.Pin{{ID: "value", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Float()}},
		}
		assert.NoError(t, graphedit.AddNode(g, n))
	})
}

func TestConnectValidation(t *testing.T) {
	g := mgraph.New()
	producer := dataNode("Producer", mpin.Integer())
	consumer := dataNode("Consumer", mpin.Integer(), mpin.Integer(), mpin.Integer())
	mustAdd(t, g, producer)
	mustAdd(t, g, consumer)

	t.Run("unknown source node", func(t *testing.T) {
		_, err := graphedit.Connect(g, idwrap.NewNow(), "result", consumer.ID, "a")
		assert.ErrorIs(t, err, graphedit.ErrUnknownPin)
	})

	t.Run("unknown output pin", func(t *testing.T) {
		_, err := graphedit.Connect(g, producer.ID, "missing", consumer.ID, "a")
		assert.ErrorIs(t, err, graphedit.ErrUnknownPin)
	})

	t.Run("unknown input pin", func(t *testing.T) {
		_, err := graphedit.Connect(g, producer.ID, "result", consumer.ID, "missing")
		assert.ErrorIs(t, err, graphedit.ErrUnknownPin)
	})

	t.Run("self connection rejected", func(t *testing.T) {
		_, err := graphedit.Connect(g, consumer.ID, "result", consumer.ID, "a")
		assert.ErrorIs(t, err, graphedit.ErrSelfConnection)
	})

	t.Run("valid connection lands", func(t *testing.T) {
		id, err := graphedit.Connect(g, producer.ID, "result", consumer.ID, "a")
		require.NoError(t, err)
		assert.False(t, id.IsZero())
		require.Len(t, g.Connections, 1)
		assert.Equal(t, producer.ID, g.Connections[0].FromNodeID)
		assert.Equal(t, "a", g.Connections[0].ToPinID)
	})
}

func TestConnectTypeCompatibility(t *testing.T) {
	t.Run("integer output into boolean input is rejected", func(t *testing.T) {
		g := mgraph.New()
		add := dataNode("Add", mpin.Integer())
		branch := mnode.Node{
			ID:           idwrap.NewNow(),
			DefinitionID: "logic.branch",
			Title:        "Branch",
			Kind:         mnode.NODE_KIND_LOGIC,
			Inputs: []mpin.Pin{
				{ID: "exec", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Execution()},
				{ID: "condition", Name: "Condition", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Boolean()},
			},
			Outputs: []mpin.Pin{
				{ID: "true", Name: "True", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Execution()},
				{ID: "false", Name: "False", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Execution()},
			},
		}
		mustAdd(t, g, add)
		mustAdd(t, g, branch)

		_, err := graphedit.Connect(g, add.ID, "result", branch.ID, "condition")
		assert.ErrorIs(t, err, graphedit.ErrIncompatibleTypes)
		assert.Empty(t, g.Connections, "rejected connection must leave the graph untouched")
	})

	t.Run("integer and float coerce both ways", func(t *testing.T) {
		g := mgraph.New()
		intOut := dataNode("IntOut", mpin.Integer())
		floatIn := dataNode("FloatIn", mpin.Float(), mpin.Float())
		mustAdd(t, g, intOut)
		mustAdd(t, g, floatIn)

		_, err := graphedit.Connect(g, intOut.ID, "result", floatIn.ID, "a")
		assert.NoError(t, err)
	})

	t.Run("execution never mixes with data", func(t *testing.T) {
		g := mgraph.New()
		printer := execNode("Print")
		other := execNode("Other")
		mustAdd(t, g, printer)
		mustAdd(t, g, other)

		_, err := graphedit.Connect(g, printer.ID, "then", other.ID, "message")
		assert.ErrorIs(t, err, graphedit.ErrIncompatibleTypes)
	})

	t.Run("any accepts everything", func(t *testing.T) {
		g := mgraph.New()
		producer := dataNode("Producer", mpin.Vector3())
		reroute := rerouteNode()
		mustAdd(t, g, producer)
		mustAdd(t, g, reroute)

		_, err := graphedit.Connect(g, producer.ID, "result", reroute.ID, "in")
		assert.NoError(t, err)
	})
}

func TestConnectEviction(t *testing.T) {
	t.Run("second incoming connection evicts the first", func(t *testing.T) {
		g := mgraph.New()
		first := dataNode("First", mpin.Integer())
		second := dataNode("Second", mpin.Integer())
		sink := dataNode("Sink", mpin.Integer(), mpin.Integer())
		mustAdd(t, g, first)
		mustAdd(t, g, second)
		mustAdd(t, g, sink)

		_, err := graphedit.Connect(g, first.ID, "result", sink.ID, "a")
		require.NoError(t, err)
		_, err = graphedit.Connect(g, second.ID, "result", sink.ID, "a")
		require.NoError(t, err)

		require.Len(t, g.Connections, 1, "input port holds at most one connection")
		incoming, ok := graphedit.IncomingConnection(g, sink.ID, "a")
		require.True(t, ok)
		assert.Equal(t, second.ID, incoming.FromNodeID, "newest connection wins")
	})

	t.Run("execution output holds a single connection", func(t *testing.T) {
		g := mgraph.New()
		source := execNode("Source")
		a := execNode("A")
		b := execNode("B")
		mustAdd(t, g, source)
		mustAdd(t, g, a)
		mustAdd(t, g, b)

		_, err := graphedit.Connect(g, source.ID, "then", a.ID, "exec")
		require.NoError(t, err)
		_, err = graphedit.Connect(g, source.ID, "then", b.ID, "exec")
		require.NoError(t, err)

		require.Len(t, g.Connections, 1)
		assert.Equal(t, b.ID, g.Connections[0].ToNodeID, "retargeting an exec output moves the wire")
	})

	t.Run("data output fans out", func(t *testing.T) {
		g := mgraph.New()
		producer := dataNode("Producer", mpin.Integer())
		sinkA := dataNode("SinkA", mpin.Integer(), mpin.Integer())
		sinkB := dataNode("SinkB", mpin.Integer(), mpin.Integer())
		mustAdd(t, g, producer)
		mustAdd(t, g, sinkA)
		mustAdd(t, g, sinkB)

		_, err := graphedit.Connect(g, producer.ID, "result", sinkA.ID, "a")
		require.NoError(t, err)
		_, err = graphedit.Connect(g, producer.ID, "result", sinkB.ID, "a")
		require.NoError(t, err)

		assert.Len(t, g.Connections, 2, "data outputs drive any number of inputs")
	})

	t.Run("reroute output holds a single connection even for data", func(t *testing.T) {
		g := mgraph.New()
		reroute := rerouteNode()
		sinkA := dataNode("SinkA", mpin.Integer(), mpin.Integer())
		sinkB := dataNode("SinkB", mpin.Integer(), mpin.Integer())
		mustAdd(t, g, reroute)
		mustAdd(t, g, sinkA)
		mustAdd(t, g, sinkB)

		_, err := graphedit.Connect(g, reroute.ID, "out", sinkA.ID, "a")
		require.NoError(t, err)
		_, err = graphedit.Connect(g, reroute.ID, "out", sinkB.ID, "a")
		require.NoError(t, err)

		require.Len(t, g.Connections, 1)
		assert.Equal(t, sinkB.ID, g.Connections[0].ToNodeID)
	})
}

func TestRemoveNodeCascades(t *testing.T) {
	g := mgraph.New()
	producer := dataNode("Producer", mpin.Integer())
	middle := dataNode("Middle", mpin.Integer(), mpin.Integer())
	sink := dataNode("Sink", mpin.Integer(), mpin.Integer())
	mustAdd(t, g, producer)
	mustAdd(t, g, middle)
	mustAdd(t, g, sink)

	_, err := graphedit.Connect(g, producer.ID, "result", middle.ID, "a")
	require.NoError(t, err)
	_, err = graphedit.Connect(g, middle.ID, "result", sink.ID, "a")
	require.NoError(t, err)
	require.Len(t, g.Connections, 2)

	graphedit.RemoveNode(g, middle.ID)

	assert.Len(t, g.Nodes, 2)
	assert.Empty(t, g.Connections, "every connection touching the node goes with it")

	for _, c := range g.Connections {
		assert.NotEqual(t, middle.ID, c.FromNodeID)
		assert.NotEqual(t, middle.ID, c.ToNodeID)
	}

	// Removing an absent node is a no-op.
	graphedit.RemoveNode(g, middle.ID)
	assert.Len(t, g.Nodes, 2)
}

func TestDisconnectPin(t *testing.T) {
	g := mgraph.New()
	producer := dataNode("Producer", mpin.Integer())
	sinkA := dataNode("SinkA", mpin.Integer(), mpin.Integer())
	sinkB := dataNode("SinkB", mpin.Integer(), mpin.Integer())
	mustAdd(t, g, producer)
	mustAdd(t, g, sinkA)
	mustAdd(t, g, sinkB)

	_, err := graphedit.Connect(g, producer.ID, "result", sinkA.ID, "a")
	require.NoError(t, err)
	_, err = graphedit.Connect(g, producer.ID, "result", sinkB.ID, "a")
	require.NoError(t, err)

	graphedit.DisconnectPin(g, producer.ID, "result")
	assert.Empty(t, g.Connections, "disconnect clears the port as source and target")

	assert.Empty(t, graphedit.ConnectionsAt(g, producer.ID, "result"))
}
