package testutil

import (
	"log/slog"
	"testing"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphedit"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/logger/mocklogger"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/session"
)

// BaseSession bundles the fixtures most blueprint tests need: the built-in
// catalog, an empty macro registry and a fresh editing session around an
// empty main graph.
type BaseSession struct {
	Catalog  *nodedef.Catalog
	Registry *macrolib.Registry
	Session  *session.EditingSession
	t        *testing.T
}

func CreateBaseSession(t *testing.T, className string) *BaseSession {
	t.Helper()
	catalog := nodedef.NewBuiltins()
	registry := macrolib.NewRegistry(nil)
	sess := session.New(className, catalog, registry, mocklogger.NewMockLogger())
	return &BaseSession{Catalog: catalog, Registry: registry, Session: sess, t: t}
}

// AddNode stamps a definition into the session's active graph.
func (b *BaseSession) AddNode(definitionID string, x, y float64) mnode.Node {
	b.t.Helper()
	return AddNode(b.t, b.Session.ActiveGraph(), b.Catalog, definitionID, x, y)
}

// Connect wires two pins on the session's active graph.
func (b *BaseSession) Connect(from mnode.Node, fromPin string, to mnode.Node, toPin string) {
	b.t.Helper()
	Connect(b.t, b.Session.ActiveGraph(), from, fromPin, to, toPin)
}

func (b *BaseSession) Logger() *slog.Logger {
	return mocklogger.NewMockLogger()
}

// AddNode stamps a catalog definition into the graph at the given position.
func AddNode(t *testing.T, g *mgraph.Graph, catalog *nodedef.Catalog, definitionID string, x, y float64) mnode.Node {
	t.Helper()
	node, err := catalog.Instantiate(definitionID, mnode.Position{X: x, Y: y})
	if err != nil {
		t.Fatal(err)
	}
	if err := graphedit.AddNode(g, node); err != nil {
		t.Fatal(err)
	}
	return node
}

// Connect wires two pins, failing the test on any connection-rule violation.
func Connect(t *testing.T, g *mgraph.Graph, from mnode.Node, fromPin string, to mnode.Node, toPin string) {
	t.Helper()
	if _, err := graphedit.Connect(g, from.ID, fromPin, to.ID, toPin); err != nil {
		t.Fatal(err)
	}
}

func AssertFatal[c comparable](t *testing.T, expected, got c) {
	t.Helper()
	if got != expected {
		t.Fatalf("got %v, expected %v", got, expected)
	}
}

func Assert[c comparable](t *testing.T, expected, got c) {
	t.Helper()
	if got != expected {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func AssertNot[c comparable](t *testing.T, not, got c) {
	t.Helper()
	if got == not {
		t.Errorf("got %v, expected not %v", got, not)
	}
}

func AssertNotFatal[c comparable](t *testing.T, not, got c) {
	t.Helper()
	if got == not {
		t.Fatalf("got %v, expected not %v", got, not)
	}
}
