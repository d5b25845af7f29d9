// Package tgraph converts between the live editing graph and its persisted
// description form. The description is deliberately lossy: transient UI
// state (selection, comment containment, pan/zoom) never round-trips, and
// display metadata is rehydrated from the node catalog.
package tgraph

import (
	"log/slog"
	"sort"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphedit"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mcomment"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraphdesc"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
)

// SerializeGraphToDescription flattens a live graph into its document form.
// Property literals are typed through the catalog's param declarations; a
// literal that does not parse as its declared type is stored as a plain
// string with a warning rather than dropped.
func SerializeGraphToDescription(g *mgraph.Graph, catalog *nodedef.Catalog, logger *slog.Logger) mgraphdesc.GraphDescription {
	desc := mgraphdesc.New()

	for i := range g.Nodes {
		node := &g.Nodes[i]
		desc.Nodes[node.ID.String()] = serializeNode(node, catalog, logger)
	}

	for _, c := range g.Connections {
		desc.Connections = append(desc.Connections, mgraphdesc.ConnectionDescription{
			ID:         c.ID.String(),
			SourceNode: c.FromNodeID.String(),
			SourcePin:  c.FromPinID,
			TargetNode: c.ToNodeID.String(),
			TargetPin:  c.ToPinID,
		})
	}

	for i := range g.Comments {
		comment := &g.Comments[i]
		desc.Comments = append(desc.Comments, mgraphdesc.CommentDescription{
			ID:       comment.ID.String(),
			Position: mgraphdesc.Position{X: comment.Position.X, Y: comment.Position.Y},
			Size:     mgraphdesc.Size{Width: comment.Size.Width, Height: comment.Size.Height},
			Text:     comment.Text,
			Color:    comment.Color,
		})
	}

	return desc
}

func serializeNode(node *mnode.Node, catalog *nodedef.Catalog, logger *slog.Logger) mgraphdesc.NodeDescription {
	nd := mgraphdesc.NodeDescription{
		NodeType:    node.DefinitionID,
		Title:       node.Title,
		Position:    mgraphdesc.Position{X: node.Position.X, Y: node.Position.Y},
		Description: node.Description,
		Color:       node.Color,
	}
	if node.Size.Width != 0 || node.Size.Height != 0 {
		nd.Size = &mgraphdesc.Size{Width: node.Size.Width, Height: node.Size.Height}
	}

	for _, p := range node.Inputs {
		nd.Pins = append(nd.Pins, serializePin(p))
	}
	for _, p := range node.Outputs {
		nd.Pins = append(nd.Pins, serializePin(p))
	}

	if len(node.Properties) > 0 {
		nd.Properties = make(map[string]mgraphdesc.PropertyValue, len(node.Properties))
		def, hasDef := catalog.Get(node.DefinitionID)
		for key, literal := range node.Properties {
			nd.Properties[key] = serializeProperty(node, def, hasDef, key, literal, logger)
		}
	}
	return nd
}

func serializeProperty(node *mnode.Node, def nodedef.Definition, hasDef bool, key, literal string, logger *slog.Logger) mgraphdesc.PropertyValue {
	if hasDef {
		for _, param := range def.Params {
			if param.Name != key {
				continue
			}
			value, ok := propertyValueFromLiteral(param.Type, literal)
			if ok {
				return value
			}
			logger.Warn("property literal does not parse as its declared type, storing as string",
				"node", node.ID.String(), "property", key, "type", param.Type.DisplayString(), "literal", literal)
			return stringProperty(literal)
		}
	}
	return stringProperty(literal)
}

func serializePin(p mpin.Pin) mgraphdesc.PinDescription {
	return mgraphdesc.PinDescription{
		ID: p.ID,
		Pin: mgraphdesc.PinSpec{
			Name:     p.Name,
			PinType:  mpin.StringPinKind(p.Kind),
			DataType: mpin.FormatDataType(p.Type),
		},
	}
}

// DeserializeDescriptionToGraph rebuilds a live graph from its document
// form. The conversion is tolerant: malformed node ids, unknown data types
// and dangling connections degrade with a warning instead of failing,
// because a hand-edited or version-skewed document must still open.
func DeserializeDescriptionToGraph(desc mgraphdesc.GraphDescription, catalog *nodedef.Catalog, logger *slog.Logger) *mgraph.Graph {
	g := mgraph.New()

	nodeIDs := make([]string, 0, len(desc.Nodes))
	for id := range desc.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	for _, idText := range nodeIDs {
		id, err := idwrap.NewText(idText)
		if err != nil {
			logger.Warn("skipping node with malformed id", "node", idText, "error", err)
			continue
		}
		node := deserializeNode(id, desc.Nodes[idText], catalog, logger)
		g.Nodes = append(g.Nodes, node)
	}

	for _, cd := range desc.Connections {
		conn, ok := deserializeConnection(g, cd, logger)
		if !ok {
			continue
		}
		g.Connections = append(g.Connections, conn)
	}

	for _, cd := range desc.Comments {
		id, err := idwrap.NewText(cd.ID)
		if err != nil {
			id = idwrap.NewNow()
		}
		comment := mcomment.Comment{
			ID:       id,
			Position: mnode.Position{X: cd.Position.X, Y: cd.Position.Y},
			Size:     mnode.Size{Width: cd.Size.Width, Height: cd.Size.Height},
			Text:     cd.Text,
			Color:    cd.Color,
		}
		comment.ClampSize()
		g.Comments = append(g.Comments, comment)
	}

	graphedit.RecomputeContainment(g)
	return g
}

func deserializeNode(id idwrap.IDWrap, nd mgraphdesc.NodeDescription, catalog *nodedef.Catalog, logger *slog.Logger) mnode.Node {
	node := mnode.Node{
		ID:           id,
		DefinitionID: nd.NodeType,
		Title:        nd.Title,
		Position:     mnode.Position{X: nd.Position.X, Y: nd.Position.Y},
		Description:  nd.Description,
		Color:        nd.Color,
	}

	def, hasDef := catalog.Get(nd.NodeType)
	if hasDef {
		node.Kind = def.Kind
		node.Icon = def.Icon
		if node.Title == "" {
			node.Title = def.Title
		}
		if node.Color == "" {
			node.Color = def.Color
		}
		if node.Description == "" {
			node.Description = def.Description
		}
	} else {
		// Unknown definitions still render; the compiler rejects them later.
		node.Kind = mnode.KindFromDefinitionID(nd.NodeType)
		if node.Title == "" {
			node.Title = nd.NodeType
		}
	}

	for _, pd := range nd.Pins {
		kind, ok := mpin.ParsePinKind(pd.Pin.PinType)
		if !ok {
			logger.Warn("skipping pin with unknown direction", "node", id.String(), "pin", pd.ID, "pin_type", pd.Pin.PinType)
			continue
		}
		dataType, ok := mpin.ParseDataType(pd.Pin.DataType)
		if !ok {
			logger.Warn("unknown pin data type, degrading to Any", "node", id.String(), "pin", pd.ID, "data_type", pd.Pin.DataType)
			dataType = mpin.Any()
		}
		pin := mpin.Pin{ID: pd.ID, Name: pd.Pin.Name, Kind: kind, Type: dataType}
		if kind == mpin.PIN_KIND_INPUT {
			node.Inputs = append(node.Inputs, pin)
		} else {
			node.Outputs = append(node.Outputs, pin)
		}
	}

	if nd.Size != nil {
		node.Size = mnode.Size{Width: nd.Size.Width, Height: nd.Size.Height}
	} else {
		node.Size = nodedef.DefaultSize(node.Kind, len(node.Inputs), len(node.Outputs))
	}

	if len(nd.Properties) > 0 {
		node.Properties = make(map[string]string, len(nd.Properties))
		for key, value := range nd.Properties {
			literal, ok := literalFromPropertyValue(value)
			if !ok {
				logger.Warn("skipping property with mismatched value", "node", id.String(), "property", key, "type", value.Type)
				continue
			}
			node.Properties[key] = literal
		}
	}

	return node
}

func deserializeConnection(g *mgraph.Graph, cd mgraphdesc.ConnectionDescription, logger *slog.Logger) (mconnection.Connection, bool) {
	fromID, err := idwrap.NewText(cd.SourceNode)
	if err != nil {
		logger.Warn("skipping connection with malformed source id", "source_node", cd.SourceNode)
		return mconnection.Connection{}, false
	}
	toID, err := idwrap.NewText(cd.TargetNode)
	if err != nil {
		logger.Warn("skipping connection with malformed target id", "target_node", cd.TargetNode)
		return mconnection.Connection{}, false
	}

	fromNode, ok := g.FindNode(fromID)
	if !ok {
		logger.Warn("skipping dangling connection", "source_node", cd.SourceNode)
		return mconnection.Connection{}, false
	}
	toNode, ok := g.FindNode(toID)
	if !ok {
		logger.Warn("skipping dangling connection", "target_node", cd.TargetNode)
		return mconnection.Connection{}, false
	}
	if _, ok := fromNode.FindOutput(cd.SourcePin); !ok {
		logger.Warn("skipping connection to unknown source pin", "source_node", cd.SourceNode, "source_pin", cd.SourcePin)
		return mconnection.Connection{}, false
	}
	if _, ok := toNode.FindInput(cd.TargetPin); !ok {
		logger.Warn("skipping connection to unknown target pin", "target_node", cd.TargetNode, "target_pin", cd.TargetPin)
		return mconnection.Connection{}, false
	}

	id, err := idwrap.NewText(cd.ID)
	if err != nil {
		id = idwrap.NewNow()
	}
	return mconnection.New(id, fromID, cd.SourcePin, toID, cd.TargetPin), true
}
