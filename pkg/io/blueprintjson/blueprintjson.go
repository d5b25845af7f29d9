// Package blueprintjson reads and writes the versioned blueprint asset
// document: one JSON file carrying the main graph, local macros, class
// variables, tab layout and class identity, prefixed with a human-readable
// comment header that the parser strips. Loading falls back to the legacy
// multi-file layout when the unified format does not parse.
package blueprintjson

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mblueprint"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/session"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"
)

var (
	ErrNoActiveClass            = errors.New("no blueprint class is open")
	ErrMalformedDocument        = errors.New("blueprint document is malformed")
	ErrUnresolvedMacroReference = errors.New("macro reference does not resolve")
)

// Save flushes the session's tabs and writes the complete asset document.
// The write is plain and non-atomic; the all-or-nothing discipline belongs
// to generated code output, not to the asset file the editor owns.
func Save(path string, sess *session.EditingSession) error {
	if sess == nil || sess.Metadata.ClassName == "" {
		return ErrNoActiveClass
	}

	sess.Metadata.ModifiedAt = time.Now()
	asset := AssembleAsset(sess)

	data, err := json.MarshalIndent(asset, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing blueprint asset: %w", err)
	}

	var buf bytes.Buffer
	writeHeader(&buf, asset.Metadata)
	buf.Write(data)
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing blueprint asset: %w", err)
	}
	sess.ClearDirty()
	return nil
}

// AssembleAsset flushes the session and builds its persisted form. The main
// graph only ever comes from the tab flagged as main; macro tabs are carried
// by the local macro list, never by the main graph section.
func AssembleAsset(sess *session.EditingSession) mblueprint.BlueprintAsset {
	sess.FlushTabs()

	asset := mblueprint.BlueprintAsset{
		FormatVersion: mblueprint.FormatVersion,
		MainGraph:     tgraph.SerializeGraphToDescription(sess.MainTab().Graph, sess.Catalog(), sess.Logger()),
		LocalMacros:   sess.LocalMacros,
		Variables:     sess.Variables,
		Metadata:      sess.Metadata,
		EditorState: mblueprint.EditorState{
			ActiveTabIndex:  sess.ActiveTabIndex,
			GraphViewStates: make(map[string]mblueprint.ViewState, len(sess.Tabs)),
		},
	}
	for i := range sess.Tabs {
		tab := &sess.Tabs[i]
		asset.EditorState.OpenTabIDs = append(asset.EditorState.OpenTabIDs, tab.ID)
		asset.EditorState.GraphViewStates[tab.ID] = mblueprint.ViewState{
			PanOffsetX: tab.Graph.Pan.X,
			PanOffsetY: tab.Graph.Pan.Y,
			Zoom:       tab.Graph.Zoom,
		}
	}
	return asset
}

func writeHeader(buf *bytes.Buffer, meta mblueprint.Metadata) {
	fmt.Fprintf(buf, "// Pulsar Blueprint Asset (format v%d)\n", mblueprint.FormatVersion)
	fmt.Fprintf(buf, "// Class: %s\n", meta.ClassName)
	fmt.Fprintf(buf, "// Saved: %s\n", meta.ModifiedAt.UTC().Format(time.RFC3339))
	buf.WriteString("// Edit through the blueprint editor; header lines are ignored on parse.\n")
}

// stripHeader drops the leading comment block and surrounding whitespace,
// returning the document body. Every legacy and unified variant starts its
// payload at the first non-comment line.
func stripHeader(data []byte) []byte {
	rest := data
	for {
		rest = bytes.TrimLeft(rest, " \t\r\n")
		if !bytes.HasPrefix(rest, []byte("//")) {
			return rest
		}
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			return nil
		}
		rest = rest[idx+1:]
	}
}
