package compiler

import (
	"errors"
	"fmt"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
)

// ErrNoEventNodes rejects graphs with nothing to compile. Code generation
// is driven entirely by event entry points.
var ErrNoEventNodes = errors.New("graph has no event nodes")

// UnresolvedNodeTypeError reports a node whose definition id resolves to
// neither a catalog entry nor a macro. The editor renders such nodes as
// generic boxes; the compiler refuses them.
type UnresolvedNodeTypeError struct {
	NodeID       idwrap.IDWrap
	DefinitionID string
}

func (e *UnresolvedNodeTypeError) Error() string {
	return fmt.Sprintf("node %s references unresolved node type %q", e.NodeID.String(), e.DefinitionID)
}

// GenerationError reports a failure while emitting one generated function.
// Scope names the event or macro function so partial failures are
// attributable to the graph that caused them.
type GenerationError struct {
	Scope  string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generating %s: %s: %v", e.Scope, e.Reason, e.Err)
	}
	return fmt.Sprintf("generating %s: %s", e.Scope, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }
