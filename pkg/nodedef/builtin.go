package nodedef

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

// Palette categories.
const (
	CategoryEvents  = "Events"
	CategoryMath    = "Math"
	CategoryLogic   = "Logic"
	CategoryObjects = "Objects"
	CategoryUtility = "Utility"
	CategoryMacros  = "Macros"
)

// Pin ids the compiler routes execution through.
const (
	PinExec  = "exec"
	PinThen  = "then"
	PinBody  = "body"
	PinTrue  = "true"
	PinFalse = "false"

	PinRerouteIn  = "in"
	PinRerouteOut = "out"
)

// ParamExpression is the property key carrying an expression node's source.
const ParamExpression = "expression"

// ParamEventName is the property key naming a custom event.
const ParamEventName = "name"

func execIn() PinTemplate  { return PinTemplate{ID: PinExec, Type: mpin.Execution()} }
func execOut() PinTemplate { return PinTemplate{ID: PinThen, Type: mpin.Execution()} }

func binaryMath(id, title, description string, keywords ...string) Definition {
	return Definition{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    CategoryMath,
		Color:       "#27AE60",
		Kind:        mnode.NODE_KIND_MATH,
		Inputs: []PinTemplate{
			{ID: "a", Name: "A", Type: mpin.Float()},
			{ID: "b", Name: "B", Type: mpin.Float()},
		},
		Outputs: []PinTemplate{{ID: "result", Name: "Result", Type: mpin.Float()}},
		Params: []Param{
			{Name: "a", Type: mpin.Float(), Default: "0.0"},
			{Name: "b", Type: mpin.Float(), Default: "0.0"},
		},
		Keywords: keywords,
	}
}

func binaryLogic(id, title string, in mpin.DataType, keywords ...string) Definition {
	return Definition{
		ID:       id,
		Title:    title,
		Category: CategoryLogic,
		Color:    "#8E44AD",
		Kind:     mnode.NODE_KIND_LOGIC,
		Inputs: []PinTemplate{
			{ID: "a", Name: "A", Type: in},
			{ID: "b", Name: "B", Type: in},
		},
		Outputs:  []PinTemplate{{ID: "result", Name: "Result", Type: mpin.Boolean()}},
		Keywords: keywords,
	}
}

// NewBuiltins returns a catalog preloaded with the engine's built-in node
// set. Registration cannot fail for the builtin table; a failure here is a
// programming error, so it panics.
func NewBuiltins() *Catalog {
	c := NewCatalog()
	for _, def := range builtinDefinitions() {
		if err := c.Register(def); err != nil {
			panic(err)
		}
	}
	return c
}

func builtinDefinitions() []Definition {
	return []Definition{
		{
			ID:          "event.begin_play",
			Title:       "Begin Play",
			Icon:        "play",
			Description: "Fires once when the actor enters the world.",
			Category:    CategoryEvents,
			Color:       "#C0392B",
			Kind:        mnode.NODE_KIND_EVENT,
			Outputs:     []PinTemplate{{ID: PinBody, Name: "Body", Type: mpin.Execution()}},
			Keywords:    []string{"start", "spawn", "init"},
		},
		{
			ID:          "event.tick",
			Title:       "Tick",
			Icon:        "clock",
			Description: "Fires every frame with the frame delta.",
			Category:    CategoryEvents,
			Color:       "#C0392B",
			Kind:        mnode.NODE_KIND_EVENT,
			Outputs: []PinTemplate{
				{ID: PinBody, Name: "Body", Type: mpin.Execution()},
				{ID: "delta_time", Name: "Delta Time", Type: mpin.Float()},
			},
			Keywords: []string{"frame", "update"},
		},
		{
			ID:          "event.actor_overlap",
			Title:       "Actor Overlap",
			Icon:        "overlap",
			Description: "Fires when another actor overlaps this one.",
			Category:    CategoryEvents,
			Color:       "#C0392B",
			Kind:        mnode.NODE_KIND_EVENT,
			Outputs: []PinTemplate{
				{ID: PinBody, Name: "Body", Type: mpin.Execution()},
				{ID: "other", Name: "Other Actor", Type: mpin.Object()},
			},
			Keywords: []string{"collision", "trigger"},
		},
		{
			ID:          "event.custom",
			Title:       "Custom Event",
			Icon:        "bolt",
			Description: "A named event callable from the engine.",
			Category:    CategoryEvents,
			Color:       "#C0392B",
			Kind:        mnode.NODE_KIND_EVENT,
			Outputs:     []PinTemplate{{ID: PinBody, Name: "Body", Type: mpin.Execution()}},
			Params:      []Param{{Name: ParamEventName, Type: mpin.String(), Default: "CustomEvent"}},
			Keywords:    []string{"dispatch", "call"},
		},

		binaryMath("math.add", "Add", "A + B", "plus", "sum"),
		binaryMath("math.subtract", "Subtract", "A - B", "minus"),
		binaryMath("math.multiply", "Multiply", "A * B", "times", "product"),
		binaryMath("math.divide", "Divide", "A / B", "quotient"),

		{
			ID:          "logic.branch",
			Title:       "Branch",
			Icon:        "fork",
			Description: "Routes execution by the condition.",
			Category:    CategoryLogic,
			Color:       "#8E44AD",
			Kind:        mnode.NODE_KIND_LOGIC,
			Inputs: []PinTemplate{
				execIn(),
				{ID: "condition", Name: "Condition", Type: mpin.Boolean()},
			},
			Outputs: []PinTemplate{
				{ID: PinTrue, Name: "True", Type: mpin.Execution()},
				{ID: PinFalse, Name: "False", Type: mpin.Execution()},
			},
			Params:   []Param{{Name: "condition", Type: mpin.Boolean(), Default: "false"}},
			Keywords: []string{"if", "condition", "select"},
		},
		binaryLogic("logic.and", "And", mpin.Boolean(), "both"),
		binaryLogic("logic.or", "Or", mpin.Boolean(), "either"),
		{
			ID:       "logic.not",
			Title:    "Not",
			Category: CategoryLogic,
			Color:    "#8E44AD",
			Kind:     mnode.NODE_KIND_LOGIC,
			Inputs:   []PinTemplate{{ID: "value", Name: "Value", Type: mpin.Boolean()}},
			Outputs:  []PinTemplate{{ID: "result", Name: "Result", Type: mpin.Boolean()}},
			Keywords: []string{"invert", "negate"},
		},
		binaryLogic("logic.equals", "Equals", mpin.Float(), "compare", "=="),
		binaryLogic("logic.greater", "Greater", mpin.Float(), "compare", ">"),
		{
			ID:          "logic.expression",
			Title:       "Expression",
			Icon:        "formula",
			Description: "Evaluates an expression over the blueprint's variables.",
			Category:    CategoryLogic,
			Color:       "#8E44AD",
			Kind:        mnode.NODE_KIND_LOGIC,
			Outputs:     []PinTemplate{{ID: "result", Name: "Result", Type: mpin.Any()}},
			Params:      []Param{{Name: ParamExpression, Type: mpin.String(), Default: ""}},
			Keywords:    []string{"eval", "formula", "script"},
		},

		{
			ID:          "object.get_location",
			Title:       "Get Location",
			Category:    CategoryObjects,
			Color:       "#2980B9",
			Kind:        mnode.NODE_KIND_OBJECT,
			Inputs:      []PinTemplate{{ID: "target", Name: "Target", Type: mpin.Object()}},
			Outputs:     []PinTemplate{{ID: "location", Name: "Location", Type: mpin.Vector3()}},
			Keywords:    []string{"position", "transform"},
			Description: "Reads an actor's world location.",
		},
		{
			ID:          "object.set_location",
			Title:       "Set Location",
			Category:    CategoryObjects,
			Color:       "#2980B9",
			Kind:        mnode.NODE_KIND_OBJECT,
			Inputs: []PinTemplate{
				execIn(),
				{ID: "target", Name: "Target", Type: mpin.Object()},
				{ID: "location", Name: "Location", Type: mpin.Vector3()},
			},
			Outputs:     []PinTemplate{execOut()},
			Params:      []Param{{Name: "location", Type: mpin.Vector3(), Default: "0,0,0"}},
			Keywords:    []string{"position", "teleport", "move"},
			Description: "Moves an actor to a world location.",
		},
		{
			ID:          "object.print",
			Title:       "Print",
			Icon:        "console",
			Category:    CategoryObjects,
			Color:       "#2980B9",
			Kind:        mnode.NODE_KIND_OBJECT,
			Inputs: []PinTemplate{
				execIn(),
				{ID: "message", Name: "Message", Type: mpin.String()},
			},
			Outputs:     []PinTemplate{execOut()},
			Params:      []Param{{Name: "message", Type: mpin.String(), Default: "Hello"}},
			Keywords:    []string{"log", "debug", "output"},
			Description: "Writes a message to the engine log.",
		},
		{
			ID:          "object.spawn",
			Title:       "Spawn Actor",
			Category:    CategoryObjects,
			Color:       "#2980B9",
			Kind:        mnode.NODE_KIND_OBJECT,
			Inputs: []PinTemplate{
				execIn(),
				{ID: "class", Name: "Class", Type: mpin.String()},
				{ID: "location", Name: "Location", Type: mpin.Vector3()},
			},
			Outputs: []PinTemplate{
				execOut(),
				{ID: "spawned", Name: "Spawned", Type: mpin.Object()},
			},
			Params: []Param{
				{Name: "class", Type: mpin.String(), Default: ""},
				{Name: "location", Type: mpin.Vector3(), Default: "0,0,0"},
			},
			Keywords:    []string{"create", "instantiate"},
			Description: "Spawns a new actor of the given class.",
		},
		{
			ID:          "object.destroy",
			Title:       "Destroy Actor",
			Category:    CategoryObjects,
			Color:       "#2980B9",
			Kind:        mnode.NODE_KIND_OBJECT,
			Inputs: []PinTemplate{
				execIn(),
				{ID: "target", Name: "Target", Type: mpin.Object()},
			},
			Outputs:     []PinTemplate{execOut()},
			Keywords:    []string{"remove", "despawn", "kill"},
			Description: "Removes an actor from the world.",
		},

		{
			ID:       mnode.DefinitionIDReroute,
			Title:    "Reroute",
			Category: CategoryUtility,
			Color:    "#7F8C8D",
			Kind:     mnode.NODE_KIND_REROUTE,
			Inputs:   []PinTemplate{{ID: PinRerouteIn, Type: mpin.Any()}},
			Outputs:  []PinTemplate{{ID: PinRerouteOut, Type: mpin.Any()}},
			Keywords: []string{"wire", "bend", "knot"},
		},
		{
			ID:       mnode.DefinitionIDMacroEntry,
			Title:    "Entry",
			Category: CategoryMacros,
			Color:    "#16A085",
			Kind:     mnode.NODE_KIND_MACRO_ENTRY,
			Outputs:  []PinTemplate{{ID: PinBody, Name: "Body", Type: mpin.Execution()}},
		},
		{
			ID:       mnode.DefinitionIDMacroExit,
			Title:    "Exit",
			Category: CategoryMacros,
			Color:    "#16A085",
			Kind:     mnode.NODE_KIND_MACRO_EXIT,
			Inputs:   []PinTemplate{{ID: PinThen, Name: "Then", Type: mpin.Execution()}},
		},
	}
}
