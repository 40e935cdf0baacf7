// Package slider implements the slider macro: a label that reveals or hides
// a body of content, with its open state optionally persisted in a record.
//
//	<span class="tw-slider {class}" data-tw-slider-type="{state}">
//		<a class="btn btn-info" data-rh-role="slider-toggle">{label}</a>
//		<div class="tw-slider-body" style="display:{block|none}">{content}</div>
//	</span>
//
// The body is only materialized the first time the slider is open, and a
// refresh patches visibility in place instead of rebuilding the widget.
package slider

import "github.com/aretw0/rabbithole/pkg/tree"

// Name is the macro name.
const Name = "slider"

// Markup constants.
const (
	BaseClass  = "tw-slider"
	BodyClass  = "tw-slider-body"
	TypeAttr   = "data-tw-slider-type"
	RoleToggle = "slider-toggle"
)

// Persisted state values.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// NoContentMessage is shown in the body when neither content nor target is given.
const NoContentMessage = "No content specified for slider"

// ContentDialect is the dialect inline content is parsed with.
const ContentDialect = "text/x-tiddlywiki"

// Parameter names.
const (
	ParamState   = "state"
	ParamTarget  = "target"
	ParamLabel   = "label"
	ParamTooltip = "tooltip"
	ParamDefault = "default"
	ParamClass   = "class"
	ParamContent = "content"
)

// Info declares the slider's parameters and the interactions it handles.
var Info = tree.MacroInfo{
	Name: Name,
	Params: map[string]tree.ParamInfo{
		ParamState:   {ByPos: 0, Type: "tiddler"},
		ParamTarget:  {ByPos: 1, Type: "tiddler"},
		ParamLabel:   {ByPos: 2, Type: "text"},
		ParamTooltip: {ByPos: 3, Type: "text"},
		ParamDefault: {ByName: true, Type: "text"},
		ParamClass:   {ByName: true, Type: "text"},
		ParamContent: {ByName: true, Type: "text"},
	},
	Events: []tree.EventKind{tree.EventClick, tree.EventTap, tree.EventKeyActivate},
}

// Config is the slider configuration resolved at construction time.
// A parameter counts as present when it was passed, even with an empty value,
// except state: an empty state title means no state record.
type Config struct {
	StateKey     string
	DefaultState string
	Class        string
	Content      string
	Target       string
	Label        string
	Tooltip      string

	present map[string]bool
}

// ConfigFromParams builds a Config from bound macro parameters.
func ConfigFromParams(params map[string]string) Config {
	cfg := Config{present: make(map[string]bool, len(params))}
	for name, v := range params {
		if name == ParamState && v == "" {
			continue
		}
		cfg.present[name] = true
		switch name {
		case ParamState:
			cfg.StateKey = v
		case ParamDefault:
			cfg.DefaultState = v
		case ParamClass:
			cfg.Class = v
		case ParamContent:
			cfg.Content = v
		case ParamTarget:
			cfg.Target = v
		case ParamLabel:
			cfg.Label = v
		case ParamTooltip:
			cfg.Tooltip = v
		}
	}
	return cfg
}

// Has reports whether the named parameter was given.
func (c Config) Has(param string) bool {
	return c.present[param]
}

// LabelText is the label, falling back to the target title.
func (c Config) LabelText() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Target
}
