package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Param
	}{
		{"empty", "", nil},
		{"positional", "S Target", []Param{{Value: "S"}, {Value: "Target"}}},
		{"named", "state:S label:'Click me'", []Param{{Name: "state", Value: "S"}, {Name: "label", Value: "Click me"}}},
		{"system title", "$:/state/slider", []Param{{Value: "$:/state/slider"}}},
		{"named system title", `state:"$:/state/x"`, []Param{{Name: "state", Value: "$:/state/x"}}},
		{"brackets", `[[A Title]] content:"""say "hi" now"""`, []Param{{Value: "A Title"}, {Name: "content", Value: `say "hi" now`}}},
		{"empty named", `label:""`, []Param{{Name: "label", Value: ""}}},
		{"named after positional", `S Target label:"Open me" content:Hello`, []Param{
			{Value: "S"}, {Value: "Target"}, {Name: "label", Value: "Open me"}, {Name: "content", Value: "Hello"},
		}},
		{"named with spaces", `S  label : L`, []Param{{Value: "S"}, {Name: "label", Value: "L"}}},
		{"empty positional kept", `"" Target '' [[]] Last`, []Param{
			{Value: ""}, {Value: "Target"}, {Value: ""}, {Value: ""}, {Value: "Last"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseParams(tc.in))
		})
	}
}

func TestMacroInfo_BindEmptyPositional(t *testing.T) {
	info := MacroInfo{
		Name: "demo",
		Params: map[string]ParamInfo{
			"state":  {ByPos: 0},
			"target": {ByPos: 1},
			"label":  {ByPos: 2},
		},
	}

	got := info.Bind(ParseParams(`"" MyTarget "Lbl"`))
	assert.Equal(t, map[string]string{"state": "", "target": "MyTarget", "label": "Lbl"}, got)
}

func TestMacroInfo_Bind(t *testing.T) {
	info := MacroInfo{
		Name: "demo",
		Params: map[string]ParamInfo{
			"first":   {ByPos: 0},
			"second":  {ByPos: 1},
			"default": {ByName: true},
		},
	}

	got := info.Bind([]Param{
		{Value: "a"},
		{Name: "default", Value: "open"},
		{Value: "b"},
		{Value: "overflow"},
		{Name: "unknown", Value: "x"},
	})
	assert.Equal(t, map[string]string{"first": "a", "second": "b", "default": "open"}, got)

	// Named argument beats a positional one for the same slot.
	got = info.Bind([]Param{{Name: "first", Value: "named"}, {Value: "pos"}})
	assert.Equal(t, "named", got["first"])
	assert.Equal(t, "", got["second"])
	_, ok := got["second"]
	assert.False(t, ok)
}
