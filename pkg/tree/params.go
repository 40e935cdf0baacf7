package tree

import "regexp"

// Param is one macro call argument. Name is empty for positional arguments.
type Param struct {
	Name  string
	Value string
}

// Leading whitespace belongs to the match so a name:value pair is never split
// into a bare word.
var paramPattern = regexp.MustCompile(`\s*(?:([A-Za-z_][\w\-]*)\s*:)?\s*(?:"""([\s\S]*?)"""|"([^"]*)"|'([^']*)'|\[\[([^\]]*)\]\]|([^\s"']+))`)

// ParseParams splits the argument text of a macro call, e.g.
// `state:"$:/state" Target "the label"`. Quoted or bracketed empty values
// are kept so later positional arguments stay in their slots.
func ParseParams(s string) []Param {
	var params []Param
	for _, m := range paramPattern.FindAllStringSubmatchIndex(s, -1) {
		var p Param
		if m[2] >= 0 {
			p.Name = s[m[2]:m[3]]
		}
		for g := 2; 2*g+1 < len(m); g++ {
			if m[2*g] >= 0 {
				p.Value = s[m[2*g]:m[2*g+1]]
				break
			}
		}
		params = append(params, p)
	}
	return params
}

// ParamInfo declares how a macro parameter may be passed.
type ParamInfo struct {
	ByPos  int    // Position among unnamed arguments; ignored when ByName
	ByName bool   // Only accepted as name:value
	Type   string // "tiddler" or "text"
}

// Bind resolves call arguments against the declared parameters.
// Named arguments win over positional ones; unknown names are dropped.
func (info MacroInfo) Bind(params []Param) map[string]string {
	bound := make(map[string]string)
	byPos := make(map[int]string)
	for name, p := range info.Params {
		if !p.ByName {
			byPos[p.ByPos] = name
		}
	}

	pos := 0
	for _, p := range params {
		if p.Name != "" {
			if _, ok := info.Params[p.Name]; ok {
				bound[p.Name] = p.Value
			}
			continue
		}
		if name, ok := byPos[pos]; ok {
			if _, taken := bound[name]; !taken {
				bound[name] = p.Value
			}
		}
		pos++
	}
	return bound
}
