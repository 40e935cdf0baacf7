package slider

import (
	"github.com/aretw0/rabbithole/pkg/tree"
)

// TranscludeMacro is the macro used to embed the target record.
const TranscludeMacro = "tiddler"

// MaterializeBody produces the body content. Inline content takes precedence
// over the target, which is embedded by reference so the transclusion keeps
// tracking the target record.
func MaterializeBody(cfg Config, parser tree.Parser) []tree.Node {
	switch {
	case cfg.Has(ParamContent):
		if parser == nil {
			return []tree.Node{tree.NewText(cfg.Content)}
		}
		return parser.Parse(ContentDialect, cfg.Content)
	case cfg.Has(ParamTarget):
		return []tree.Node{tree.NewMacro(TranscludeMacro, tree.Param{Name: "target", Value: cfg.Target})}
	default:
		return []tree.Node{tree.NewError(NoContentMessage)}
	}
}
