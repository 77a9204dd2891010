package mutators

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureFunctions = "functions"

// TransformFunctions normalizes every function definition form to the POSIX
// `name() { ... }` shape. `function name { ... }` and `function name() { ... }`
// both lose the keyword; the body text is preserved verbatim by patching only
// the span between the definition start and the body start.
func TransformFunctions(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() != syntax.KindFunctionDefinition {
			return
		}
		name := firstChildOfKind(n, syntax.KindWord)
		body := firstChildOfKind(n, syntax.KindCompoundStatement)
		if name == nil || body == nil {
			return
		}
		patches = append(patches, patch.Patch{
			Start: int(n.StartByte()),
			End:   int(body.StartByte()),
			Text:  content(name, source) + "() ",
		})
	})

	ctx.MarkFeature(FeatureFunctions)
	return patch.Apply(source, patches), nil
}
