package mutators

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeaturePipeline = "pipeline"

// TransformPipelines rewrites the Bash-only `|&` pipe operator (stdout and
// stderr) into the portable `2>&1 |` form. In tree-sitter-bash `|&` is its
// own anonymous node kind, so the rewrite is a direct token replacement.
func TransformPipelines(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() == "|&" {
			patches = append(patches, patch.Patch{
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
				Text:  "2>&1 |",
			})
		}
	})

	ctx.MarkFeature(FeaturePipeline)
	return patch.Apply(source, patches), nil
}
