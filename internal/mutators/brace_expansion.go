package mutators

import (
	"fmt"
	"regexp"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureBraceExpansion = "brace_expansion"

var braceRangeRe = regexp.MustCompile(`^\{(-?\d+)\.\.(-?\d+)\}$`)

// TransformBraceExpansion rewrites integer range braces into seq calls:
// {1..5} becomes $(seq 1 5), {5..1} becomes $(seq 5 -1 1). Non-integer and
// non-range brace forms ({a..c}, {x,y}) are left untouched.
func TransformBraceExpansion(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		// negative bounds parse as a concatenation of "{", "-2..2", "}"
		// rather than a brace_expression; the anchored regex sorts out
		// which concatenations are actually ranges
		if n.Type() != syntax.KindBraceExpression && n.Type() != syntax.KindConcatenation {
			return
		}
		text := seqForBraceRange(content(n, source))
		if text == "" {
			return
		}
		patches = append(patches, patch.Patch{
			Start: int(n.StartByte()),
			End:   int(n.EndByte()),
			Text:  text,
		})
	})

	ctx.MarkFeature(FeatureBraceExpansion)
	return patch.Apply(source, patches), nil
}

func seqForBraceRange(text string) string {
	m := braceRangeRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if start <= end {
		return fmt.Sprintf("$(seq %d %d)", start, end)
	}
	return fmt.Sprintf("$(seq %d -1 %d)", start, end)
}
