package mutators

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureRedirections = "redirections"

// TransformRedirections rewrites the Bash shorthand redirects that duplicate
// stderr onto stdout: `&>file` becomes `>file 2>&1` and `&>>file` becomes
// `>>file 2>&1`.
func TransformRedirections(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() != syntax.KindRedirectedStatement {
			return
		}
		redirect := findFileRedirect(n)
		if redirect == nil {
			return
		}
		patches = append(patches, ampersandRedirect(redirect, source)...)
	})

	ctx.MarkFeature(FeatureRedirections)
	return patch.Apply(source, patches), nil
}

func findFileRedirect(stmt *sitter.Node) *sitter.Node {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		if child.Type() == syntax.KindFileRedirect {
			return child
		}
		if found := firstChildOfKind(child, syntax.KindFileRedirect); found != nil {
			return found
		}
	}
	return nil
}

func ampersandRedirect(redirect *sitter.Node, source string) []patch.Patch {
	var operator, destination *sitter.Node
	for i := 0; i < int(redirect.ChildCount()); i++ {
		child := redirect.Child(i)
		text := content(child, source)
		if operator == nil && (text == "&>" || text == "&>>") {
			operator = child
		}
		if child.Type() == "destination" || child.Type() == syntax.KindWord {
			destination = child
		}
	}
	if operator == nil || destination == nil {
		return nil
	}

	file := content(destination, source)
	var text string
	switch content(operator, source) {
	case "&>":
		text = fmt.Sprintf(">%s 2>&1", file)
	case "&>>":
		text = fmt.Sprintf(">>%s 2>&1", file)
	default:
		return nil
	}

	return []patch.Patch{{
		Start: int(operator.StartByte()),
		End:   int(destination.EndByte()),
		Text:  text,
	}}
}
