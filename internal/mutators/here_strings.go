package mutators

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureHereString = "herestring"

// TransformHereStrings rewrites `cmd <<< "text"` into a printf pipe:
// `printf "%s\n" "text" | cmd`. Other redirects attached to the command are
// preserved after the command, and when the command is the head of a
// pipeline the remaining pipeline segments are re-appended.
func TransformHereStrings(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() != syntax.KindHerestringRedirect {
			return
		}
		patches = append(patches, herestringPatch(n, source)...)
	})

	ctx.MarkFeature(FeatureHereString)
	return patch.Apply(source, patches), nil
}

type herestringContext struct {
	node       *sitter.Node // span to replace
	cmdParts   []string
	redirects  []string
	inPipeline bool
}

func herestringPatch(redirect *sitter.Node, source string) []patch.Patch {
	var value string
	for i := 0; i < int(redirect.ChildCount()); i++ {
		child := redirect.Child(i)
		if child.Type() == syntax.KindString || child.Type() == syntax.KindRawString {
			value = content(child, source)
			break
		}
	}
	if value == "" {
		return nil
	}

	hctx := commandContext(redirect.Parent(), source)
	if hctx == nil {
		return nil
	}

	replacement := fmt.Sprintf(`printf "%%s\n" %s | %s`, value, strings.Join(hctx.cmdParts, " "))
	if len(hctx.redirects) > 0 {
		replacement += " " + strings.Join(hctx.redirects, " ")
	}

	if hctx.inPipeline && hctx.node.Type() == syntax.KindPipeline {
		// the herestring command heads a pipeline: keep the tail segments
		original := content(hctx.node, source)
		if _, tail, found := strings.Cut(original, "|"); found {
			replacement += " | " + strings.TrimSpace(tail)
		}
	}

	return []patch.Patch{{
		Start: int(hctx.node.StartByte()),
		End:   int(hctx.node.EndByte()),
		Text:  replacement,
	}}
}

// commandContext locates the statement that owns a herestring redirect and
// collects its command words and any unrelated redirects.
func commandContext(node *sitter.Node, source string) *herestringContext {
	if node == nil {
		return nil
	}

	switch node.Type() {
	case syntax.KindCommand:
		hctx := &herestringContext{node: node}
		if parent := node.Parent(); parent != nil && parent.Type() == syntax.KindPipeline {
			hctx.inPipeline = true
		}
		collectCommandParts(node, source, hctx)
		return hctx

	case syntax.KindRedirectedStatement:
		hctx := &herestringContext{node: node}
		if parent := node.Parent(); parent != nil && parent.Type() == syntax.KindPipeline {
			hctx.inPipeline = true
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() == syntax.KindCommand {
				collectCommandParts(child, source, hctx)
			} else if isOtherRedirect(child) {
				hctx.redirects = append(hctx.redirects, content(child, source))
			}
		}
		return hctx

	case syntax.KindPipeline:
		for i := 0; i < int(node.ChildCount()); i++ {
			cmd := node.Child(i)
			if cmd.Type() != syntax.KindCommand {
				continue
			}
			if firstChildOfKind(cmd, syntax.KindHerestringRedirect) == nil {
				continue
			}
			hctx := &herestringContext{node: node, inPipeline: true}
			collectCommandParts(cmd, source, hctx)
			return hctx
		}
	}

	return nil
}

func collectCommandParts(cmd *sitter.Node, source string, hctx *herestringContext) {
	for i := 0; i < int(cmd.ChildCount()); i++ {
		child := cmd.Child(i)
		switch {
		case child.Type() == syntax.KindCommandName ||
			child.Type() == syntax.KindWord ||
			child.Type() == syntax.KindString:
			hctx.cmdParts = append(hctx.cmdParts, content(child, source))
		case isOtherRedirect(child):
			hctx.redirects = append(hctx.redirects, content(child, source))
		}
	}
}

func isOtherRedirect(n *sitter.Node) bool {
	return strings.Contains(n.Type(), "redirect") && n.Type() != syntax.KindHerestringRedirect
}
