package mutators

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/syntax"
)

func tmpVarName(n int) string {
	return fmt.Sprintf("tmp%d", n)
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// firstChildOfKind returns the first direct child of n with the given kind.
func firstChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == kind {
			return child
		}
	}
	return nil
}

// ensureQuoted wraps a value in double quotes when it is a bare variable
// reference or contains whitespace. Already-quoted text and glob patterns
// pass through unchanged.
func ensureQuoted(expr string) string {
	expr = strings.TrimSpace(expr)
	if (strings.HasPrefix(expr, `"`) && strings.HasSuffix(expr, `"`)) ||
		(strings.HasPrefix(expr, `'`) && strings.HasSuffix(expr, `'`)) {
		return expr
	}
	if strings.HasPrefix(expr, "$") {
		return `"` + expr + `"`
	}
	if expr == "" {
		return `""`
	}
	if strings.ContainsAny(expr, "*?") {
		return expr
	}
	if strings.Contains(expr, " ") {
		return `"` + expr + `"`
	}
	return expr
}

var varRefRe = regexp.MustCompile(`\$\w+|\$\{[^}]+\}`)

// quoteVarRefs double-quotes every $var / ${var} reference in expr.
func quoteVarRefs(expr string) string {
	return varRefRe.ReplaceAllStringFunc(expr, func(v string) string {
		return `"` + v + `"`
	})
}

// innerSpan returns the text between the first and last child of n, i.e. the
// payload of bracketed constructs like <( cmd ) or >( cmd ).
func innerSpan(n *sitter.Node, source string) string {
	count := int(n.ChildCount())
	if count < 2 {
		return ""
	}
	start := n.Child(0).EndByte()
	end := n.Child(count - 1).StartByte()
	if start >= end {
		return ""
	}
	return strings.TrimSpace(source[start:end])
}

func content(n *sitter.Node, source string) string {
	return syntax.Content(n, source)
}
