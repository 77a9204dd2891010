package mutators

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureConditionalExpressions = "conditional_expressions"

// TransformConditionalExpressions rewrites Bash `[[ ... ]]` tests into POSIX
// `[ ... ]` forms:
//
//   - `==` becomes `=`; `<` and `>` string comparisons are backslash-escaped
//   - regex matches `lhs =~ pattern` (and the negated `! lhs =~ pattern`)
//     become a grep -Eq pipeline wrapped in a subshell
//   - `-v var` becomes the portable set-test `-n "${var+x}"`
//   - `&&` / `||` and parenthesized groups decompose into chained
//     `[ ... ] && [ ... ]` / `[ ... ] || [ ... ]`
//   - bare variable references are double-quoted
func TransformConditionalExpressions(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() != syntax.KindTestCommand {
			return
		}
		text := strings.TrimSpace(content(n, source))
		if !strings.HasPrefix(text, "[[") || !strings.HasSuffix(text, "]]") {
			return
		}
		patches = append(patches, patch.Patch{
			Start: int(n.StartByte()),
			End:   int(n.EndByte()),
			Text:  testCommandToPosix(n, source),
		})
	})

	ctx.MarkFeature(FeatureConditionalExpressions)
	return patch.Apply(source, patches), nil
}

func testCommandToPosix(n *sitter.Node, source string) string {
	text := content(n, source)
	inner := strings.TrimSpace(text[2 : len(text)-2])

	// regex match takes priority over everything else
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == syntax.KindBinaryExpression && strings.Contains(content(child, source), "=~") {
			return regexMatchToGrep(child, source)
		}
	}

	if (strings.Contains(inner, "(") && strings.Contains(inner, ")")) ||
		strings.Contains(inner, " && ") || strings.Contains(inner, " || ") {
		return complexConditionToPosix(inner)
	}

	return "[ " + conditionPartsToPosix(inner) + " ]"
}

// regexMatchToGrep rewrites `lhs =~ pattern` as a grep pipeline subshell.
func regexMatchToGrep(n *sitter.Node, source string) string {
	negated := false
	var lhs string

	left := syntax.Field(n, syntax.FieldLeft)
	if left != nil && left.Type() == syntax.KindUnaryExpression {
		negated = true
		if left.ChildCount() > 1 {
			lhs = content(left.Child(1), source)
		}
	} else if left != nil {
		lhs = content(left, source)
	}

	pattern := ""
	if right := syntax.Field(n, syntax.FieldRight); right != nil {
		pattern = content(right, source)
	}

	grepCmd := fmt.Sprintf("echo %s | grep -Eq \"%s\"", ensureQuoted(lhs), pattern)
	if negated {
		return "(! " + grepCmd + ")"
	}
	return "(" + grepCmd + ")"
}

// complexConditionToPosix decomposes &&/|| chains and parenthesized groups
// into chained single-operator [ ] tests.
func complexConditionToPosix(expr string) string {
	if strings.Contains(expr, "(") && strings.Contains(expr, ")") {
		for _, op := range []string{"&&", "||"} {
			if !strings.Contains(expr, " "+op+" ") {
				continue
			}
			parts := splitOutsideParens(expr, op)
			converted := make([]string, 0, len(parts))
			for _, part := range parts {
				part = strings.TrimSpace(part)
				if strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")") {
					inner := complexConditionToPosix(strings.TrimSpace(part[1 : len(part)-1]))
					if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
						converted = append(converted, inner)
					} else {
						converted = append(converted, "( "+inner+" )")
					}
				} else {
					converted = append(converted, "[ "+conditionPartsToPosix(part)+" ]")
				}
			}
			return strings.Join(converted, " "+op+" ")
		}
	}

	for _, op := range []string{"&&", "||"} {
		sep := " " + op + " "
		if !strings.Contains(expr, sep) {
			continue
		}
		parts := strings.Split(expr, sep)
		converted := make([]string, 0, len(parts))
		for _, part := range parts {
			converted = append(converted, conditionPartsToPosix(strings.TrimSpace(part)))
		}
		return "[ " + strings.Join(converted, " ] "+op+" [ ") + " ]"
	}

	return "[ " + conditionPartsToPosix(expr) + " ]"
}

// splitOutsideParens splits expr on the delimiter, ignoring occurrences
// inside parentheses.
func splitOutsideParens(expr, delimiter string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(expr); i++ {
		switch {
		case expr[i] == '(':
			depth++
			current.WriteByte(expr[i])
		case expr[i] == ')':
			depth--
			current.WriteByte(expr[i])
		case depth == 0 && strings.HasPrefix(expr[i:], delimiter):
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
			i += len(delimiter) - 1
		default:
			current.WriteByte(expr[i])
		}
	}
	if current.Len() > 0 {
		result = append(result, strings.TrimSpace(current.String()))
	}
	return result
}

// conditionPartsToPosix converts one operator-free condition into its POSIX
// spelling.
func conditionPartsToPosix(expr string) string {
	expr = strings.TrimSpace(expr)

	// -v var: POSIX has no is-set primary; ${var+x} expands to x only when
	// var is set, including set-but-empty
	if rest, ok := strings.CutPrefix(expr, "-v "); ok {
		v := strings.TrimSpace(rest)
		v = strings.TrimPrefix(v, "$")
		return fmt.Sprintf("-n \"${%s+x}\"", v)
	}

	type binOp struct{ from, to string }
	for _, op := range []binOp{
		{" == ", " = "},
		{" != ", " != "},
		{" < ", " \\< "},
		{" > ", " \\> "},
	} {
		if left, right, found := strings.Cut(expr, op.from); found {
			return ensureQuoted(strings.TrimSpace(left)) + op.to + ensureQuoted(strings.TrimSpace(right))
		}
	}

	if rest, ok := strings.CutPrefix(expr, "-n "); ok {
		return "-n " + ensureQuoted(strings.TrimSpace(rest))
	}
	if rest, ok := strings.CutPrefix(expr, "! -z "); ok {
		return "-n " + ensureQuoted(strings.TrimSpace(rest))
	}

	return quoteVarRefs(expr)
}
