package mutators

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureArithmeticExpansion = "arithmetic_expansion"

// Unroll caps keep the generated text bounded.
const (
	maxExponentUnroll = 10
	maxShiftUnroll    = 20
)

var (
	arithCompoundRe = regexp.MustCompile(`^\(\(\s*(.*?)\s*\)\)`)
	arithExpandRe   = regexp.MustCompile(`^\$\(\(\s*(.*?)\s*\)\)`)

	postIncDecRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)(\+\+|--)$`)
	preIncDecRe  = regexp.MustCompile(`^(\+\+|--)([a-zA-Z_][a-zA-Z0-9_]*)$`)
	powerRe      = regexp.MustCompile(`(\d+|\$[a-zA-Z_][a-zA-Z0-9_]*)\s*\*\*\s*(\d+)`)
	shiftLeftRe  = regexp.MustCompile(`(\d+|\$[a-zA-Z_][a-zA-Z0-9_]*)\s*<<\s*(\d+)`)
	shiftRightRe = regexp.MustCompile(`(\d+|\$[a-zA-Z_][a-zA-Z0-9_]*)\s*>>\s*(\d+)`)
	hexRe        = regexp.MustCompile(`0x([0-9a-fA-F]+)`)
	compoundOpRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*(\+=|-=|\*=|/=|%=|<<=|>>=|&=|\^=|\|=)\s*(.*)`)
	assignRe     = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*(.*)`)
)

// TransformArithmeticExpansion lowers Bash-only arithmetic forms inside
// $(( ... )) and standalone (( ... )):
//
//   - i++ / --i become explicit i=$((i + 1)) style assignments
//   - a**n unrolls into repeated multiplication for small literal n
//   - << and >> unroll into repeated *2 / /2
//   - hex literals 0xNN become 16#NN
//   - compound assignments (x+=2, x<<=1, ...) expand to plain assignments
//   - (( cond )) in if/while headers becomes [ ... -ne 0 ], decomposed per
//     operand for && and ||
func TransformArithmeticExpansion(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		switch n.Type() {
		case syntax.KindArithmeticExpansion:
		// the grammar yields (( expr )) as a test_command in most positions
		// and as a compound_statement in a few; both are standalone forms
		case syntax.KindCompoundStatement, syntax.KindTestCommand:
			text := strings.TrimSpace(content(n, source))
			if !strings.HasPrefix(text, "((") || !strings.HasSuffix(text, "))") {
				return
			}
		default:
			return
		}

		if posix, ok := arithmeticToPosix(n, source); ok {
			patches = append(patches, patch.Patch{
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
				Text:  posix,
			})
		}
	})

	ctx.MarkFeature(FeatureArithmeticExpansion)
	return patch.Apply(source, patches), nil
}

func arithmeticToPosix(n *sitter.Node, source string) (string, bool) {
	text := content(n, source)
	standalone := n.Type() != syntax.KindArithmeticExpansion

	var m []string
	if standalone {
		m = arithCompoundRe.FindStringSubmatch(text)
	} else {
		m = arithExpandRe.FindStringSubmatch(text)
	}
	if m == nil {
		return "", false
	}
	expr := m[1]

	if out, ok := incDecToPosix(expr, standalone); ok {
		return out, true
	}
	if out, ok := powerToPosix(expr, standalone); ok {
		return out, true
	}
	if out, ok := shiftToPosix(expr, standalone); ok {
		return out, true
	}

	expr = hexRe.ReplaceAllString(expr, "16#$1")

	if out, ok := compoundAssignToPosix(expr, standalone); ok {
		return out, true
	}

	if standalone && inConditionContext(n) {
		return arithmeticConditionToPosix(expr), true
	}

	if standalone {
		if am := assignRe.FindStringSubmatch(expr); am != nil {
			return fmt.Sprintf("%s=$((%s))", am[1], expr), true
		}
		return fmt.Sprintf("$((%s))", expr), true
	}
	return fmt.Sprintf("$((%s))", expr), true
}

func incDecToPosix(expr string, standalone bool) (string, bool) {
	expr = strings.TrimSpace(expr)

	var name, op string
	if m := postIncDecRe.FindStringSubmatch(expr); m != nil {
		name, op = m[1], m[2]
	} else if m := preIncDecRe.FindStringSubmatch(expr); m != nil {
		op, name = m[1], m[2]
	} else {
		return "", false
	}

	sign := "+"
	if op == "--" {
		sign = "-"
	}
	if standalone {
		return fmt.Sprintf("%s=$((%s %s 1))", name, name, sign), true
	}
	return fmt.Sprintf("$((%s %s 1))", name, sign), true
}

func powerToPosix(expr string, standalone bool) (string, bool) {
	if !strings.Contains(expr, "**") {
		return "", false
	}
	m := powerRe.FindStringSubmatchIndex(expr)
	if m == nil {
		return "", false
	}
	base := expr[m[2]:m[3]]
	exp, err := strconv.Atoi(expr[m[4]:m[5]])
	if err != nil || exp > maxExponentUnroll {
		return "", false
	}

	replacement := base + strings.Repeat(" * "+base, exp-1)
	newExpr := expr[:m[0]] + replacement + expr[m[1]:]
	if standalone {
		return fmt.Sprintf("((%s))", newExpr), true
	}
	return fmt.Sprintf("$((%s))", newExpr), true
}

func shiftToPosix(expr string, standalone bool) (string, bool) {
	if !strings.Contains(expr, "<<") && !strings.Contains(expr, ">>") {
		return "", false
	}

	if m := shiftLeftRe.FindStringSubmatchIndex(expr); m != nil {
		base := expr[m[2]:m[3]]
		shift, err := strconv.Atoi(expr[m[4]:m[5]])
		if err == nil && shift <= maxShiftUnroll {
			replacement := base + strings.Repeat(" * 2", shift)
			newExpr := expr[:m[0]] + replacement + expr[m[1]:]
			if standalone {
				return fmt.Sprintf("((%s))", newExpr), true
			}
			return fmt.Sprintf("$((%s))", newExpr), true
		}
	}

	if m := shiftRightRe.FindStringSubmatchIndex(expr); m != nil {
		base := expr[m[2]:m[3]]
		shift, err := strconv.Atoi(expr[m[4]:m[5]])
		if err == nil && shift <= maxShiftUnroll {
			replacement := "(" + base + strings.Repeat(" / 2", shift) + ")"
			newExpr := expr[:m[0]] + replacement + expr[m[1]:]
			if standalone {
				return fmt.Sprintf("((%s))", newExpr), true
			}
			return fmt.Sprintf("$((%s))", newExpr), true
		}
	}

	return "", false
}

func compoundAssignToPosix(expr string, standalone bool) (string, bool) {
	m := compoundOpRe.FindStringSubmatch(expr)
	if m == nil {
		return "", false
	}
	name, op, value := m[1], m[2], strings.TrimSpace(m[3])

	switch op {
	case "<<=":
		shift, err := strconv.Atoi(value)
		if err != nil || shift > maxShiftUnroll {
			return "", false
		}
		body := fmt.Sprintf("%s = %s%s", name, name, strings.Repeat(" * 2", shift))
		if standalone {
			return fmt.Sprintf("%s=$((%s))", name, body), true
		}
		return fmt.Sprintf("$((%s))", body), true
	case ">>=":
		shift, err := strconv.Atoi(value)
		if err != nil || shift > maxShiftUnroll {
			return "", false
		}
		body := fmt.Sprintf("%s = (%s%s)", name, name, strings.Repeat(" / 2", shift))
		if standalone {
			return fmt.Sprintf("%s=$((%s))", name, body), true
		}
		return fmt.Sprintf("$((%s))", body), true
	default:
		body := fmt.Sprintf("%s = %s %c (%s)", name, name, op[0], value)
		if standalone {
			return fmt.Sprintf("%s=$((%s))", name, body), true
		}
		return fmt.Sprintf("$((%s))", body), true
	}
}

// inConditionContext reports whether n sits in the condition of an enclosing
// if or while statement.
func inConditionContext(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() != syntax.KindIfStatement && cur.Type() != syntax.KindWhileStatement {
			continue
		}
		cond := syntax.Field(cur, syntax.FieldCondition)
		if cond != nil && cond.StartByte() <= n.StartByte() && n.EndByte() <= cond.EndByte() {
			return true
		}
	}
	return false
}

// arithmeticConditionToPosix turns (( cond )) in an if/while header into
// chained [ ... -ne 0 ] tests.
func arithmeticConditionToPosix(expr string) string {
	for _, op := range []string{"&&", "||"} {
		if !strings.Contains(expr, op) {
			continue
		}
		parts := strings.Split(expr, op)
		posix := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if isIdentifier(part) {
				posix = append(posix, fmt.Sprintf(`[ "$%s" -ne 0 ]`, part))
			} else {
				posix = append(posix, fmt.Sprintf(`[ "$((%s))" -ne 0 ]`, part))
			}
		}
		return strings.Join(posix, " "+op+" ")
	}

	if isIdentifier(strings.TrimSpace(expr)) {
		return fmt.Sprintf(`[ "$%s" -ne 0 ]`, strings.TrimSpace(expr))
	}
	return fmt.Sprintf(`[ "$((%s))" -ne 0 ]`, expr)
}
