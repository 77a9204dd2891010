package mutators

import (
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureVariableAssignment = "variable_assignment_append"

var declareIntRe = regexp.MustCompile(`declare\s+-i\s+([a-zA-Z_][a-zA-Z0-9_]*)`)

// TransformVariableAssignment rewrites `+=` assignments and `declare -i`
// declarations. Appends to integer-declared variables become arithmetic
// ($((var + value))); appends to everything else become string concatenation
// (var=${var}value). `declare -i var=value` drops the declaration and keeps
// the plain assignment.
func TransformVariableAssignment(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	integerVars := make(map[string]bool)
	for _, m := range declareIntRe.FindAllStringSubmatch(source, -1) {
		integerVars[m[1]] = true
	}

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		switch n.Type() {
		case syntax.KindVariableAssignment:
			if !hasAppendOperator(n) {
				return
			}
			patches = append(patches, patch.Patch{
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
				Text:  appendToPosix(n, source, integerVars),
			})
		case syntax.KindDeclarationCommand:
			if !isIntegerDeclare(n, source) {
				return
			}
			if text := declareToAssignment(n, source); text != "" {
				patches = append(patches, patch.Patch{
					Start: int(n.StartByte()),
					End:   int(n.EndByte()),
					Text:  text,
				})
			}
		}
	})

	ctx.MarkFeature(FeatureVariableAssignment)
	return patch.Apply(source, patches), nil
}

func hasAppendOperator(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "+=" {
			return true
		}
	}
	return false
}

func isIntegerDeclare(n *sitter.Node, source string) bool {
	if n.ChildCount() < 3 || n.Child(0).Type() != "declare" {
		return false
	}
	for i := 1; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == syntax.KindWord && content(child, source) == "-i" {
			return true
		}
	}
	return false
}

// declareToAssignment strips the declare -i wrapper, keeping `var=value`.
func declareToAssignment(n *sitter.Node, source string) string {
	assignment := firstChildOfKind(n, syntax.KindVariableAssignment)
	if assignment == nil {
		return ""
	}

	var name, value string
	for i := 0; i < int(assignment.ChildCount()); i++ {
		child := assignment.Child(i)
		switch child.Type() {
		case syntax.KindVariableName:
			name = content(child, source)
		case "=":
		default:
			value = content(child, source)
		}
	}
	if name == "" {
		return ""
	}
	return name + "=" + value
}

func appendToPosix(n *sitter.Node, source string, integerVars map[string]bool) string {
	var name string
	if nameNode := firstChildOfKind(n, syntax.KindVariableName); nameNode != nil {
		name = content(nameNode, source)
	}

	var value, valueKind string
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() != "+=" {
			continue
		}
		if i+1 < int(n.ChildCount()) {
			valueNode := n.Child(i + 1)
			value = content(valueNode, source)
			valueKind = valueNode.Type()
		}
		break
	}

	if integerVars[name] {
		return fmt.Sprintf("%s=$((%s + %s))", name, name, value)
	}

	// literals carry their own quoting; anything else (expansions,
	// concatenations) gets wrapped to survive word splitting
	switch valueKind {
	case syntax.KindString, syntax.KindRawString, syntax.KindNumber, syntax.KindWord:
		return fmt.Sprintf("%s=${%s}%s", name, name, value)
	default:
		return fmt.Sprintf("%s=${%s}\"%s\"", name, name, value)
	}
}
