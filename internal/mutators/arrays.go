package mutators

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

// FeatureArray marks indexed-array rewrites in the context feature set.
const FeatureArray = "array"

// TransformArrays lowers Bash indexed arrays to flat scalar variables.
//
// A declaration arr=(a b c) becomes arr_0=a; arr_1=b; arr_2=c; arr__len=3.
// Literal-index reads ${arr[1]} become $arr_1, full expansions ${arr[@]} and
// ${arr[*]} become the element list, ${#arr[@]} becomes $arr__len, and
// element assignment / append keep the synthetic length variable current.
//
// Computed (non-literal) indices are deliberately left untouched: without
// evaluating the index expression there is no scalar variable to name, so
// those reads pass through unchanged.
func TransformArrays(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()
	root := tree.Root()

	identifyArrays(root, source, ctx)

	var patches []patch.Patch
	syntax.Walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case syntax.KindArray:
			parent := n.Parent()
			if parent != nil && parent.Type() == syntax.KindVariableAssignment &&
				parent.ChildCount() > 1 && parent.Child(1).Type() == "=" {
				patches = append(patches, arrayDeclaration(parent, source, ctx)...)
			}
		case syntax.KindSubscript:
			if parent := n.Parent(); parent != nil && parent.Type() == syntax.KindExpansion {
				patches = append(patches, arraySubscriptRead(parent, source)...)
			}
		case syntax.KindExpansion:
			text := content(n, source)
			if strings.ContainsAny(text, "@*") {
				patches = append(patches, arrayExpansion(n, source, ctx)...)
			}
		case syntax.KindVariableAssignment:
			name := syntax.Field(n, syntax.FieldName)
			if name != nil && name.Type() == syntax.KindSubscript {
				patches = append(patches, arrayElementAssignment(n, source, ctx)...)
				break
			}
			text := content(n, source)
			if strings.Contains(text, "+=") && strings.Contains(text, "(") && strings.Contains(text, ")") {
				patches = append(patches, arrayAppend(n, source, ctx)...)
			}
		}
	})

	ctx.MarkFeature(FeatureArray)
	return patch.Apply(source, patches), nil
}

// identifyArrays records every array name visible in this pass so that later
// expansion lookups know the variable is an array at all.
func identifyArrays(root *sitter.Node, source string, ctx *Context) {
	syntax.Walk(root, func(n *sitter.Node) {
		if n.Type() != syntax.KindVariableAssignment {
			return
		}
		if firstChildOfKind(n, syntax.KindArray) != nil {
			if name := syntax.Field(n, syntax.FieldName); name != nil {
				ctx.Arrays[content(name, source)] = &ArrayInfo{Declared: true}
			}
		}
		// subscript-assignment form arr[0]=v also introduces an array
		if name := syntax.Field(n, syntax.FieldName); name != nil && name.Type() == syntax.KindSubscript {
			if arrName := syntax.Field(name, syntax.FieldName); arrName != nil {
				text := content(arrName, source)
				if _, ok := ctx.KnownArray(text); !ok {
					ctx.Arrays[text] = &ArrayInfo{Declared: true}
				}
			}
		}
	})
}

// arrayDeclaration flattens arr=(a b c) into scalars plus arr__len.
func arrayDeclaration(assign *sitter.Node, source string, ctx *Context) []patch.Patch {
	name := syntax.Field(assign, syntax.FieldName)
	if name == nil {
		return nil
	}
	arrName := content(name, source)

	arrNode := firstChildOfKind(assign, syntax.KindArray)
	if arrNode == nil {
		return nil
	}

	var elements []string
	for i := 0; i < int(arrNode.ChildCount()); i++ {
		child := arrNode.Child(i)
		if child.Type() == "(" || child.Type() == ")" {
			continue
		}
		elements = append(elements, content(child, source))
	}

	parts := make([]string, 0, len(elements)+1)
	for i, el := range elements {
		parts = append(parts, fmt.Sprintf("%s_%d=%s;", arrName, i, el))
	}
	parts = append(parts, fmt.Sprintf("%s__len=%d", arrName, len(elements)))

	ctx.Arrays[arrName] = &ArrayInfo{
		Declared: true,
		Length:   len(elements),
		Elements: elements,
	}

	return []patch.Patch{{
		Start: int(assign.StartByte()),
		End:   int(assign.EndByte()),
		Text:  strings.Join(parts, " "),
	}}
}

// arraySubscriptRead rewrites ${arr[1]} to $arr_1 for literal numeric indices.
func arraySubscriptRead(expansion *sitter.Node, source string) []patch.Patch {
	sub := firstChildOfKind(expansion, syntax.KindSubscript)
	if sub == nil {
		return nil
	}
	name := syntax.Field(sub, syntax.FieldName)
	index := syntax.Field(sub, syntax.FieldIndex)
	if name == nil || index == nil {
		return nil
	}
	if index.Type() != syntax.KindNumber {
		return nil // computed index, pass through
	}
	return []patch.Patch{{
		Start: int(expansion.StartByte()),
		End:   int(expansion.EndByte()),
		Text:  fmt.Sprintf("$%s_%s", content(name, source), content(index, source)),
	}}
}

// arrayExpansion rewrites ${arr[@]}, ${arr[*]} and ${#arr[@]}.
func arrayExpansion(expansion *sitter.Node, source string, ctx *Context) []patch.Patch {
	lengthOp := false
	var sub *sitter.Node
	for i := 0; i < int(expansion.ChildCount()); i++ {
		child := expansion.Child(i)
		switch child.Type() {
		case "#":
			lengthOp = true
		case syntax.KindSubscript:
			sub = child
		}
	}
	if sub == nil {
		return nil
	}
	name := syntax.Field(sub, syntax.FieldName)
	index := syntax.Field(sub, syntax.FieldIndex)
	if name == nil || index == nil {
		return nil
	}
	arrName := content(name, source)
	indexText := content(index, source)

	span := patch.Patch{Start: int(expansion.StartByte()), End: int(expansion.EndByte())}

	info, known := ctx.KnownArray(arrName)
	if !known {
		// length query on a never-observed array collapses to a literal zero
		if lengthOp && indexText == "@" {
			span.Text = `"0"`
			return []patch.Patch{span}
		}
		return nil
	}

	if lengthOp && indexText == "@" {
		span.Text = fmt.Sprintf("$%s__len", arrName)
		return []patch.Patch{span}
	}

	if indexText == "@" || indexText == "*" {
		if info.Length == 0 {
			return nil
		}
		elements := make([]string, 0, info.Length)
		for i := 0; i < info.Length; i++ {
			if forLoopInPosition(expansion) {
				// word splitting must still happen in `for x in ...`
				elements = append(elements, fmt.Sprintf("$%s_%d", arrName, i))
			} else {
				elements = append(elements, fmt.Sprintf("\"$%s_%d\"", arrName, i))
			}
		}
		span.Text = strings.Join(elements, " ")
		return []patch.Patch{span}
	}

	return nil
}

// forLoopInPosition reports whether the expansion sits immediately after the
// `in` keyword of a for-loop head. The check is positional: only the previous
// sibling is consulted.
func forLoopInPosition(n *sitter.Node) bool {
	prev := n.PrevSibling()
	return prev != nil && prev.Type() == "in"
}

// arrayElementAssignment rewrites arr[2]=v for literal indices, updating the
// synthetic length variable when the index grows the array.
func arrayElementAssignment(assign *sitter.Node, source string, ctx *Context) []patch.Patch {
	sub := syntax.Field(assign, syntax.FieldName)
	if sub == nil || sub.Type() != syntax.KindSubscript {
		return nil
	}
	name := syntax.Field(sub, syntax.FieldName)
	index := syntax.Field(sub, syntax.FieldIndex)
	value := syntax.Field(assign, syntax.FieldValue)
	if name == nil || index == nil || value == nil {
		return nil
	}
	if index.Type() != syntax.KindNumber {
		return nil // computed index, pass through
	}

	arrName := content(name, source)
	indexText := content(index, source)
	info := ctx.Array(arrName)

	idx := 0
	fmt.Sscanf(indexText, "%d", &idx)

	text := fmt.Sprintf("%s_%d=%s", arrName, idx, content(value, source))
	if idx >= info.Length {
		text += fmt.Sprintf("; %s__len=$((%d + 1))", arrName, idx)
		info.Length = idx + 1
	}

	return []patch.Patch{{
		Start: int(assign.StartByte()),
		End:   int(assign.EndByte()),
		Text:  text,
	}}
}

// arrayAppend rewrites arr+=(x y) into per-element assignments plus a length
// bump.
func arrayAppend(assign *sitter.Node, source string, ctx *Context) []patch.Patch {
	name := syntax.Field(assign, syntax.FieldName)
	value := syntax.Field(assign, syntax.FieldValue)
	if name == nil || value == nil || value.Type() != syntax.KindArray {
		return nil
	}

	arrName := content(name, source)
	info := ctx.Array(arrName)

	var elements []string
	for i := 0; i < int(value.ChildCount()); i++ {
		child := value.Child(i)
		if child.Type() == "(" || child.Type() == ")" {
			continue
		}
		elements = append(elements, content(child, source))
	}
	if len(elements) == 0 {
		return nil
	}

	parts := make([]string, 0, len(elements)+1)
	for i, el := range elements {
		parts = append(parts, fmt.Sprintf("%s_%d=%s", arrName, info.Length+i, el))
	}
	parts = append(parts, fmt.Sprintf("%s__len=$((%d + %d))", arrName, info.Length, len(elements)))
	info.Length += len(elements)

	return []patch.Patch{{
		Start: int(assign.StartByte()),
		End:   int(assign.EndByte()),
		Text:  strings.Join(parts, "; "),
	}}
}
