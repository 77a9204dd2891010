package mutators

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureProcessSubstitution = "process_substitution"

// TransformProcessSubstitution lowers process substitution to temp files.
//
// Two independent passes over the text, each with its own parse:
//
//  1. output substitution `cmd > >(consumer)` becomes
//     tmp=$(mktemp); cmd > "$tmp"; ( consumer; ) < "$tmp"; rm -f "$tmp"
//  2. input substitution `cmd <(producer)` runs the producer into a temp
//     file before the consuming statement, replaces the substitution text
//     with the temp-file path, and appends cleanup after the statement.
//
// For pass 2 the prefix/cleanup lines attach to the smallest enclosing
// pipeline or redirected statement when the substitution sits inside one,
// not to the innermost command, so producers run before the whole pipeline.
func TransformProcessSubstitution(p *syntax.Parser, source string, ctx *Context) (string, error) {
	out, err := transformOutputSubstitutions(p, source, ctx)
	if err != nil {
		return source, err
	}
	final, err := transformInputSubstitutions(p, out, ctx)
	if err != nil {
		return out, err
	}
	ctx.MarkFeature(FeatureProcessSubstitution)
	return final, nil
}

func transformOutputSubstitutions(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	syntax.Walk(tree.Root(), func(stmt *sitter.Node) {
		if stmt.Type() != syntax.KindRedirectedStatement {
			return
		}

		var ps *sitter.Node
		for i := 0; i < int(stmt.ChildCount()); i++ {
			child := stmt.Child(i)
			if child.Type() != syntax.KindFileRedirect {
				continue
			}
			if found := firstChildOfKind(child, syntax.KindProcessSubstitution); found != nil {
				ps = found
				break
			}
		}
		if ps == nil || ps.ChildCount() == 0 || ps.Child(0).Type() != ">(" {
			return
		}

		psCommand := innerSpan(ps, source)
		if psCommand == "" {
			return
		}

		body := firstChildOfKind(stmt, syntax.KindCommand)
		if body == nil {
			body = firstChildOfKind(stmt, syntax.KindPipeline)
		}
		if body == nil {
			return
		}
		bodyText := content(body, source)

		tmpVar := ctx.NextTmpVar()
		replacement := fmt.Sprintf(
			"%[1]s=$(mktemp)\n%[2]s > \"$%[1]s\"\n( %[3]s; ) < \"$%[1]s\"\nrm -f \"$%[1]s\"\n",
			tmpVar, bodyText, psCommand,
		)

		patches = append(patches, patch.Patch{
			Start: int(stmt.StartByte()),
			End:   int(stmt.EndByte()),
			Text:  replacement,
		})
	})

	return patch.Apply(source, patches), nil
}

// psGroup collects the input substitutions that share one enclosing
// statement, in source order.
type psGroup struct {
	node   *sitter.Node
	substs []*sitter.Node
}

func transformInputSubstitutions(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var substs []*sitter.Node
	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		if n.Type() == syntax.KindProcessSubstitution && n.ChildCount() > 0 && n.Child(0).Type() == "<(" {
			substs = append(substs, n)
		}
	})
	if len(substs) == 0 {
		return source, nil
	}

	// Group each substitution under its enclosing pipeline or redirected
	// statement when present, otherwise under its command. Encounter order
	// keeps the rewrite deterministic.
	var groups []*psGroup
	index := make(map[uint32]*psGroup)

	groupFor := func(anchor *sitter.Node) *psGroup {
		key := anchor.StartByte()
		if g, ok := index[key]; ok {
			return g
		}
		g := &psGroup{node: anchor}
		index[key] = g
		groups = append(groups, g)
		return g
	}

	for _, ps := range substs {
		cmd := syntax.Ancestor(ps, syntax.KindCommand)
		if cmd == nil {
			continue
		}
		// prefer the outermost enclosing pipeline / redirected statement
		anchor := cmd
		for _, candidate := range []*sitter.Node{
			syntax.Ancestor(ps, syntax.KindPipeline),
			syntax.Ancestor(ps, syntax.KindRedirectedStatement),
		} {
			if candidate == nil {
				continue
			}
			if candidate.StartByte() <= anchor.StartByte() && candidate.EndByte() >= anchor.EndByte() {
				anchor = candidate
			}
		}
		g := groupFor(anchor)
		g.substs = append(g.substs, ps)
	}

	var patches []patch.Patch
	for _, g := range groups {
		prefix := ""
		suffix := "\n"
		fired := false

		for _, ps := range g.substs {
			producer := innerSpan(ps, source)
			if producer == "" {
				continue
			}
			tmpVar := ctx.NextTmpVar()
			prefix += fmt.Sprintf("%s=$(mktemp)\n{ %s; } > \"$%s\"\n", tmpVar, producer, tmpVar)
			suffix += fmt.Sprintf("rm -f \"$%s\"\n", tmpVar)
			patches = append(patches, patch.Patch{
				Start: int(ps.StartByte()),
				End:   int(ps.EndByte()),
				Text:  fmt.Sprintf("\"$%s\"", tmpVar),
			})
			fired = true
		}
		if !fired {
			continue
		}

		patches = append(patches,
			patch.Patch{Start: int(g.node.StartByte()), End: int(g.node.StartByte()), Text: prefix},
			patch.Patch{Start: int(g.node.EndByte()), End: int(g.node.EndByte()), Text: suffix},
		)
	}

	return patch.Apply(source, patches), nil
}
