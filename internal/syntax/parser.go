package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

// Parser parses shell source into a tree-sitter syntax tree.
//
// The bash grammar handle is built once at construction. Each Parse call uses
// a fresh sitter.Parser, so a Parser is safe for concurrent use and retains
// no state between calls. Malformed input still yields a tree; unparseable
// regions show up as ERROR nodes, which callers are expected to skip.
type Parser struct {
	lang *sitter.Language
}

func NewParser() *Parser {
	return &Parser{lang: bash.GetLanguage()}
}

// Tree owns a parsed syntax tree. Nodes are read-only views into the source
// the tree was parsed from; the tree is discarded after each mutator pass.
type Tree struct {
	tree *sitter.Tree
}

func (p *Parser) Parse(src []byte) (*Tree, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(p.lang)

	t, err := sp.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse shell source: %w", err)
	}
	return &Tree{tree: t}, nil
}

func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree. Nodes obtained from the tree must not
// be used afterwards.
func (t *Tree) Close() {
	t.tree.Close()
}

// Content returns the source text covered by n.
func Content(n *sitter.Node, src string) string {
	return src[n.StartByte():n.EndByte()]
}

// Field looks up a named child (e.g. "name", "value", "index").
func Field(n *sitter.Node, name string) *sitter.Node {
	return n.ChildByFieldName(name)
}

// Walk visits n and every descendant, parents before children.
func Walk(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}

// Ancestor returns the nearest ancestor of n (inclusive) with the given kind,
// or nil when none exists.
func Ancestor(n *sitter.Node, kind string) *sitter.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == kind {
			return cur
		}
	}
	return nil
}
