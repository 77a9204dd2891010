package mutators

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shmorph/shmorph/internal/patch"
	"github.com/shmorph/shmorph/internal/syntax"
)

const FeatureDirectoryStack = "directory_stack"

var dirstackRefRe = regexp.MustCompile(`~([+-])(\d+)`)
var dirstackWordRe = regexp.MustCompile(`^~[+-]\d+$`)

// TransformDirectoryStack rewrites pushd/popd/dirs and ~+N / ~-N references
// against a small POSIX function library (dirstack_push, dirstack_pop,
// dirstack_get) that keeps a colon-separated DIRSTACK variable. The library
// is injected once at the top of the file when any rewrite fired.
func TransformDirectoryStack(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	defer tree.Close()

	var patches []patch.Patch
	needsLibrary := false

	syntax.Walk(tree.Root(), func(n *sitter.Node) {
		switch n.Type() {
		case syntax.KindCommand:
			nameNode := syntax.Field(n, syntax.FieldName)
			if nameNode != nil {
				name := content(nameNode, source)
				if name == "pushd" || name == "popd" || name == "dirs" {
					if text := dirstackCommand(n, nameNode, source); text != "" {
						patches = append(patches, patch.Patch{
							Start: int(n.StartByte()),
							End:   int(n.EndByte()),
							Text:  text,
						})
						needsLibrary = true
					}
					return
				}
			}
			// ~+N / ~-N used as a bare command argument
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if sameNode(child, nameNode) || child.Type() != syntax.KindWord {
					continue
				}
				if dirstackWordRe.MatchString(content(child, source)) {
					if text := dirstackReference(content(child, source)); text != "" {
						patches = append(patches, patch.Patch{
							Start: int(child.StartByte()),
							End:   int(child.EndByte()),
							Text:  text,
						})
						needsLibrary = true
					}
				}
			}

		case syntax.KindExpansion:
			text := content(n, source)
			if dirstackRefRe.MatchString(text) {
				if replacement := dirstackReference(text); replacement != "" {
					patches = append(patches, patch.Patch{
						Start: int(n.StartByte()),
						End:   int(n.EndByte()),
						Text:  replacement,
					})
					needsLibrary = true
				}
			}
		}
	})

	if needsLibrary && len(patches) > 0 {
		patches = append(patches, patch.Patch{Start: 0, End: 0, Text: dirstackLibrary})
	}

	ctx.MarkFeature(FeatureDirectoryStack)
	return patch.Apply(source, patches), nil
}

func dirstackCommand(cmd, nameNode *sitter.Node, source string) string {
	switch content(nameNode, source) {
	case "pushd":
		var args []string
		for i := 0; i < int(cmd.ChildCount()); i++ {
			child := cmd.Child(i)
			if sameNode(child, nameNode) || child.Type() == syntax.KindComment {
				continue
			}
			args = append(args, content(child, source))
		}
		if len(args) == 0 {
			return "dirstack_push ."
		}
		return "dirstack_push " + strings.Join(args, " ")
	case "popd":
		return "dirstack_pop"
	case "dirs":
		return `printf "%s\n" "$DIRSTACK" | tr ":" "\n"`
	}
	return ""
}

func dirstackReference(text string) string {
	m := dirstackRefRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] == "+" {
		return fmt.Sprintf("\"$(dirstack_get %s)\"", m[2])
	}
	return fmt.Sprintf("\"$(dirstack_get -%s)\"", m[2])
}

const dirstackLibrary = `
DIRSTACK="$PWD"

dirstack_push() {
  target_dir="$1"
  cd "$target_dir" || return 1
  DIRSTACK="$PWD:${DIRSTACK}"
}

dirstack_pop() {
  top_dir="${DIRSTACK%%:*}"
  remaining_stack="${DIRSTACK#*:}"
  if [ "$remaining_stack" = "$DIRSTACK" ]; then
    echo "Error: Directory stack empty." >&2
    return 1
  fi
  cd "$top_dir" || return 1
  DIRSTACK="$remaining_stack"
}

dirstack_get() {
  index=$1
  dirstack_file=$(mktemp "/tmp/dirstack.XXXXXX")

  echo "$DIRSTACK" | tr ':' '\n' > "$dirstack_file"
  if [ "$index" -lt 0 ]; then
    total=$(wc -l < "$dirstack_file")
    index=$((total + index))
  fi
  awk "NR == $index" "$dirstack_file"
  rm "$dirstack_file"
}

`

// sameNode compares by span: the tree-sitter bindings may hand out distinct
// wrapper values for the same underlying node.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
