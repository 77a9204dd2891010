package mutators

import "github.com/shmorph/shmorph/internal/syntax"

const FeatureLocalVariables = "local_variables"

// TransformLocalVariables registers the feature but performs no rewrite.
//
// POSIX sh does not specify `local`, yet dash, ash and busybox sh all accept
// it, so scripts using `local` still run under the interpreters we target.
// Passing it through keeps function-scoped variables actually scoped; any
// textual lowering would silently change semantics. Revisit if a target
// interpreter without `local` support ever matters.
func TransformLocalVariables(p *syntax.Parser, source string, ctx *Context) (string, error) {
	tree, err := p.Parse([]byte(source))
	if err != nil {
		return source, err
	}
	tree.Close()

	ctx.MarkFeature(FeatureLocalVariables)
	return source, nil
}
