package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmorph/shmorph/internal/syntax"
)

func TestTransformDirectoryStack(t *testing.T) {
	t.Parallel()
	parser := syntax.NewParser()

	got, err := TransformDirectoryStack(parser, "pushd /tmp\necho $PWD\npopd\n", NewContext())
	require.NoError(t, err)

	assert.Contains(t, got, "dirstack_push /tmp")
	assert.Contains(t, got, "dirstack_pop")
	assert.NotContains(t, got, "pushd")
	assert.NotContains(t, got, "popd")

	// the function library is injected once at the top
	assert.Contains(t, got, `DIRSTACK="$PWD"`)
	assert.Contains(t, got, "dirstack_push() {")
	assert.Contains(t, got, "dirstack_pop() {")
	assert.Contains(t, got, "dirstack_get() {")
}

func TestTransformDirectoryStackDirs(t *testing.T) {
	t.Parallel()
	parser := syntax.NewParser()

	got, err := TransformDirectoryStack(parser, "pushd /var\ndirs\n", NewContext())
	require.NoError(t, err)
	assert.Contains(t, got, `printf "%s\n" "$DIRSTACK" | tr ":" "\n"`)
}

func TestTransformDirectoryStackNoUsage(t *testing.T) {
	t.Parallel()
	parser := syntax.NewParser()

	source := "echo hello\ncd /tmp\n"
	got, err := TransformDirectoryStack(parser, source, NewContext())
	require.NoError(t, err)

	// no stack builtins used, so no library and no rewrite
	assert.Equal(t, source, got)
}

func TestDirstackReference(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"$(dirstack_get 2)"`, dirstackReference("~+2"))
	assert.Equal(t, `"$(dirstack_get -1)"`, dirstackReference("~-1"))
	assert.Equal(t, "", dirstackReference("~user"))
}
