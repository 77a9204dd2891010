package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextTmpVars(t *testing.T) {
	t.Parallel()
	ctx := NewContext()
	assert.Equal(t, "tmp1", ctx.NextTmpVar())
	assert.Equal(t, "tmp2", ctx.NextTmpVar())
	assert.Equal(t, "tmp3", ctx.NextTmpVar())
}

func TestContextArrays(t *testing.T) {
	t.Parallel()
	ctx := NewContext()

	_, known := ctx.KnownArray("arr")
	assert.False(t, known)

	info := ctx.Array("arr")
	require.NotNil(t, info)
	assert.True(t, info.Declared)
	assert.Equal(t, 0, info.Length)

	// Array returns the same entry on subsequent calls
	info.Length = 3
	again, known := ctx.KnownArray("arr")
	require.True(t, known)
	assert.Equal(t, 3, again.Length)
}

func TestContextFeatures(t *testing.T) {
	t.Parallel()
	ctx := NewContext()
	ctx.MarkFeature("array")
	ctx.MarkFeature("pipeline")
	assert.True(t, ctx.Features["array"])
	assert.True(t, ctx.Features["pipeline"])
	assert.False(t, ctx.Features["herestring"])
}

func TestResultMerge(t *testing.T) {
	t.Parallel()

	base := Result{Text: "a", Transformed: false}
	changed := Result{Text: "b", Transformed: true, Metadata: map[string]any{"fired": []string{"x"}}}

	merged := base.Merge(changed)
	assert.Equal(t, "b", merged.Text)
	assert.True(t, merged.Transformed)

	// both transformed: other text wins, list metadata concatenates
	more := Result{Text: "c", Transformed: true, Metadata: map[string]any{"fired": []string{"y"}, "count": 2}}
	merged = merged.Merge(more)
	assert.Equal(t, "c", merged.Text)
	assert.Equal(t, []string{"x", "y"}, merged.Metadata["fired"])
	assert.Equal(t, 2, merged.Metadata["count"])

	// untransformed other yields
	merged = merged.Merge(Result{Text: "d", Transformed: false})
	assert.Equal(t, "c", merged.Text)
}

func TestEnsureQuoted(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected string
	}{
		{`$a`, `"$a"`},
		{`"$a"`, `"$a"`},
		{`'lit'`, `'lit'`},
		{`foo`, `foo`},
		{`two words`, `"two words"`},
		{`*.txt`, `*.txt`},
		{``, `""`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ensureQuoted(tt.in), tt.in)
	}
}

func TestQuoteVarRefs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"$a" = "$b"`, quoteVarRefs(`$a = $b`))
	assert.Equal(t, `"${a[0]}"`, quoteVarRefs(`${a[0]}`))
	assert.Equal(t, `plain`, quoteVarRefs(`plain`))
}
