package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		patches  []Patch
		expected string
	}{
		{
			name:     "no patches",
			source:   "echo hi",
			patches:  nil,
			expected: "echo hi",
		},
		{
			name:     "single replacement",
			source:   "a |& b",
			patches:  []Patch{{Start: 2, End: 4, Text: "2>&1 |"}},
			expected: "a 2>&1 | b",
		},
		{
			name:   "multiple disjoint patches applied high to low",
			source: "0123456789",
			patches: []Patch{
				{Start: 0, End: 2, Text: "AA"},
				{Start: 8, End: 10, Text: "BB"},
			},
			expected: "AA234567BB",
		},
		{
			name:   "input order of disjoint patches does not matter",
			source: "0123456789",
			patches: []Patch{
				{Start: 8, End: 10, Text: "BB"},
				{Start: 0, End: 2, Text: "AA"},
			},
			expected: "AA234567BB",
		},
		{
			name:   "nested patch is dropped",
			source: "0123456789ABCDEF",
			patches: []Patch{
				{Start: 0, End: 16, Text: "X"},
				{Start: 10, End: 15, Text: "Y"},
			},
			expected: "X",
		},
		{
			name:   "identical ranges keep the last patch",
			source: "abcdef",
			patches: []Patch{
				{Start: 0, End: 3, Text: "FIRST"},
				{Start: 0, End: 3, Text: "SECOND"},
			},
			expected: "SECONDdef",
		},
		{
			name:     "pure insertion at offset zero",
			source:   "body",
			patches:  []Patch{{Start: 0, End: 0, Text: "header\n"}},
			expected: "header\nbody",
		},
		{
			name:   "insertion and replacement together",
			source: "cmd arg",
			patches: []Patch{
				{Start: 0, End: 0, Text: "setup\n"},
				{Start: 4, End: 7, Text: "other"},
			},
			expected: "setup\ncmd other",
		},
		{
			name:   "insertion at the end of a replaced range survives",
			source: "diff a b",
			patches: []Patch{
				{Start: 0, End: 8, Text: `diff "$t1" "$t2"`},
				{Start: 8, End: 8, Text: "\nrm -f \"$t1\""},
			},
			expected: "diff \"$t1\" \"$t2\"\nrm -f \"$t1\"",
		},
		{
			name:   "insertion at the start of a replaced range lands before it",
			source: "pushd /tmp",
			patches: []Patch{
				{Start: 0, End: 10, Text: "dirstack_push /tmp"},
				{Start: 0, End: 0, Text: "lib\n"},
			},
			expected: "lib\ndirstack_push /tmp",
		},
		{
			name:   "insertion before a same-start replacement lands before it too",
			source: "pushd /tmp",
			patches: []Patch{
				{Start: 0, End: 0, Text: "lib\n"},
				{Start: 0, End: 10, Text: "dirstack_push /tmp"},
			},
			expected: "lib\ndirstack_push /tmp",
		},
		{
			name:   "growing replacement above keeps lower offsets valid",
			source: "xy",
			patches: []Patch{
				{Start: 0, End: 1, Text: "longer"},
				{Start: 1, End: 2, Text: "tail"},
			},
			expected: "longertail",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Apply(tt.source, tt.patches))
		})
	}
}

func TestFilterContained(t *testing.T) {
	t.Parallel()

	patches := []Patch{
		{Start: 0, End: 10, Text: "outer"},
		{Start: 2, End: 5, Text: "inner"},
		{Start: 10, End: 10, Text: "boundary insertion"},
		{Start: 20, End: 25, Text: "separate"},
	}
	kept := filterContained(patches)
	assert.Len(t, kept, 3)
	assert.Equal(t, "outer", kept[0].Text)
	assert.Equal(t, "boundary insertion", kept[1].Text)
	assert.Equal(t, "separate", kept[2].Text)
}
