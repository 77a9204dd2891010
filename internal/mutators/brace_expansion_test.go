package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmorph/shmorph/internal/syntax"
)

func TestTransformBraceExpansion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "ascending range",
			source:   "for i in {1..5}; do echo $i; done\n",
			expected: "for i in $(seq 1 5); do echo $i; done\n",
		},
		{
			name:     "descending range",
			source:   "for i in {5..1}; do echo $i; done\n",
			expected: "for i in $(seq 5 -1 1); do echo $i; done\n",
		},
		{
			name:     "negative bounds",
			source:   "for i in {-2..2}; do echo $i; done\n",
			expected: "for i in $(seq -2 2); do echo $i; done\n",
		},
		{
			name:     "both bounds negative",
			source:   "for i in {-3..-1}; do echo $i; done\n",
			expected: "for i in $(seq -3 -1); do echo $i; done\n",
		},
		{
			name:     "alphabetic range left unmodified",
			source:   "for c in {a..c}; do echo $c; done\n",
			expected: "for c in {a..c}; do echo $c; done\n",
		},
		{
			name:     "comma list left unmodified",
			source:   "echo {x,y}\n",
			expected: "echo {x,y}\n",
		},
	}

	parser := syntax.NewParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TransformBraceExpansion(parser, tt.source, NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSeqForBraceRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "$(seq 1 5)", seqForBraceRange("{1..5}"))
	assert.Equal(t, "$(seq 5 -1 1)", seqForBraceRange("{5..1}"))
	assert.Equal(t, "$(seq -2 2)", seqForBraceRange("{-2..2}"))
	assert.Equal(t, "", seqForBraceRange("{a..c}"))
	assert.Equal(t, "", seqForBraceRange("{1..5..2}"))
}
