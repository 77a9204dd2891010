package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmorph/shmorph/internal/syntax"
)

func TestTransformVariableAssignment(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "integer declare drops the declaration",
			source:   "declare -i count=5\n",
			expected: "count=5\n",
		},
		{
			name:     "append to integer variable is arithmetic",
			source:   "declare -i count=0\ncount+=3\n",
			expected: "count=0\ncount=$((count + 3))\n",
		},
		{
			name:     "append string literal keeps its quotes",
			source:   "msg=\"hello\"\nmsg+=\" world\"\n",
			expected: "msg=\"hello\"\nmsg=${msg}\" world\"\n",
		},
		{
			name:     "append number without declare is concatenation",
			source:   "v=a\nv+=1\n",
			expected: "v=a\nv=${v}1\n",
		},
		{
			name:     "plain assignment untouched",
			source:   "x=1\n",
			expected: "x=1\n",
		},
	}

	parser := syntax.NewParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TransformVariableAssignment(parser, tt.source, NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTransformVariableAssignmentExpansionValue(t *testing.T) {
	t.Parallel()
	parser := syntax.NewParser()

	// expansions on the right side get wrapped to survive word splitting
	got, err := TransformVariableAssignment(parser, "path+=$extra\n", NewContext())
	require.NoError(t, err)
	assert.Equal(t, "path=${path}\"$extra\"\n", got)
}
