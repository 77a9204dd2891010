package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmorph/shmorph/internal/syntax"
)

func TestTransformFunctions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "keyword form without parens",
			source:   "function greet {\n  echo hi\n}\n",
			expected: "greet() {\n  echo hi\n}\n",
		},
		{
			name:     "keyword form with parens",
			source:   "function greet() {\n  echo hi\n}\n",
			expected: "greet() {\n  echo hi\n}\n",
		},
		{
			name:     "posix form untouched",
			source:   "greet() {\n  echo hi\n}\n",
			expected: "greet() {\n  echo hi\n}\n",
		},
	}

	parser := syntax.NewParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TransformFunctions(parser, tt.source, NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
