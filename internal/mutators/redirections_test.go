package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmorph/shmorph/internal/syntax"
)

func TestTransformRedirections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "combined redirect",
			source:   "cmd &> out.log\n",
			expected: "cmd >out.log 2>&1\n",
		},
		{
			name:     "combined append redirect",
			source:   "cmd &>> out.log\n",
			expected: "cmd >>out.log 2>&1\n",
		},
		{
			name:     "plain redirect untouched",
			source:   "cmd > out.log\n",
			expected: "cmd > out.log\n",
		},
		{
			name:     "explicit form untouched",
			source:   "cmd > out.log 2>&1\n",
			expected: "cmd > out.log 2>&1\n",
		},
	}

	parser := syntax.NewParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TransformRedirections(parser, tt.source, NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
