package diff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected string
	}{
		{
			name:     "identical",
			a:        "a\nb\n",
			b:        "a\nb\n",
			expected: "",
		},
		{
			name:     "replaced line",
			a:        "import { A } from './a'\nconst x = 1\n",
			b:        "import type { A } from './a'\nconst x = 1\n",
			expected: "-import { A } from './a'\n+import type { A } from './a'\n const x = 1\n",
		},
		{
			name:     "inserted lines",
			a:        "x\n",
			b:        "y\nz\nx\n",
			expected: "+y\n+z\n x\n",
		},
		{
			name:     "crlf",
			a:        "a\r\n",
			b:        "b\r\n",
			expected: "-a\n+b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, Lines([]byte(tt.a), []byte(tt.b)))
		})
	}
}
