package promptaudit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstHeading(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "atx heading",
			source: "# Draft Prompt\n\nBody text.\n",
			want:   "Draft Prompt",
		},
		{
			name:   "heading after paragraph",
			source: "Preamble paragraph.\n\n## Review Checklist\n",
			want:   "Review Checklist",
		},
		{
			name:   "setext heading",
			source: "Consolidate\n===========\n\nBody.\n",
			want:   "Consolidate",
		},
		{
			name:   "first of several",
			source: "# One\n\n# Two\n",
			want:   "One",
		},
		{
			name:   "no heading",
			source: "Just a paragraph.\n",
			want:   "",
		},
		{
			name:   "empty document",
			source: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstHeading([]byte(tt.source)))
		})
	}
}
