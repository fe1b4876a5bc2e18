package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		candidate string
		want      string
	}{
		{
			name:      "free candidate returned unchanged",
			existing:  []string{"other"},
			candidate: "a note",
			want:      "a note",
		},
		{
			name:      "taken candidate gets #1",
			existing:  []string{"a note"},
			candidate: "a note",
			want:      "a note #1",
		},
		{
			name:      "smallest free index wins",
			existing:  []string{"a note", "a note #1", "a note #3"},
			candidate: "a note",
			want:      "a note #2",
		},
		{
			name:      "gap at 1 is filled first",
			existing:  []string{"a note", "a note #2"},
			candidate: "a note",
			want:      "a note #1",
		},
		{
			name:      "unrelated siblings are ignored",
			existing:  []string{"a note-ish", "b note", "a note #x"},
			candidate: "a note",
			want:      "a note",
		},
		{
			name:      "regexp metacharacters in candidate",
			existing:  []string{"report (v2)"},
			candidate: "report (v2)",
			want:      "report (v2) #1",
		},
		{
			name:      "empty existing",
			existing:  nil,
			candidate: "Some folder",
			want:      "Some folder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueName(tt.existing, tt.candidate)
			assert.Equal(t, tt.want, got)

			// Property: the result never collides with an existing name.
			assert.NotContains(t, tt.existing, got)
		})
	}
}
