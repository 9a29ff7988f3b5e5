package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/coeus/internal/learning"
)

func items(ids ...string) []learning.Content {
	out := make([]learning.Content, len(ids))
	for i, id := range ids {
		out[i] = learning.Content{ID: id, OrderIndex: i + 1}
	}
	return out
}

func order(next map[string]int) []string {
	out := make([]string, len(next))
	for id, idx := range next {
		out[idx-1] = id
	}
	return out
}

func TestRelocate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		target int
		want   []string
	}{
		{"down", "b", 4, []string{"a", "c", "d", "b", "e"}},
		{"up", "d", 1, []string{"d", "a", "b", "c", "e"}},
		{"same place", "c", 3, []string{"a", "b", "c", "d", "e"}},
		{"past the end", "a", 99, []string{"b", "c", "d", "e", "a"}},
		{"below one", "e", -3, []string{"e", "a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := Relocate(items("a", "b", "c", "d", "e"), tt.id, tt.target)
			assert.True(t, ok)
			assert.Equal(t, tt.want, order(next))
		})
	}

	_, ok := Relocate(items("a"), "zz", 1)
	assert.False(t, ok)
}

func TestNormalizeRepairsGapsAndDuplicates(t *testing.T) {
	in := []learning.Content{
		{ID: "x", OrderIndex: 7},
		{ID: "b", OrderIndex: 2},
		{ID: "a", OrderIndex: 2},
		{ID: "c", OrderIndex: 4},
	}
	assert.False(t, IsDense(in))
	next := Normalize(in)
	assert.Equal(t, []string{"a", "b", "c", "x"}, order(next))
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3, "x": 4}, next)
	assert.Equal(t, map[string]int{"a": 1, "c": 3, "x": 4}, Changed(in, next))
}

func TestIsDense(t *testing.T) {
	assert.True(t, IsDense(nil))
	assert.True(t, IsDense(items("a", "b", "c")))
	assert.False(t, IsDense([]learning.Content{{ID: "a", OrderIndex: 0}}))
	assert.False(t, IsDense([]learning.Content{{ID: "a", OrderIndex: 1}, {ID: "b", OrderIndex: 3}}))
}
