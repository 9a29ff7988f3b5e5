package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/sequencer"
	"github.com/mind-engage/coeus/internal/store/storetest"
)

func TestSeedDemo(t *testing.T) {
	db := storetest.Open(t)
	seq := sequencer.New(db)
	ctx := context.Background()

	require.NoError(t, seedDemo(ctx, seq, 2, 3))

	courses, err := seq.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	for _, c := range courses {
		list, err := seq.List(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, item := range list {
			assert.Equal(t, i+1, item.OrderIndex)
			assert.Equal(t, i == 0, item.Available)
		}
	}
}
