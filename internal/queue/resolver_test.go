package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store/storetest"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const learner = "ada"

func TestResolvePriority(t *testing.T) {
	db := storetest.Open(t)
	course := storetest.Course(t, db, "Level 1")
	first := storetest.Content(t, db, course.ID, 1, true)
	storetest.Content(t, db, course.ID, 2, false)
	qs := storetest.Questions(t, db, first.ID, 2)
	r := NewResolver(db, func() time.Time { return now })
	ctx := context.Background()

	// Nothing reached yet: the first available content.
	item, err := r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueNewContent, item.Kind)
	require.NotNil(t, item.Content)
	assert.Equal(t, first.ID, item.Content.ID)

	// Reached but not passed: gated exam.
	storetest.SetContentProgress(t, db, learning.ContentProgress{LearnerID: learner, ContentID: first.ID, AnsweredCount: 10, CorrectCount: 9})
	item, err = r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueGatedExam, item.Kind)
	assert.Equal(t, first.ID, item.Content.ID)

	// A failed question outranks the exam.
	storetest.SetQuestionProgress(t, db, learning.QuestionProgress{
		LearnerID: learner, QuestionID: qs[0].ID, TimesIncorrect: 1, NextReviewDate: storetest.Ago(now, -24*time.Hour),
	})
	item, err = r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueFailedReview, item.Kind)
	require.Len(t, item.Questions, 1)
	assert.Equal(t, qs[0].ID, item.Questions[0].ID)

	// A due recall outranks the failed review.
	storetest.SetQuestionProgress(t, db, learning.QuestionProgress{
		LearnerID: learner, QuestionID: qs[1].ID, LastAnswerCorrect: true, TimesCorrect: 1, NextReviewDate: storetest.Ago(now, time.Minute),
	})
	item, err = r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueDueRecall, item.Kind)
	require.Len(t, item.Questions, 1)
	assert.Equal(t, qs[1].ID, item.Questions[0].ID)

	// Other learners are unaffected.
	item, err = r.Resolve(ctx, "grace")
	require.NoError(t, err)
	assert.Equal(t, learning.QueueNewContent, item.Kind)
}

func TestResolveNewContentAfterPass(t *testing.T) {
	db := storetest.Open(t)
	level1 := storetest.Course(t, db, "Level 1")
	level2 := storetest.Course(t, db, "Level 2")
	a := storetest.Content(t, db, level1.ID, 1, true)
	storetest.Content(t, db, level1.ID, 2, false)
	c := storetest.Content(t, db, level2.ID, 1, true)
	r := NewResolver(db, func() time.Time { return now })
	ctx := context.Background()

	storetest.SetContentProgress(t, db, learning.ContentProgress{LearnerID: learner, ContentID: a.ID, AnsweredCount: 30, CorrectCount: 30, Passed: true})

	// b is still locked, so the next available item is in the next level.
	item, err := r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueNewContent, item.Kind)
	assert.Equal(t, c.ID, item.Content.ID)

	storetest.SetContentProgress(t, db, learning.ContentProgress{LearnerID: learner, ContentID: c.ID, AnsweredCount: 30, CorrectCount: 30, Passed: true})
	item, err = r.Resolve(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, learning.QueueEmpty, item.Kind)
	assert.Nil(t, item.Content)
}

func TestResolveIsDeterministic(t *testing.T) {
	db := storetest.Open(t)
	course := storetest.Course(t, db, "Level 1")
	first := storetest.Content(t, db, course.ID, 1, true)
	qs := storetest.Questions(t, db, first.ID, 4)
	for i, q := range qs {
		storetest.SetQuestionProgress(t, db, learning.QuestionProgress{
			LearnerID: learner, QuestionID: q.ID, LastAnswerCorrect: true, TimesCorrect: 1,
			NextReviewDate: storetest.Ago(now, time.Duration(i)*time.Hour),
		})
	}
	r := NewResolver(db, func() time.Time { return now })
	ctx := context.Background()

	want, err := r.Resolve(ctx, learner)
	require.NoError(t, err)
	require.Equal(t, learning.QueueDueRecall, want.Kind)
	require.Len(t, want.Questions, 4)
	assert.Equal(t, qs[3].ID, want.Questions[0].ID, "oldest due first")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Resolve(ctx, learner)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestNextContent(t *testing.T) {
	all := []learning.Content{
		{ID: "a", Available: true},
		{ID: "b", Available: true},
		{ID: "c", Available: false},
		{ID: "d", Available: true},
	}
	tests := []struct {
		name     string
		progress map[string]learning.ContentProgress
		kind     learning.QueueKind
		id       string
	}{
		{"fresh learner", nil, learning.QueueNewContent, "a"},
		{"first unpassed reached wins", map[string]learning.ContentProgress{"a": {}, "b": {}}, learning.QueueGatedExam, "a"},
		{"after furthest reached", map[string]learning.ContentProgress{"a": {Passed: true}, "b": {Passed: true}}, learning.QueueNewContent, "d"},
		{"all done", map[string]learning.ContentProgress{"a": {Passed: true}, "d": {Passed: true}}, learning.QueueEmpty, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextContent(all, tt.progress)
			assert.Equal(t, tt.kind, got.Kind)
			if tt.id == "" {
				assert.Nil(t, got.Content)
				return
			}
			require.NotNil(t, got.Content)
			assert.Equal(t, tt.id, got.Content.ID)
		})
	}
}
