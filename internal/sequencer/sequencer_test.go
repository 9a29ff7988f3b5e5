package sequencer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
	"github.com/mind-engage/coeus/internal/store/storetest"
)

func assertDense(t *testing.T, db *store.DB, courseID string, n int) []learning.Content {
	t.Helper()
	rows := storetest.ContentRows(t, db, courseID)
	require.Len(t, rows, n)
	for i, r := range rows {
		assert.Equal(t, i+1, r.OrderIndex, "row %s", r.ID)
	}
	return rows
}

func seedCourse(t *testing.T, s *Sequencer, n int) (learning.Course, []learning.Content) {
	t.Helper()
	ctx := context.Background()
	course, err := s.CreateCourse(ctx, "Level 1")
	require.NoError(t, err)
	var out []learning.Content
	for i := range n {
		c, err := s.Insert(ctx, course.ID, fmt.Sprintf("lesson %d", i+1), "")
		require.NoError(t, err)
		out = append(out, c)
	}
	return course, out
}

func TestCreateCourseAppends(t *testing.T) {
	s := New(storetest.Open(t))
	ctx := context.Background()

	a, err := s.CreateCourse(ctx, "Level 1")
	require.NoError(t, err)
	b, err := s.CreateCourse(ctx, "  Level 2 ")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 2, b.Position)
	assert.Equal(t, "Level 2", b.Title)

	list, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []learning.Course{a, b}, list)

	_, err = s.CreateCourse(ctx, " ")
	assert.ErrorIs(t, err, learning.ErrValidation)
}

func TestInsert(t *testing.T) {
	db := storetest.Open(t)
	s := New(db)
	course, got := seedCourse(t, s, 3)

	for i, c := range got {
		assert.Equal(t, i+1, c.OrderIndex)
		assert.Equal(t, i == 0, c.Available, "only the first content starts available")
	}
	assertDense(t, db, course.ID, 3)

	_, err := s.Insert(context.Background(), "missing", "x", "")
	assert.ErrorIs(t, err, learning.ErrNotFound)
	_, err = s.Insert(context.Background(), course.ID, "", "")
	assert.ErrorIs(t, err, learning.ErrValidation)
}

func TestReorder(t *testing.T) {
	db := storetest.Open(t)
	s := New(db)
	course, cs := seedCourse(t, s, 4)
	ctx := context.Background()

	require.NoError(t, s.Reorder(ctx, course.ID, cs[0].ID, 3))
	rows := assertDense(t, db, course.ID, 4)
	assert.Equal(t, []string{cs[1].ID, cs[2].ID, cs[0].ID, cs[3].ID}, ids(rows))
	assert.True(t, rows[2].Available, "moving does not change availability")

	require.NoError(t, s.Reorder(ctx, course.ID, cs[3].ID, 1))
	rows = assertDense(t, db, course.ID, 4)
	assert.Equal(t, []string{cs[3].ID, cs[1].ID, cs[2].ID, cs[0].ID}, ids(rows))

	assert.ErrorIs(t, s.Reorder(ctx, course.ID, cs[0].ID, 0), learning.ErrValidation)
	assert.ErrorIs(t, s.Reorder(ctx, course.ID, "missing", 1), learning.ErrNotFound)
	other, _ := seedCourse(t, s, 1)
	assert.ErrorIs(t, s.Reorder(ctx, other.ID, cs[0].ID, 1), learning.ErrNotFound)
	assertDense(t, db, course.ID, 4)
}

func TestOrderingInvariantUnderRandomOps(t *testing.T) {
	db := storetest.Open(t)
	s := New(db)
	course, _ := seedCourse(t, s, 3)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	n := 3
	for i := range 60 {
		rows := storetest.ContentRows(t, db, course.ID)
		switch rng.IntN(3) {
		case 0:
			_, err := s.Insert(ctx, course.ID, fmt.Sprintf("extra %d", i), "")
			require.NoError(t, err)
			n++
		case 1:
			if n > 1 {
				require.NoError(t, s.Delete(ctx, rows[rng.IntN(n)].ID))
				n--
			}
		default:
			require.NoError(t, s.Reorder(ctx, course.ID, rows[rng.IntN(n)].ID, 1+rng.IntN(n+2)))
		}
		assertDense(t, db, course.ID, n)
	}
}

func TestConcurrentReordersSerialize(t *testing.T) {
	storetest.Drivers(t, func(t *testing.T, open storetest.Opener) {
		db := open(t, store.WithLockTimeout(10*time.Second))
		s := New(db)
		course, cs := seedCourse(t, s, 8)
		ctx := context.Background()

		const workers = 16
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := cs[w%len(cs)].ID
				errs <- s.Reorder(ctx, course.ID, id, 1+(w*3)%len(cs))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		rows := assertDense(t, db, course.ID, len(cs))
		assert.ElementsMatch(t, ids(cs), ids(rows), "no item lost or duplicated")
	})
}

func TestUpdate(t *testing.T) {
	db := storetest.Open(t)
	s := New(db)
	course, cs := seedCourse(t, s, 3)
	ctx := context.Background()

	title, body, target := "Fractions", "halves and quarters", 1
	got, err := s.Update(ctx, cs[2].ID, ContentPatch{Title: &title, Body: &body, TargetIndex: &target})
	require.NoError(t, err)
	assert.Equal(t, "Fractions", got.Title)
	assert.Equal(t, "halves and quarters", got.Body)
	assert.Equal(t, 1, got.OrderIndex)
	assert.False(t, got.Available)
	assertDense(t, db, course.ID, 3)

	body2 := "only the body"
	got, err = s.Update(ctx, cs[2].ID, ContentPatch{Body: &body2})
	require.NoError(t, err)
	assert.Equal(t, "Fractions", got.Title)
	assert.Equal(t, 1, got.OrderIndex)

	empty := " "
	_, err = s.Update(ctx, cs[0].ID, ContentPatch{Title: &empty})
	assert.ErrorIs(t, err, learning.ErrValidation)
	zero := 0
	_, err = s.Update(ctx, cs[0].ID, ContentPatch{TargetIndex: &zero})
	assert.ErrorIs(t, err, learning.ErrValidation)
	_, err = s.Update(ctx, "missing", ContentPatch{Body: &body})
	assert.ErrorIs(t, err, learning.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := storetest.Open(t)
	s := New(db)
	course, cs := seedCourse(t, s, 4)
	ctx := context.Background()
	storetest.Questions(t, db, cs[1].ID, 2)

	require.NoError(t, s.Delete(ctx, cs[1].ID))
	rows := assertDense(t, db, course.ID, 3)
	assert.Equal(t, []string{cs[0].ID, cs[2].ID, cs[3].ID}, ids(rows))
	assert.ErrorIs(t, s.Delete(ctx, cs[1].ID), learning.ErrNotFound)

	// Content with learner history is kept.
	storetest.SetContentProgress(t, db, learning.ContentProgress{LearnerID: "ada", ContentID: cs[0].ID})
	assert.ErrorIs(t, s.Delete(ctx, cs[0].ID), learning.ErrIntegrity)
	assertDense(t, db, course.ID, 3)
}

func TestGetAvailable(t *testing.T) {
	s := New(storetest.Open(t))
	_, cs := seedCourse(t, s, 2)
	ctx := context.Background()

	got, err := s.GetAvailable(ctx, cs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, cs[0], got)

	_, err = s.GetAvailable(ctx, cs[1].ID)
	assert.ErrorIs(t, err, learning.ErrNotFound)
}

func TestList(t *testing.T) {
	s := New(storetest.Open(t))
	course, cs := seedCourse(t, s, 2)

	got, err := s.List(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, cs, got)

	_, err = s.List(context.Background(), "missing")
	assert.ErrorIs(t, err, learning.ErrNotFound)
}

func TestCreateQuestion(t *testing.T) {
	s := New(storetest.Open(t))
	_, cs := seedCourse(t, s, 1)
	ctx := context.Background()

	q, err := s.CreateQuestion(ctx, cs[0].ID, "2 + 2?", []OptionInput{{Text: "4", IsCorrect: true}, {Text: "5"}})
	require.NoError(t, err)
	require.Len(t, q.Options, 2)
	assert.Equal(t, q.ID, q.Options[0].QuestionID)
	assert.True(t, q.Options[0].IsCorrect)

	_, err = s.CreateQuestion(ctx, cs[0].ID, "", []OptionInput{{Text: "4"}})
	assert.ErrorIs(t, err, learning.ErrValidation)
	_, err = s.CreateQuestion(ctx, cs[0].ID, "no options", nil)
	assert.ErrorIs(t, err, learning.ErrValidation)
	_, err = s.CreateQuestion(ctx, cs[0].ID, "blank option", []OptionInput{{Text: ""}})
	assert.ErrorIs(t, err, learning.ErrValidation)
	_, err = s.CreateQuestion(ctx, "missing", "q", []OptionInput{{Text: "a"}})
	assert.ErrorIs(t, err, learning.ErrNotFound)
}

func ids(cs []learning.Content) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
