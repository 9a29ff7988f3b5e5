// Package storetest opens throwaway stores and seeds them for tests in
// other packages. SQLite is always available; Postgres runs only when
// COEUS_TEST_PG_DSN points at a scratch database.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
)

// PostgresDSNEnv names the variable holding a Postgres DSN for tests that
// need real row locks.
const PostgresDSNEnv = "COEUS_TEST_PG_DSN"

// Opener opens an empty store private to t.
type Opener func(t *testing.T, opts ...store.Option) *store.DB

// Open returns an empty in-memory SQLite store private to t.
func Open(t *testing.T, opts ...store.Option) *store.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := store.Open(context.Background(), store.DriverSQLite, dsn, opts...)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { db.Close() })
	return db
}

// OpenPostgres returns a store in a fresh schema of the database named by
// PostgresDSNEnv, dropped when t ends. It skips t if the variable is unset.
func OpenPostgres(t *testing.T, opts ...store.Option) *store.DB {
	t.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	ctx := context.Background()
	schema := "coeus_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "open postgres")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err, "create schema")
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	db, err := store.Open(ctx, store.DriverPostgres, withSearchPath(dsn, schema), opts...)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { db.Close() })
	return db
}

// withSearchPath adds a search_path runtime parameter to a URL or
// keyword/value DSN.
func withSearchPath(dsn, schema string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema
}

// Drivers runs fn as one subtest per backend: sqlite, then postgres when
// PostgresDSNEnv is set.
func Drivers(t *testing.T, fn func(t *testing.T, open Opener)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, Open) })
	t.Run("postgres", func(t *testing.T) { fn(t, OpenPostgres) })
}

// Course inserts a course at the next position.
func Course(t *testing.T, db *store.DB, title string) learning.Course {
	t.Helper()
	c := learning.Course{ID: uuid.NewString(), Title: title}
	err := db.WithTx(context.Background(), store.WriteTx, func(tx *store.Tx) error {
		pos, err := tx.NextCoursePosition()
		if err != nil {
			return err
		}
		c.Position = pos
		return tx.InsertCourse(c)
	})
	require.NoError(t, err, "seed course")
	return c
}

// Content appends a content row at orderIndex without going through the
// sequencer. Callers are responsible for keeping indexes dense.
func Content(t *testing.T, db *store.DB, courseID string, orderIndex int, available bool) learning.Content {
	t.Helper()
	c := learning.Content{
		ID:         uuid.NewString(),
		CourseID:   courseID,
		Title:      fmt.Sprintf("lesson %d", orderIndex),
		OrderIndex: orderIndex,
		Available:  available,
	}
	err := db.WithTx(context.Background(), store.WriteTx, func(tx *store.Tx) error {
		return tx.InsertContent(c)
	})
	require.NoError(t, err, "seed content")
	return c
}

// Question adds a question with one correct and two wrong options.
func Question(t *testing.T, db *store.DB, contentID string) learning.Question {
	t.Helper()
	q := learning.Question{ID: uuid.NewString(), ContentID: contentID, Text: "question " + contentID}
	q.Options = []learning.Option{
		{ID: uuid.NewString(), QuestionID: q.ID, Text: "right", IsCorrect: true},
		{ID: uuid.NewString(), QuestionID: q.ID, Text: "wrong a"},
		{ID: uuid.NewString(), QuestionID: q.ID, Text: "wrong b"},
	}
	err := db.WithTx(context.Background(), store.WriteTx, func(tx *store.Tx) error {
		return tx.InsertQuestion(q)
	})
	require.NoError(t, err, "seed question")
	return q
}

// Questions adds n questions to a content.
func Questions(t *testing.T, db *store.DB, contentID string, n int) []learning.Question {
	t.Helper()
	out := make([]learning.Question, 0, n)
	for range n {
		out = append(out, Question(t, db, contentID))
	}
	return out
}

// Right returns the id of q's correct option.
func Right(q learning.Question) string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	panic("question has no correct option")
}

// Wrong returns the id of one of q's incorrect options.
func Wrong(q learning.Question) string {
	for _, o := range q.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	panic("question has no incorrect option")
}

// Answers builds a submission over qs where the first `correct` answers are
// right and the rest wrong.
func Answers(qs []learning.Question, correct int) []learning.Answer {
	out := make([]learning.Answer, 0, len(qs))
	for i, q := range qs {
		opt := Wrong(q)
		if i < correct {
			opt = Right(q)
		}
		out = append(out, learning.Answer{QuestionID: q.ID, OptionID: opt})
	}
	return out
}

// SetQuestionProgress overwrites (or creates) a learner's progress row.
func SetQuestionProgress(t *testing.T, db *store.DB, p learning.QuestionProgress) {
	t.Helper()
	err := db.WithTx(context.Background(), store.WriteTx, func(tx *store.Tx) error {
		if _, err := tx.LockQuestionProgress(p.LearnerID, p.QuestionID); err != nil {
			return err
		}
		return tx.SaveQuestionProgress(p)
	})
	require.NoError(t, err, "seed question progress")
}

// SetContentProgress overwrites (or creates) a learner's content row.
func SetContentProgress(t *testing.T, db *store.DB, p learning.ContentProgress) {
	t.Helper()
	err := db.WithTx(context.Background(), store.WriteTx, func(tx *store.Tx) error {
		if _, err := tx.LockContentProgress(p.LearnerID, p.ContentID); err != nil {
			return err
		}
		return tx.SaveContentProgress(p)
	})
	require.NoError(t, err, "seed content progress")
}

// ContentRows reads a course's content in order.
func ContentRows(t *testing.T, db *store.DB, courseID string) []learning.Content {
	t.Helper()
	var out []learning.Content
	err := db.WithTx(context.Background(), store.ReadTx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListContent(courseID)
		return err
	})
	require.NoError(t, err)
	return out
}

// Ago is a helper for building past review dates.
func Ago(now time.Time, d time.Duration) *time.Time {
	ts := now.Add(-d)
	return &ts
}
