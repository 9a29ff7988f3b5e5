// Package exam assembles exam papers: a random subset of a content's (or a
// level's pooled) questions with the answer keys removed.
package exam

import (
	"context"
	"math/rand/v2"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
)

const (
	DefaultExamSize     = 10
	DefaultUnitExamSize = 20
)

// Paper is what a learner is shown when starting an exam.
type Paper struct {
	Scope     learning.Scope          `json:"scope"`
	Title     string                  `json:"title"`
	Questions []learning.QuestionView `json:"questions"`
}

type Builder struct {
	db       *store.DB
	shuffle  func(n int, swap func(i, j int))
	examSize int
	unitSize int
}

type Option func(*Builder)

// WithSizes sets the default paper sizes used when a caller asks for
// count <= 0. Non-positive values keep the built-in defaults.
func WithSizes(exam, unit int) Option {
	return func(b *Builder) {
		if exam > 0 {
			b.examSize = exam
		}
		if unit > 0 {
			b.unitSize = unit
		}
	}
}

// WithShuffle replaces rand.Shuffle, mainly so tests get a fixed order.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(b *Builder) {
		if fn != nil {
			b.shuffle = fn
		}
	}
}

func NewBuilder(db *store.DB, opts ...Option) *Builder {
	b := &Builder{db: db, shuffle: rand.Shuffle, examSize: DefaultExamSize, unitSize: DefaultUnitExamSize}
	for _, o := range opts {
		o(b)
	}
	return b
}

// StartExam draws up to count questions from one content unit. Locked
// content is reported as not found.
func (b *Builder) StartExam(ctx context.Context, contentID string, count int) (Paper, error) {
	if count <= 0 {
		count = b.examSize
	}
	var p Paper
	err := b.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		c, err := tx.GetContent(contentID)
		if err != nil {
			return err
		}
		if !c.Available {
			return learning.NotFoundf("content %s", contentID)
		}
		pool, err := tx.QuestionsForContent(c.ID)
		if err != nil {
			return err
		}
		p = Paper{Scope: learning.ContentScope(c.ID), Title: c.Title, Questions: b.draw(pool, count)}
		return nil
	})
	return p, err
}

// StartUnitExam draws up to count questions pooled across every content of
// a level.
func (b *Builder) StartUnitExam(ctx context.Context, levelID string, count int) (Paper, error) {
	if count <= 0 {
		count = b.unitSize
	}
	var p Paper
	err := b.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		course, err := tx.GetCourse(levelID)
		if err != nil {
			return err
		}
		pool, err := tx.QuestionsForCourse(course.ID)
		if err != nil {
			return err
		}
		p = Paper{Scope: learning.LevelScope(course.ID), Title: course.Title, Questions: b.draw(pool, count)}
		return nil
	})
	return p, err
}

func (b *Builder) draw(pool []learning.Question, count int) []learning.QuestionView {
	b.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]learning.QuestionView, 0, count)
	for _, q := range pool[:count] {
		out = append(out, q.View())
	}
	return out
}
