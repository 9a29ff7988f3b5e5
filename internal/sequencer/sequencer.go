// Package sequencer authors courses, content and questions, and keeps each
// course's content densely ordered 1..N.
//
// Every operation that touches ordering locks the course row and then all
// of the course's content rows, so operations on one course run in a total
// order. If the locks cannot be taken within the store's lock timeout the
// operation fails with learning.ErrConflict and nothing is applied.
package sequencer

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
)

type Sequencer struct {
	db    *store.DB
	newID func() string
}

func New(db *store.DB) *Sequencer {
	return &Sequencer{db: db, newID: uuid.NewString}
}

// ContentPatch is a partial update. Nil fields are left alone.
type ContentPatch struct {
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
	TargetIndex *int    `json:"target_index,omitempty"`
}

// OptionInput is one answer choice of a new question.
type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

func (s *Sequencer) CreateCourse(ctx context.Context, title string) (learning.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return learning.Course{}, learning.Validationf("title required")
	}
	c := learning.Course{ID: s.newID(), Title: title}
	err := s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		pos, err := tx.NextCoursePosition()
		if err != nil {
			return err
		}
		c.Position = pos
		return tx.InsertCourse(c)
	})
	if err != nil {
		return learning.Course{}, err
	}
	return c, nil
}

func (s *Sequencer) ListCourses(ctx context.Context) ([]learning.Course, error) {
	var out []learning.Course
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListCourses()
		return err
	})
	return out, err
}

// List returns every content item of a course in order, locked ones
// included.
func (s *Sequencer) List(ctx context.Context, courseID string) ([]learning.Content, error) {
	var out []learning.Content
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		if _, err := tx.GetCourse(courseID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListContent(courseID)
		return err
	})
	return out, err
}

// GetAvailable returns content a learner may see. Locked content is
// reported as not found.
func (s *Sequencer) GetAvailable(ctx context.Context, contentID string) (learning.Content, error) {
	var c learning.Content
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		var err error
		if c, err = tx.GetContent(contentID); err != nil {
			return err
		}
		if !c.Available {
			return learning.NotFoundf("content %s", contentID)
		}
		return nil
	})
	if err != nil {
		return learning.Content{}, err
	}
	return c, nil
}

// Insert appends content at max(order_index)+1. The first content of a
// course starts available; later ones stay locked until their predecessor
// is passed.
func (s *Sequencer) Insert(ctx context.Context, courseID, title, body string) (learning.Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return learning.Content{}, learning.Validationf("title required")
	}
	c := learning.Content{ID: s.newID(), CourseID: courseID, Title: title, Body: body}
	err := s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		items, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}
		last := 0
		for _, it := range items {
			last = max(last, it.OrderIndex)
		}
		c.OrderIndex = last + 1
		c.Available = c.OrderIndex == 1
		return tx.InsertContent(c)
	})
	if err != nil {
		return learning.Content{}, err
	}
	return c, nil
}

// Reorder moves contentID to target within courseID. A target past the end
// puts the item last.
func (s *Sequencer) Reorder(ctx context.Context, courseID, contentID string, target int) error {
	if target < 1 {
		return learning.Validationf("target index must be >= 1, got %d", target)
	}
	return s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		items, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}
		return reorder(tx, courseID, items, contentID, target)
	})
}

// Update applies a partial edit and, when TargetIndex is set, a reorder, in
// one transaction.
func (s *Sequencer) Update(ctx context.Context, contentID string, p ContentPatch) (learning.Content, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return learning.Content{}, learning.Validationf("title cannot be empty")
	}
	if p.TargetIndex != nil && *p.TargetIndex < 1 {
		return learning.Content{}, learning.Validationf("target index must be >= 1, got %d", *p.TargetIndex)
	}
	var out learning.Content
	err := s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		cur, err := tx.GetContent(contentID)
		if err != nil {
			return err
		}
		items, err := lockCourse(tx, cur.CourseID)
		if err != nil {
			return err
		}
		if cur, err = find(items, contentID); err != nil {
			return err
		}

		if p.Title != nil || p.Body != nil {
			title, body := cur.Title, cur.Body
			if p.Title != nil {
				title = strings.TrimSpace(*p.Title)
			}
			if p.Body != nil {
				body = *p.Body
			}
			if err := tx.UpdateContentText(contentID, title, body); err != nil {
				return err
			}
		}
		if p.TargetIndex != nil {
			if err := reorder(tx, cur.CourseID, items, contentID, *p.TargetIndex); err != nil {
				return err
			}
		}
		out, err = tx.GetContent(contentID)
		return err
	})
	if err != nil {
		return learning.Content{}, err
	}
	return out, nil
}

// Delete removes content with its questions and closes the gap it leaves.
// Content that learners already have progress on cannot be deleted; that
// fails with learning.ErrIntegrity.
func (s *Sequencer) Delete(ctx context.Context, contentID string) error {
	return s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		cur, err := tx.GetContent(contentID)
		if err != nil {
			return err
		}
		items, err := lockCourse(tx, cur.CourseID)
		if err != nil {
			return err
		}
		if _, err := find(items, contentID); err != nil {
			return err
		}
		if err := tx.DeleteContent(contentID); err != nil {
			return err
		}
		rest := make([]learning.Content, 0, len(items)-1)
		for _, it := range items {
			if it.ID != contentID {
				rest = append(rest, it)
			}
		}
		return tx.SetOrderIndexes(cur.CourseID, Changed(rest, Normalize(rest)))
	})
}

// CreateQuestion adds a question and its options to existing content.
// Exactly-one-correct-option is not enforced.
func (s *Sequencer) CreateQuestion(ctx context.Context, contentID, text string, options []OptionInput) (learning.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return learning.Question{}, learning.Validationf("question text required")
	}
	if len(options) == 0 {
		return learning.Question{}, learning.Validationf("at least one option required")
	}
	q := learning.Question{ID: s.newID(), ContentID: contentID, Text: text}
	for i, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return learning.Question{}, learning.Validationf("option %d: text required", i)
		}
		q.Options = append(q.Options, learning.Option{ID: s.newID(), QuestionID: q.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	err := s.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
		if _, err := tx.GetContent(contentID); err != nil {
			return err
		}
		return tx.InsertQuestion(q)
	})
	if err != nil {
		return learning.Question{}, err
	}
	return q, nil
}

// lockCourse takes the course row lock and then every content row lock of
// the course, returning the content in order.
func lockCourse(tx *store.Tx, courseID string) ([]learning.Content, error) {
	if _, err := tx.LockCourse(courseID); err != nil {
		return nil, err
	}
	return tx.LockContent(courseID)
}

func find(items []learning.Content, id string) (learning.Content, error) {
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return learning.Content{}, learning.NotFoundf("content %s", id)
}

func reorder(tx *store.Tx, courseID string, items []learning.Content, contentID string, target int) error {
	next, ok := Relocate(items, contentID, target)
	if !ok {
		return learning.NotFoundf("content %s in course %s", contentID, courseID)
	}
	if err := tx.SetOrderIndexes(courseID, Changed(items, next)); err != nil {
		return err
	}

	// Re-read and renumber if anything is off.
	after, err := tx.ListContent(courseID)
	if err != nil {
		return err
	}
	if !IsDense(after) {
		log.Printf("sequencer: course %s not dense after reorder, renumbering", courseID)
		if err := tx.SetOrderIndexes(courseID, Changed(after, Normalize(after))); err != nil {
			return err
		}
	}
	log.Printf("sequencer: moved content %s to %d in course %s", contentID, next[contentID], courseID)
	return nil
}
