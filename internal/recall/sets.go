package recall

import (
	"context"
	"time"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
)

// DueQuestions returns the learner's questions whose review date has
// passed, oldest first, with answer keys stripped. "Due" is computed here
// at read time; nothing schedules it in the background.
func DueQuestions(tx *store.Tx, learnerID string, now time.Time) ([]learning.QuestionView, error) {
	rows, err := tx.DueQuestionProgress(learnerID, now)
	if err != nil {
		return nil, err
	}
	return views(tx, rows)
}

// FailedQuestions returns the questions the learner last answered wrong.
func FailedQuestions(tx *store.Tx, learnerID string) ([]learning.QuestionView, error) {
	rows, err := tx.FailedQuestionProgress(learnerID)
	if err != nil {
		return nil, err
	}
	return views(tx, rows)
}

func views(tx *store.Tx, rows []learning.QuestionProgress) ([]learning.QuestionView, error) {
	out := make([]learning.QuestionView, 0, len(rows))
	for _, p := range rows {
		q, err := tx.GetQuestion(p.QuestionID)
		if err != nil {
			return nil, err
		}
		out = append(out, q.View())
	}
	return out, nil
}

// Service serves the recall and review question sets.
type Service struct {
	db  *store.DB
	now func() time.Time
}

func NewService(db *store.DB, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, now: now}
}

func (s *Service) Due(ctx context.Context, learnerID string) ([]learning.QuestionView, error) {
	if learnerID == "" {
		return nil, learning.Validationf("learner id required")
	}
	var out []learning.QuestionView
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		var err error
		out, err = DueQuestions(tx, learnerID, s.now())
		return err
	})
	return out, err
}

func (s *Service) Failed(ctx context.Context, learnerID string) ([]learning.QuestionView, error) {
	if learnerID == "" {
		return nil, learning.Validationf("learner id required")
	}
	var out []learning.QuestionView
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		var err error
		out, err = FailedQuestions(tx, learnerID)
		return err
	})
	return out, err
}
