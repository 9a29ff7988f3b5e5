// Package history reads a learner's progress events. Events are written by
// the grader inside its own transactions; this package only pages them.
package history

import (
	"context"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/store"
)

type Service struct{ db *store.DB }

func NewService(db *store.DB) *Service { return &Service{db: db} }

// Page is one slice of a learner's history. Next is the cursor for the
// following call; it equals the request cursor when nothing new exists.
type Page struct {
	Events []learning.Event `json:"events"`
	Next   int64            `json:"next"`
}

// List returns events with seq > after, oldest first, at most limit of
// them (store.MaxEventPage when limit is 0).
func (s *Service) List(ctx context.Context, learnerID string, after int64, limit int) (Page, error) {
	if learnerID == "" {
		return Page{}, learning.Validationf("learner id required")
	}
	if after < 0 || limit < 0 {
		return Page{}, learning.Validationf("after and limit must not be negative")
	}
	p := Page{Events: []learning.Event{}, Next: after}
	err := s.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		evs, err := tx.ListEvents(learnerID, after, limit)
		if err != nil {
			return err
		}
		if len(evs) > 0 {
			p.Events = evs
			p.Next = evs[len(evs)-1].Seq
		}
		return nil
	})
	return p, err
}
