// Package queue picks the next activity for a learner.
package queue

import (
	"context"
	"time"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/recall"
	"github.com/mind-engage/coeus/internal/store"
)

type Resolver struct {
	db  *store.DB
	now func() time.Time
}

func NewResolver(db *store.DB, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{db: db, now: now}
}

// Resolve returns the learner's next queue item. It only reads, inside one
// snapshot, so the answer for a given progress state never depends on who
// else is reading.
func (r *Resolver) Resolve(ctx context.Context, learnerID string) (learning.QueueItem, error) {
	if learnerID == "" {
		return learning.QueueItem{}, learning.Validationf("learner id required")
	}
	var item learning.QueueItem
	err := r.db.WithTx(ctx, store.ReadTx, func(tx *store.Tx) error {
		var err error
		item, err = Resolve(tx, learnerID, r.now())
		return err
	})
	return item, err
}

// Resolve applies the queue priority inside an open transaction:
// due recall, failed review, the gating exam, new content, then nothing.
func Resolve(tx *store.Tx, learnerID string, now time.Time) (learning.QueueItem, error) {
	due, err := recall.DueQuestions(tx, learnerID, now)
	if err != nil {
		return learning.QueueItem{}, err
	}
	if len(due) > 0 {
		return learning.QueueItem{Kind: learning.QueueDueRecall, Questions: due}, nil
	}

	failed, err := recall.FailedQuestions(tx, learnerID)
	if err != nil {
		return learning.QueueItem{}, err
	}
	if len(failed) > 0 {
		return learning.QueueItem{Kind: learning.QueueFailedReview, Questions: failed}, nil
	}

	all, err := tx.ListAllContent()
	if err != nil {
		return learning.QueueItem{}, err
	}
	progress, err := tx.ContentProgressByContent(learnerID)
	if err != nil {
		return learning.QueueItem{}, err
	}
	return nextContent(all, progress), nil
}

// nextContent walks the curriculum (course position, then order_index).
// A content is reached once the learner has a progress row for it.
func nextContent(all []learning.Content, progress map[string]learning.ContentProgress) learning.QueueItem {
	furthest := -1
	for i, c := range all {
		p, reached := progress[c.ID]
		if !reached {
			continue
		}
		if !p.Passed {
			return learning.QueueItem{Kind: learning.QueueGatedExam, Content: &c}
		}
		furthest = i
	}
	for _, c := range all[furthest+1:] {
		if c.Available {
			return learning.QueueItem{Kind: learning.QueueNewContent, Content: &c}
		}
	}
	return learning.QueueItem{Kind: learning.QueueEmpty}
}
