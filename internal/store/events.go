package store

import (
	"time"

	"github.com/mind-engage/coeus/internal/learning"
)

// MaxEventPage caps one ListEvents call.
const MaxEventPage = 500

// AppendEvent records e in the caller's transaction, so the event commits
// or rolls back with the progress change it describes.
func (t *Tx) AppendEvent(e learning.Event) error {
	data := string(e.Data)
	if data == "" {
		data = "{}"
	}
	_, err := t.exec(`INSERT INTO event_log (learner_id, typ, key, data, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		e.LearnerID, e.Type, e.Key, data, e.CreatedAt.UnixMilli())
	return err
}

// ListEvents returns the learner's events with seq > after, oldest first.
func (t *Tx) ListEvents(learnerID string, after int64, limit int) ([]learning.Event, error) {
	if limit <= 0 || limit > MaxEventPage {
		limit = MaxEventPage
	}
	rows, err := t.query(`SELECT seq, learner_id, typ, key, data, created_at FROM event_log
		WHERE learner_id=$1 AND seq>$2 ORDER BY seq LIMIT $3`, learnerID, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []learning.Event
	for rows.Next() {
		var (
			e    learning.Event
			data string
			ts   int64
		)
		if err := rows.Scan(&e.Seq, &e.LearnerID, &e.Type, &e.Key, &data, &ts); err != nil {
			return nil, err
		}
		e.Data = []byte(data)
		e.CreatedAt = time.UnixMilli(ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
