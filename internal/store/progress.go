package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mind-engage/coeus/internal/learning"
)

const questionProgressColumns = `learner_id, question_id, last_answer_correct, times_correct, times_incorrect, next_review_date`

func scanQuestionProgress(sc interface{ Scan(...any) error }) (learning.QuestionProgress, error) {
	var (
		p    learning.QuestionProgress
		next sql.NullInt64
	)
	if err := sc.Scan(&p.LearnerID, &p.QuestionID, &p.LastAnswerCorrect, &p.TimesCorrect, &p.TimesIncorrect, &next); err != nil {
		return learning.QuestionProgress{}, err
	}
	if next.Valid {
		ts := time.UnixMilli(next.Int64).UTC()
		p.NextReviewDate = &ts
	}
	return p, nil
}

// LockQuestionProgress returns the learner's progress row for a question,
// creating it with zero counters if needed, and holds its row lock until
// the transaction ends.
func (t *Tx) LockQuestionProgress(learnerID, questionID string) (learning.QuestionProgress, error) {
	if _, err := t.exec(`INSERT INTO question_progress (learner_id, question_id) VALUES ($1, $2)
		ON CONFLICT (learner_id, question_id) DO NOTHING`, learnerID, questionID); err != nil {
		return learning.QuestionProgress{}, err
	}
	return scanQuestionProgress(t.queryRow(`SELECT `+questionProgressColumns+` FROM question_progress
		WHERE learner_id=$1 AND question_id=$2`+t.forUpdate(), learnerID, questionID))
}

func (t *Tx) SaveQuestionProgress(p learning.QuestionProgress) error {
	var next sql.NullInt64
	if p.NextReviewDate != nil {
		next = sql.NullInt64{Int64: p.NextReviewDate.UnixMilli(), Valid: true}
	}
	res, err := t.exec(`UPDATE question_progress
		   SET last_answer_correct=$1, times_correct=$2, times_incorrect=$3, next_review_date=$4
		 WHERE learner_id=$5 AND question_id=$6`,
		p.LastAnswerCorrect, p.TimesCorrect, p.TimesIncorrect, next, p.LearnerID, p.QuestionID)
	if err != nil {
		return err
	}
	return mustAffect(res, "question progress "+p.QuestionID)
}

// GetQuestionProgress returns the row, or found=false if the learner has
// never answered the question.
func (t *Tx) GetQuestionProgress(learnerID, questionID string) (p learning.QuestionProgress, found bool, err error) {
	p, err = scanQuestionProgress(t.queryRow(`SELECT `+questionProgressColumns+` FROM question_progress
		WHERE learner_id=$1 AND question_id=$2`, learnerID, questionID))
	if errors.Is(err, sql.ErrNoRows) {
		return learning.QuestionProgress{}, false, nil
	}
	if err != nil {
		return learning.QuestionProgress{}, false, err
	}
	return p, true, nil
}

// DueQuestionProgress lists rows whose next_review_date is set and not
// after now, oldest first.
func (t *Tx) DueQuestionProgress(learnerID string, now time.Time) ([]learning.QuestionProgress, error) {
	return t.listQuestionProgress(`SELECT `+questionProgressColumns+` FROM question_progress
		WHERE learner_id=$1 AND next_review_date IS NOT NULL AND next_review_date <= $2
		ORDER BY next_review_date, question_id`, learnerID, now.UnixMilli())
}

// FailedQuestionProgress lists rows whose last answer was wrong.
func (t *Tx) FailedQuestionProgress(learnerID string) ([]learning.QuestionProgress, error) {
	return t.listQuestionProgress(`SELECT `+questionProgressColumns+` FROM question_progress
		WHERE learner_id=$1 AND last_answer_correct=$2
		ORDER BY question_id`, learnerID, false)
}

func (t *Tx) listQuestionProgress(query string, args ...any) ([]learning.QuestionProgress, error) {
	rows, err := t.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []learning.QuestionProgress
	for rows.Next() {
		p, err := scanQuestionProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const contentProgressColumns = `learner_id, content_id, answered_count, correct_count, passed`

func scanContentProgress(sc interface{ Scan(...any) error }) (learning.ContentProgress, error) {
	var p learning.ContentProgress
	err := sc.Scan(&p.LearnerID, &p.ContentID, &p.AnsweredCount, &p.CorrectCount, &p.Passed)
	return p, err
}

// LockContentProgress is LockQuestionProgress for (learner, content).
func (t *Tx) LockContentProgress(learnerID, contentID string) (learning.ContentProgress, error) {
	if _, err := t.exec(`INSERT INTO content_progress (learner_id, content_id) VALUES ($1, $2)
		ON CONFLICT (learner_id, content_id) DO NOTHING`, learnerID, contentID); err != nil {
		return learning.ContentProgress{}, err
	}
	return scanContentProgress(t.queryRow(`SELECT `+contentProgressColumns+` FROM content_progress
		WHERE learner_id=$1 AND content_id=$2`+t.forUpdate(), learnerID, contentID))
}

func (t *Tx) SaveContentProgress(p learning.ContentProgress) error {
	res, err := t.exec(`UPDATE content_progress
		   SET answered_count=$1, correct_count=$2, passed=$3
		 WHERE learner_id=$4 AND content_id=$5`,
		p.AnsweredCount, p.CorrectCount, p.Passed, p.LearnerID, p.ContentID)
	if err != nil {
		return err
	}
	return mustAffect(res, "content progress "+p.ContentID)
}

func (t *Tx) GetContentProgress(learnerID, contentID string) (p learning.ContentProgress, found bool, err error) {
	p, err = scanContentProgress(t.queryRow(`SELECT `+contentProgressColumns+` FROM content_progress
		WHERE learner_id=$1 AND content_id=$2`, learnerID, contentID))
	if errors.Is(err, sql.ErrNoRows) {
		return learning.ContentProgress{}, false, nil
	}
	if err != nil {
		return learning.ContentProgress{}, false, err
	}
	return p, true, nil
}

// ContentProgressByContent returns all of a learner's content rows keyed by
// content id.
func (t *Tx) ContentProgressByContent(learnerID string) (map[string]learning.ContentProgress, error) {
	rows, err := t.query(`SELECT `+contentProgressColumns+` FROM content_progress WHERE learner_id=$1`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]learning.ContentProgress{}
	for rows.Next() {
		p, err := scanContentProgress(rows)
		if err != nil {
			return nil, err
		}
		out[p.ContentID] = p
	}
	return out, rows.Err()
}
