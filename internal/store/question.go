package store

import (
	"database/sql"
	"errors"

	"github.com/mind-engage/coeus/internal/learning"
)

func (t *Tx) InsertQuestion(q learning.Question) error {
	if _, err := t.exec(`INSERT INTO questions (id, content_id, text) VALUES ($1, $2, $3)`, q.ID, q.ContentID, q.Text); err != nil {
		return err
	}
	for _, o := range q.Options {
		if _, err := t.exec(`INSERT INTO options (id, question_id, text, is_correct) VALUES ($1, $2, $3, $4)`,
			o.ID, q.ID, o.Text, o.IsCorrect); err != nil {
			return err
		}
	}
	return nil
}

// GetQuestion loads a question with its options.
func (t *Tx) GetQuestion(id string) (learning.Question, error) {
	qs, err := t.loadQuestions(`SELECT id, content_id, text FROM questions WHERE id=$1`, id)
	if err != nil {
		return learning.Question{}, err
	}
	if len(qs) == 0 {
		return learning.Question{}, learning.NotFoundf("question %s", id)
	}
	return qs[0], nil
}

// GetOption returns the option with id; found is false if it does not exist.
func (t *Tx) GetOption(id string) (o learning.Option, found bool, err error) {
	err = t.queryRow(`SELECT id, question_id, text, is_correct FROM options WHERE id=$1`, id).
		Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return learning.Option{}, false, nil
	}
	if err != nil {
		return learning.Option{}, false, err
	}
	return o, true, nil
}

// QuestionsForContent returns all questions of one content unit.
func (t *Tx) QuestionsForContent(contentID string) ([]learning.Question, error) {
	return t.loadQuestions(`SELECT id, content_id, text FROM questions WHERE content_id=$1 ORDER BY id`, contentID)
}

// QuestionsForCourse pools the questions of every content in a course.
func (t *Tx) QuestionsForCourse(courseID string) ([]learning.Question, error) {
	return t.loadQuestions(`
		SELECT q.id, q.content_id, q.text
		  FROM questions q
		  JOIN contents c ON c.id = q.content_id
		 WHERE c.course_id=$1
		 ORDER BY c.order_index, q.id`, courseID)
}

func (t *Tx) loadQuestions(query string, args ...any) ([]learning.Question, error) {
	rows, err := t.query(query, args...)
	if err != nil {
		return nil, err
	}
	var out []learning.Question
	for rows.Next() {
		var q learning.Question
		if err := rows.Scan(&q.ID, &q.ContentID, &q.Text); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Options are loaded after the question cursor is closed; a pgx
	// connection cannot start a query while another result set is open.
	for i := range out {
		opts, err := t.optionsFor(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Options = opts
	}
	return out, nil
}

func (t *Tx) optionsFor(questionID string) ([]learning.Option, error) {
	rows, err := t.query(`SELECT id, question_id, text, is_correct FROM options WHERE question_id=$1 ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []learning.Option
	for rows.Next() {
		var o learning.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
