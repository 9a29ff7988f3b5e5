package store

import (
	"database/sql"
	"errors"

	"github.com/mind-engage/coeus/internal/learning"
)

const contentColumns = `id, course_id, title, body, order_index, available`

func scanContent(sc interface{ Scan(...any) error }) (learning.Content, error) {
	var c learning.Content
	err := sc.Scan(&c.ID, &c.CourseID, &c.Title, &c.Body, &c.OrderIndex, &c.Available)
	return c, err
}

func (t *Tx) InsertCourse(c learning.Course) error {
	_, err := t.exec(`INSERT INTO courses (id, title, position) VALUES ($1, $2, $3)`, c.ID, c.Title, c.Position)
	return err
}

// NextCoursePosition returns max(position)+1, or 1 when there are no courses.
func (t *Tx) NextCoursePosition() (int, error) {
	var max sql.NullInt64
	if err := t.queryRow(`SELECT MAX(position) FROM courses`).Scan(&max); err != nil {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}

func (t *Tx) GetCourse(id string) (learning.Course, error) {
	var c learning.Course
	err := t.queryRow(`SELECT id, title, position FROM courses WHERE id=$1`, id).Scan(&c.ID, &c.Title, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return learning.Course{}, learning.NotFoundf("course %s", id)
	}
	return c, err
}

func (t *Tx) ListCourses() ([]learning.Course, error) {
	rows, err := t.query(`SELECT id, title, position FROM courses ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []learning.Course{}
	for rows.Next() {
		var c learning.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LockCourse takes the course row lock that serializes every sequencer
// operation on the course, including inserts into an empty course where
// there are no content rows to lock yet.
func (t *Tx) LockCourse(id string) (learning.Course, error) {
	var c learning.Course
	err := t.queryRow(`SELECT id, title, position FROM courses WHERE id=$1`+t.forUpdate(), id).
		Scan(&c.ID, &c.Title, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return learning.Course{}, learning.NotFoundf("course %s", id)
	}
	return c, err
}

// ListContent returns a course's content in ascending order_index (id
// breaks ties, which only exist mid-reorder).
func (t *Tx) ListContent(courseID string) ([]learning.Content, error) {
	return t.listContent(`SELECT `+contentColumns+` FROM contents WHERE course_id=$1 ORDER BY order_index, id`, courseID)
}

// LockContent is ListContent holding an exclusive lock on every row.
func (t *Tx) LockContent(courseID string) ([]learning.Content, error) {
	return t.listContent(`SELECT `+contentColumns+` FROM contents WHERE course_id=$1 ORDER BY order_index, id`+t.forUpdate(), courseID)
}

// ListAllContent returns every content item ordered by course position and
// then order_index: the global curriculum order.
func (t *Tx) ListAllContent() ([]learning.Content, error) {
	return t.listContent(`
		SELECT c.id, c.course_id, c.title, c.body, c.order_index, c.available
		  FROM contents c
		  JOIN courses k ON k.id = c.course_id
		 ORDER BY k.position, k.id, c.order_index, c.id`)
}

func (t *Tx) listContent(query string, args ...any) ([]learning.Content, error) {
	rows, err := t.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []learning.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *Tx) GetContent(id string) (learning.Content, error) {
	c, err := scanContent(t.queryRow(`SELECT `+contentColumns+` FROM contents WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return learning.Content{}, learning.NotFoundf("content %s", id)
	}
	return c, err
}

// ShareLockContent is GetContent holding a share lock on the row until the
// transaction ends: order_index and course_id cannot change underneath the
// caller, while other share holders (graders of the same content) proceed.
// Postgres rejects it in a ReadTx.
func (t *Tx) ShareLockContent(id string) (learning.Content, error) {
	c, err := scanContent(t.queryRow(`SELECT `+contentColumns+` FROM contents WHERE id=$1`+t.forShare(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return learning.Content{}, learning.NotFoundf("content %s", id)
	}
	return c, err
}

func (t *Tx) InsertContent(c learning.Content) error {
	_, err := t.exec(`INSERT INTO contents (id, course_id, title, body, order_index, available)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.CourseID, c.Title, c.Body, c.OrderIndex, c.Available)
	return err
}

func (t *Tx) UpdateContentText(id, title, body string) error {
	res, err := t.exec(`UPDATE contents SET title=$1, body=$2 WHERE id=$3`, title, body, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "content "+id)
}

func (t *Tx) DeleteContent(id string) error {
	res, err := t.exec(`DELETE FROM contents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "content "+id)
}

// SetOrderIndexes writes new order_index values for the given content ids
// of one course. Rows are parked at negative indexes first so the
// (course_id, order_index) unique constraint never sees a transient
// duplicate.
func (t *Tx) SetOrderIndexes(courseID string, next map[string]int) error {
	if len(next) == 0 {
		return nil
	}
	for id, idx := range next {
		if _, err := t.exec(`UPDATE contents SET order_index=$1 WHERE id=$2 AND course_id=$3`, -idx, id, courseID); err != nil {
			return err
		}
	}
	_, err := t.exec(`UPDATE contents SET order_index = -order_index WHERE course_id=$1 AND order_index < 0`, courseID)
	return err
}

// MakeAvailable flips available to true on the content at orderIndex in
// the course. found is false when no such content exists.
func (t *Tx) MakeAvailable(courseID string, orderIndex int) (id string, found bool, err error) {
	err = t.queryRow(`SELECT id FROM contents WHERE course_id=$1 AND order_index=$2`+t.forUpdate(), courseID, orderIndex).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if _, err := t.exec(`UPDATE contents SET available=$1 WHERE id=$2`, true, id); err != nil {
		return "", false, err
	}
	return id, true, nil
}

func mustAffect(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return learning.NotFoundf("%s", what)
	}
	return nil
}
