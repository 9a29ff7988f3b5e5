package learning

import (
	"encoding/json"
	"time"
)

// Course is a top-level grouping of ordered content (a "level").
type Course struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// Content is a single lesson within a course. OrderIndex is 1-based and
// dense within the course; Available gates visibility to learners.
type Content struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	OrderIndex int    `json:"order_index"`
	Available  bool   `json:"available"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

type Question struct {
	ID        string   `json:"id"`
	ContentID string   `json:"content_id"`
	Text      string   `json:"text"`
	Options   []Option `json:"options,omitempty"`
}

// OptionView is the learner-facing shape of an Option. It has no
// correctness field, so nothing built from it can leak the answer.
type OptionView struct {
	ID   string `json:"option_id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID        string       `json:"question_id"`
	ContentID string       `json:"content_id"`
	Text      string       `json:"text"`
	Options   []OptionView `json:"options"`
}

// View strips answer keys from q.
func (q Question) View() QuestionView {
	v := QuestionView{ID: q.ID, ContentID: q.ContentID, Text: q.Text, Options: make([]OptionView, 0, len(q.Options))}
	for _, o := range q.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Text: o.Text})
	}
	return v
}

// ContentProgress is a learner's mastery of one content unit.
type ContentProgress struct {
	LearnerID     string `json:"learner_id"`
	ContentID     string `json:"content_id"`
	AnsweredCount int    `json:"answered_count"`
	CorrectCount  int    `json:"correct_count"`
	Passed        bool   `json:"passed"`
}

// QuestionProgress is a learner's history with one question.
// NextReviewDate is nil until an answer has been recorded.
type QuestionProgress struct {
	LearnerID         string     `json:"learner_id"`
	QuestionID        string     `json:"question_id"`
	LastAnswerCorrect bool       `json:"last_answer_correct"`
	TimesCorrect      int        `json:"times_correct"`
	TimesIncorrect    int        `json:"times_incorrect"`
	NextReviewDate    *time.Time `json:"next_review_date,omitempty"`
}

// Answer is one submitted (question, chosen option) pair.
type Answer struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

type ScopeKind string

const (
	ScopeContent ScopeKind = "content"
	ScopeLevel   ScopeKind = "level"
	ScopeRecall  ScopeKind = "recall"
	ScopeReview  ScopeKind = "review"
)

// Scope names what a batch of answers is graded against. ID is a content
// id for ScopeContent and a course id for ScopeLevel; it is empty for
// recall and review.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func ContentScope(contentID string) Scope { return Scope{Kind: ScopeContent, ID: contentID} }
func LevelScope(courseID string) Scope    { return Scope{Kind: ScopeLevel, ID: courseID} }
func RecallScope() Scope                  { return Scope{Kind: ScopeRecall} }
func ReviewScope() Scope                  { return Scope{Kind: ScopeReview} }

type AnswerResult struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

// GradeResult is the outcome of one graded submission. The cumulative
// fields are only populated for content-scoped exams.
type GradeResult struct {
	Scope         Scope          `json:"scope"`
	Correct       int            `json:"correct_this_attempt"`
	Total         int            `json:"total"`
	Score         float64        `json:"score"`
	AnsweredTotal int            `json:"total_answered_so_far,omitempty"`
	CorrectTotal  int            `json:"total_correct_so_far,omitempty"`
	Passed        bool           `json:"passed"`
	UnlockedID    string         `json:"unlocked_content_id,omitempty"`
	Message       string         `json:"message,omitempty"`
	Answers       []AnswerResult `json:"answers"`
}

type QueueKind string

const (
	QueueDueRecall    QueueKind = "due_recall"
	QueueFailedReview QueueKind = "failed_review"
	QueueGatedExam    QueueKind = "gated_exam"
	QueueNewContent   QueueKind = "new_content"
	QueueEmpty        QueueKind = "empty"
)

// QueueItem is the next activity for a learner. Questions is set for the
// recall and review kinds, Content for the exam and new-content kinds.
type QueueItem struct {
	Kind      QueueKind      `json:"kind"`
	Questions []QuestionView `json:"questions,omitempty"`
	Content   *Content       `json:"content,omitempty"`
}

// Event is one entry of a learner's progress history. Seq increases
// monotonically across all learners; clients page with "after".
type Event struct {
	Seq       int64           `json:"seq"`
	LearnerID string          `json:"learner_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
