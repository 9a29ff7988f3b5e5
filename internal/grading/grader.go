// Package grading grades submitted answers and records mastery.
//
// One call to Grade is one transaction: question counters, content
// counters, the passed flag and the unlock of the next content either all
// move together or none do.
package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/recall"
	"github.com/mind-engage/coeus/internal/store"
)

type Grader struct {
	db    *store.DB
	now   func() time.Time
	retry RetryConfig
}

type Option func(*Grader)

// WithClock replaces time.Now; review dates are computed from it.
func WithClock(now func() time.Time) Option {
	return func(g *Grader) {
		if now != nil {
			g.now = now
		}
	}
}

func WithRetry(cfg RetryConfig) Option { return func(g *Grader) { g.retry = cfg } }

func New(db *store.DB, opts ...Option) *Grader {
	g := &Grader{db: db, now: time.Now, retry: DefaultRetryConfig()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// graded is one validated answer ready to be recorded.
type graded struct {
	answer  learning.Answer
	correct bool
}

// Grade checks answers against scope, updates the learner's progress and
// returns the outcome. A submission that loses a lock race is retried with
// backoff; every other failure is returned as-is with nothing written.
func (g *Grader) Grade(ctx context.Context, learnerID string, scope learning.Scope, answers []learning.Answer) (learning.GradeResult, error) {
	if err := validate(learnerID, scope, answers); err != nil {
		return learning.GradeResult{}, err
	}
	return withRetry(ctx, g.retry, func() (learning.GradeResult, error) {
		var res learning.GradeResult
		err := g.db.WithTx(ctx, store.WriteTx, func(tx *store.Tx) error {
			var err error
			res, err = g.grade(tx, learnerID, scope, answers)
			return err
		})
		return res, err
	})
}

func validate(learnerID string, scope learning.Scope, answers []learning.Answer) error {
	if learnerID == "" {
		return learning.Validationf("learner id required")
	}
	switch scope.Kind {
	case learning.ScopeContent, learning.ScopeLevel:
		if scope.ID == "" {
			return learning.Validationf("%s scope requires an id", scope.Kind)
		}
	case learning.ScopeRecall:
	case learning.ScopeReview:
		if len(answers) != 1 {
			return learning.Validationf("review takes exactly one answer, got %d", len(answers))
		}
	default:
		return learning.Validationf("unknown scope %q", scope.Kind)
	}
	if len(answers) == 0 {
		return learning.Validationf("no answers submitted")
	}
	seen := make(map[string]bool, len(answers))
	for i, a := range answers {
		if a.QuestionID == "" || a.OptionID == "" {
			return learning.Validationf("answer %d: question_id and option_id are required", i)
		}
		if seen[a.QuestionID] {
			return learning.Validationf("question %s answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true
	}
	return nil
}

func (g *Grader) grade(tx *store.Tx, learnerID string, scope learning.Scope, answers []learning.Answer) (learning.GradeResult, error) {
	res := learning.GradeResult{Scope: scope, Total: len(answers)}

	// Everything is checked before the first write.
	var content learning.Content
	var courseID string
	switch scope.Kind {
	case learning.ScopeContent:
		// Held to commit: the unlock below targets OrderIndex+1, so a
		// concurrent reorder or delete must wait for this grade.
		c, err := tx.ShareLockContent(scope.ID)
		if err != nil {
			return res, err
		}
		if !c.Available {
			return res, learning.NotFoundf("content %s", scope.ID)
		}
		content = c
	case learning.ScopeLevel:
		c, err := tx.GetCourse(scope.ID)
		if err != nil {
			return res, err
		}
		courseID = c.ID
	}

	checked := make([]graded, 0, len(answers))
	for _, a := range answers {
		q, err := tx.GetQuestion(a.QuestionID)
		if err != nil {
			return res, err
		}
		if err := g.inScope(tx, scope, content, courseID, q); err != nil {
			return res, err
		}
		opt, found, err := tx.GetOption(a.OptionID)
		if err != nil {
			return res, err
		}
		switch {
		case !found && scope.Kind == learning.ScopeReview:
			return res, learning.NotFoundf("option %s", a.OptionID)
		case !found:
			// Unknown option: recorded as a wrong answer.
			checked = append(checked, graded{answer: a})
		case opt.QuestionID != q.ID:
			return res, learning.Validationf("option %s does not belong to question %s", opt.ID, q.ID)
		default:
			checked = append(checked, graded{answer: a, correct: opt.IsCorrect})
		}
	}

	// Lock order: content row (above), content progress row, then question
	// progress rows by id.
	var cp learning.ContentProgress
	if scope.Kind == learning.ScopeContent {
		var err error
		if cp, err = tx.LockContentProgress(learnerID, content.ID); err != nil {
			return res, err
		}
	}
	sort.Slice(checked, func(i, j int) bool { return checked[i].answer.QuestionID < checked[j].answer.QuestionID })

	now := g.now()
	byQuestion := make(map[string]bool, len(checked))
	for _, c := range checked {
		qp, err := tx.LockQuestionProgress(learnerID, c.answer.QuestionID)
		if err != nil {
			return res, err
		}
		qp.LastAnswerCorrect = c.correct
		if c.correct {
			qp.TimesCorrect++
			res.Correct++
		} else {
			qp.TimesIncorrect++
		}
		next := recall.NextReviewDate(now, c.correct)
		qp.NextReviewDate = &next
		if err := tx.SaveQuestionProgress(qp); err != nil {
			return res, err
		}
		byQuestion[c.answer.QuestionID] = c.correct
	}

	res.Answers = make([]learning.AnswerResult, 0, len(answers))
	for _, a := range answers {
		res.Answers = append(res.Answers, learning.AnswerResult{QuestionID: a.QuestionID, Correct: byQuestion[a.QuestionID]})
	}
	res.Score = score(res.Correct, res.Total)

	switch scope.Kind {
	case learning.ScopeContent:
		var err error
		if res, err = g.settleContent(tx, content, cp, res); err != nil {
			return res, err
		}
	case learning.ScopeLevel:
		res.Passed = UnitPassed(res.Correct, res.Total)
		if res.Passed {
			res.Message = fmt.Sprintf("Passed level %s exam.", scope.ID)
		} else {
			res.Message = fmt.Sprintf("Failed level %s exam. Please review and try again.", scope.ID)
		}
	case learning.ScopeRecall:
		res.Message = "Recall answers recorded. Next reviews scheduled."
	case learning.ScopeReview:
		res.Passed = res.Correct == 1
	}
	return res, g.record(tx, learnerID, now, res)
}

// gradedEvent is the payload of a "<scope>.graded" history event.
type gradedEvent struct {
	Correct    int      `json:"correct"`
	Total      int      `json:"total"`
	Passed     bool     `json:"passed"`
	UnlockedID string   `json:"unlocked_content_id,omitempty"`
	Questions  []string `json:"question_ids"`
}

// record appends the attempt to the learner's history in the same
// transaction as the progress it produced.
func (g *Grader) record(tx *store.Tx, learnerID string, at time.Time, res learning.GradeResult) error {
	ev := gradedEvent{Correct: res.Correct, Total: res.Total, Passed: res.Passed, UnlockedID: res.UnlockedID}
	for _, a := range res.Answers {
		ev.Questions = append(ev.Questions, a.QuestionID)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return tx.AppendEvent(learning.Event{
		LearnerID: learnerID,
		Type:      string(res.Scope.Kind) + ".graded",
		Key:       res.Scope.ID,
		Data:      data,
		CreatedAt: at,
	})
}

// inScope rejects questions that do not belong to what is being graded.
func (g *Grader) inScope(tx *store.Tx, scope learning.Scope, content learning.Content, courseID string, q learning.Question) error {
	switch scope.Kind {
	case learning.ScopeContent:
		if q.ContentID != content.ID {
			return learning.Validationf("question %s is not part of content %s", q.ID, content.ID)
		}
	case learning.ScopeLevel:
		c, err := tx.GetContent(q.ContentID)
		if err != nil {
			return err
		}
		if c.CourseID != courseID {
			return learning.Validationf("question %s is not part of level %s", q.ID, courseID)
		}
	}
	return nil
}

// settleContent adds the attempt to the content counters and applies the
// pass rule. passed never reverts; the unlock is re-applied on every passing
// attempt, which is a no-op once the next content is available.
func (g *Grader) settleContent(tx *store.Tx, content learning.Content, cp learning.ContentProgress, res learning.GradeResult) (learning.GradeResult, error) {
	cp.AnsweredCount += res.Total
	cp.CorrectCount += res.Correct
	res.AnsweredTotal = cp.AnsweredCount
	res.CorrectTotal = cp.CorrectCount

	passNow := ContentPassed(res.Correct, res.Total, cp.AnsweredCount, cp.CorrectCount)
	firstPass := passNow && !cp.Passed
	if passNow {
		cp.Passed = true
	}
	res.Passed = cp.Passed
	if err := tx.SaveContentProgress(cp); err != nil {
		return res, err
	}

	res.Message = "Exam submitted."
	if passNow {
		id, found, err := tx.MakeAvailable(content.CourseID, content.OrderIndex+1)
		if err != nil {
			return res, err
		}
		if found {
			res.UnlockedID = id
		}
		if firstPass {
			log.Printf("grading: learner %s passed content %s (unlocked %q)", cp.LearnerID, content.ID, id)
		}
	}
	return res, nil
}
