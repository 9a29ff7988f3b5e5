// Package http exposes the learning engine over JSON/HTTP. Every route
// expects JWTMiddleware to have run: the learner is the token subject and
// is passed explicitly to each service call.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/coeus/internal/exam"
	"github.com/mind-engage/coeus/internal/history"
	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/rbac"
	"github.com/mind-engage/coeus/internal/sequencer"
)

type QueueResolver interface {
	Resolve(ctx context.Context, learnerID string) (learning.QueueItem, error)
}

type ContentService interface {
	CreateCourse(ctx context.Context, title string) (learning.Course, error)
	ListCourses(ctx context.Context) ([]learning.Course, error)
	List(ctx context.Context, courseID string) ([]learning.Content, error)
	Insert(ctx context.Context, courseID, title, body string) (learning.Content, error)
	Update(ctx context.Context, contentID string, p sequencer.ContentPatch) (learning.Content, error)
	Delete(ctx context.Context, contentID string) error
	GetAvailable(ctx context.Context, contentID string) (learning.Content, error)
	CreateQuestion(ctx context.Context, contentID, text string, options []sequencer.OptionInput) (learning.Question, error)
}

type ExamBuilder interface {
	StartExam(ctx context.Context, contentID string, count int) (exam.Paper, error)
	StartUnitExam(ctx context.Context, levelID string, count int) (exam.Paper, error)
}

type Grader interface {
	Grade(ctx context.Context, learnerID string, scope learning.Scope, answers []learning.Answer) (learning.GradeResult, error)
}

type HistoryLog interface {
	List(ctx context.Context, learnerID string, after int64, limit int) (history.Page, error)
}

type RecallSets interface {
	Due(ctx context.Context, learnerID string) ([]learning.QuestionView, error)
	Failed(ctx context.Context, learnerID string) ([]learning.QuestionView, error)
}

// Server holds the services behind the routes.
type Server struct {
	Queue   QueueResolver
	Content ContentService
	Exams   ExamBuilder
	Grader  Grader
	Recall  RecallSets
	History HistoryLog
}

func Routes(s *Server) http.Handler {
	r := chi.NewRouter()

	r.With(rbac.Require(rbac.PermQueueView)).Get("/queue/next", NextQueueItemHandler(s.Queue))
	r.With(rbac.Require(rbac.PermQueueView)).Get("/events", ListEventsHandler(s.History))

	// Authoring
	r.With(rbac.Require(rbac.PermContentView)).Get("/courses", ListCoursesHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentCreate)).Post("/courses", CreateCourseHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentCreate)).Get("/courses/{courseID}/contents", ListContentHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentCreate)).Post("/courses/{courseID}/contents", CreateContentHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentView)).Get("/contents/{contentID}", GetContentHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentUpdate)).Patch("/contents/{contentID}", UpdateContentHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentUpdate)).Delete("/contents/{contentID}", DeleteContentHandler(s.Content))
	r.With(rbac.Require(rbac.PermContentCreate)).Post("/contents/{contentID}/questions", CreateQuestionHandler(s.Content))

	// Exams
	r.With(rbac.Require(rbac.PermExamTake)).Get("/exams/{contentID}", StartExamHandler(s.Exams))
	r.With(rbac.Require(rbac.PermExamTake)).Post("/exams/{contentID}/submit", SubmitExamHandler(s.Grader))
	r.With(rbac.Require(rbac.PermExamTake)).Get("/unit-exams/{levelID}", StartUnitExamHandler(s.Exams))
	r.With(rbac.Require(rbac.PermExamTake)).Post("/unit-exams/{levelID}/submit", SubmitUnitExamHandler(s.Grader))

	// Recall & review
	r.With(rbac.Require(rbac.PermExamTake)).Get("/recall", DueRecallHandler(s.Recall))
	r.With(rbac.Require(rbac.PermExamTake)).Post("/recall/submit", SubmitRecallHandler(s.Grader))
	r.With(rbac.Require(rbac.PermExamTake)).Get("/review", FailedReviewHandler(s.Recall))
	r.With(rbac.Require(rbac.PermExamTake)).Post("/review", SubmitReviewHandler(s.Grader))

	return r
}
