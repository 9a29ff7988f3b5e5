package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/coeus/internal/auth/middleware"
	"github.com/mind-engage/coeus/internal/learning"
)

type submitRequest struct {
	Answers []learning.Answer `json:"answers"`
}

type reviewRequest struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

type questionsResponse struct {
	Questions []learning.QuestionView `json:"questions"`
}

type reviewResponse struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

// GET /exams/{contentID}?count=N
func StartExamHandler(b ExamBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := parseCount(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		p, err := b.StartExam(r.Context(), chi.URLParam(r, "contentID"), count)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// GET /unit-exams/{levelID}?count=N
func StartUnitExamHandler(b ExamBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := parseCount(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		p, err := b.StartUnitExam(r.Context(), chi.URLParam(r, "levelID"), count)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func SubmitExamHandler(g Grader) http.HandlerFunc {
	return submitHandler(g, func(r *http.Request) learning.Scope {
		return learning.ContentScope(chi.URLParam(r, "contentID"))
	})
}

func SubmitUnitExamHandler(g Grader) http.HandlerFunc {
	return submitHandler(g, func(r *http.Request) learning.Scope {
		return learning.LevelScope(chi.URLParam(r, "levelID"))
	})
}

// POST /recall/submit  { "answers": [...] }
func SubmitRecallHandler(g Grader) http.HandlerFunc {
	return submitHandler(g, func(*http.Request) learning.Scope { return learning.RecallScope() })
}

func submitHandler(g Grader, scopeOf func(*http.Request) learning.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		res, err := g.Grade(r.Context(), authmw.SubjectFromContext(r.Context()), scopeOf(r), req.Answers)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

func DueRecallHandler(rs RecallSets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := rs.Due(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, questionsResponse{Questions: nonNil(qs)})
	}
}

func FailedReviewHandler(rs RecallSets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := rs.Failed(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, questionsResponse{Questions: nonNil(qs)})
	}
}

// POST /review  { "question_id": "...", "option_id": "..." }
func SubmitReviewHandler(g Grader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		answers := []learning.Answer{{QuestionID: req.QuestionID, OptionID: req.OptionID}}
		res, err := g.Grade(r.Context(), authmw.SubjectFromContext(r.Context()), learning.ReviewScope(), answers)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, reviewResponse{QuestionID: req.QuestionID, Correct: res.Correct == 1})
	}
}

func nonNil(qs []learning.QuestionView) []learning.QuestionView {
	if qs == nil {
		return []learning.QuestionView{}
	}
	return qs
}
