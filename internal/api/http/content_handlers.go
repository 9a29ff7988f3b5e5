package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/coeus/internal/auth/middleware"
	"github.com/mind-engage/coeus/internal/learning"
	"github.com/mind-engage/coeus/internal/sequencer"
)

type createCourseRequest struct {
	Title string `json:"title"`
}

type createContentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type createQuestionRequest struct {
	Text    string                  `json:"text"`
	Options []sequencer.OptionInput `json:"options"`
}

type coursesResponse struct {
	Courses []learning.Course `json:"courses"`
}

type contentsResponse struct {
	CourseID string             `json:"course_id"`
	Contents []learning.Content `json:"contents"`
}

// GET /queue/next
func NextQueueItemHandler(q QueueResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := q.Resolve(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// GET /events?after=N&limit=M
func ListEventsHandler(h HistoryLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, err := queryInt(r, "after")
		if err != nil {
			respondError(w, r, err)
			return
		}
		limit, err := queryInt(r, "limit")
		if err != nil {
			respondError(w, r, err)
			return
		}
		page, err := h.List(r.Context(), authmw.SubjectFromContext(r.Context()), int64(after), limit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
	}
}

func ListCoursesHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := c.ListCourses(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, coursesResponse{Courses: list})
	}
}

func CreateCourseHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCourseRequest
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		course, err := c.CreateCourse(r.Context(), req.Title)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, course)
	}
}

// ListContentHandler is the author view: locked content included.
func ListContentHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		list, err := c.List(r.Context(), courseID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, contentsResponse{CourseID: courseID, Contents: list})
	}
}

func CreateContentHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createContentRequest
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		content, err := c.Insert(r.Context(), chi.URLParam(r, "courseID"), req.Title, req.Body)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, content)
	}
}

// GetContentHandler serves available content only.
func GetContentHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := c.GetAvailable(r.Context(), chi.URLParam(r, "contentID"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, content)
	}
}

// PATCH /contents/{contentID}  { "title"?, "body"?, "target_index"? }
func UpdateContentHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sequencer.ContentPatch
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		content, err := c.Update(r.Context(), chi.URLParam(r, "contentID"), req)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, content)
	}
}

func DeleteContentHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Delete(r.Context(), chi.URLParam(r, "contentID")); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateQuestionHandler(c ContentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuestionRequest
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		q, err := c.CreateQuestion(r.Context(), chi.URLParam(r, "contentID"), req.Text, req.Options)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, q)
	}
}
