package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/application/teacherdir"
	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/validate"
	"github.com/schoolyard-api/internal/transport/http/middleware"
)

// TeacherHandler handles teacher directory and review endpoints.
type TeacherHandler struct {
	svc teacherdir.Service
}

func NewTeacherHandler(svc teacherdir.Service) *TeacherHandler { return &TeacherHandler{svc: svc} }

// TeacherView decorates a profile with its computed average rating.
type TeacherView struct {
	*domain.Teacher
	AverageRating float64 `json:"average_rating"`
}

func toTeacherView(t *domain.Teacher) TeacherView {
	return TeacherView{Teacher: t, AverageRating: t.AverageRating()}
}

func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	views := make([]TeacherView, len(teachers))
	for i := range teachers {
		views[i] = toTeacherView(&teachers[i])
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherView(t))
}

func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeacherView(t))
}

func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherView(t))
}

func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "teacher deleted"})
}

func (h *TeacherHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rev, err := h.svc.AddReview(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *TeacherHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
