package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/application/rating"
	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/validate"
	"github.com/schoolyard-api/internal/transport/http/middleware"
)

// RatingHandler handles peer rating endpoints.
type RatingHandler struct {
	svc rating.Service
}

func NewRatingHandler(svc rating.Service) *RatingHandler { return &RatingHandler{svc: svc} }

func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rt, err := h.svc.Rate(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.svc.ListForUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}
