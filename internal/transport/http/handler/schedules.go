package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/application/schedule"
	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/validate"
	"github.com/schoolyard-api/internal/transport/http/middleware"
)

// ScheduleHandler handles timetable endpoints.
type ScheduleHandler struct {
	svc schedule.Service
}

func NewScheduleHandler(svc schedule.Service) *ScheduleHandler { return &ScheduleHandler{svc: svc} }

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scopeID := r.URL.Query().Get("scope_id")
	if scopeID == "" {
		writeError(w, http.StatusBadRequest, "scope_id required")
		return
	}
	slots, err := h.svc.ListByScope(r.Context(), claims.UserID, claims.Role, scopeID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "slot deleted"})
}
