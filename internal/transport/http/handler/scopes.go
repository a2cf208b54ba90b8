package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/application/access"
	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/validate"
	"github.com/schoolyard-api/internal/transport/http/middleware"
)

// ScopeHandler handles scope management and digital key endpoints.
type ScopeHandler struct {
	svc access.Service
}

func NewScopeHandler(svc access.Service) *ScopeHandler { return &ScopeHandler{svc: svc} }

func (h *ScopeHandler) List(w http.ResponseWriter, r *http.Request) {
	scopes, err := h.svc.ListScopes(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopes)
}

func (h *ScopeHandler) Get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.GetScope(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *ScopeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.svc.CreateScope(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (h *ScopeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.svc.UpdateScope(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *ScopeHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UnlockScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := h.svc.Unlock(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (h *ScopeHandler) MyKeys(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	keys, err := h.svc.ListKeys(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}
