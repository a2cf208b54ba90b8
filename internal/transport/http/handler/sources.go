package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/application/source"
	"github.com/schoolyard-api/internal/transport/http/middleware"
)

// 25 MiB cap on study-source uploads.
const maxUploadSize = 25 << 20

// SourceHandler handles study-source file endpoints.
type SourceHandler struct {
	svc source.Service
}

func NewSourceHandler(svc source.Service) *SourceHandler { return &SourceHandler{svc: svc} }

func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sources, err := h.svc.List(r.Context(), claims.UserID, claims.Role, r.URL.Query().Get("scope_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// Upload accepts a multipart form with a "file" part plus "title", "subject"
// and optional "scope_id" fields.
func (h *SourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part required")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	src, err := h.svc.Upload(r.Context(), claims.UserID, claims.Role, source.UploadInput{
		Title:       title,
		Subject:     r.FormValue("subject"),
		ScopeID:     r.FormValue("scope_id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (h *SourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	src, body, err := h.svc.Download(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", src.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", src.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *SourceHandler) PresignURL(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	url, err := h.svc.PresignURL(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "source deleted"})
}
