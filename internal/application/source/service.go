package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

type UploadInput struct {
	Title       string
	Subject     string
	ScopeID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service interface {
	Upload(ctx context.Context, uploaderID, role string, in UploadInput) (*domain.StudySource, error)
	List(ctx context.Context, requesterID, role, scopeID string) ([]domain.StudySource, error)
	Download(ctx context.Context, requesterID, role, sourceID string) (*domain.StudySource, io.ReadCloser, error)
	PresignURL(ctx context.Context, requesterID, role, sourceID string) (string, error)
	Delete(ctx context.Context, requesterID, role, sourceID string) error
}

type sourceStore interface {
	Put(ctx context.Context, s *domain.StudySource) error
	Get(ctx context.Context, sourceID string) (*domain.StudySource, error)
	ListByScope(ctx context.Context, scopeID string) ([]domain.StudySource, error)
	SoftDelete(ctx context.Context, sourceID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type accessChecker interface {
	HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error)
}

type service struct {
	repo    sourceStore
	objects objectStore
	access  accessChecker
}

func NewService(repo sourceStore, objects objectStore, access accessChecker) Service {
	return &service{repo: repo, objects: objects, access: access}
}

// Upload streams the file to object storage while hashing it, then stores
// the metadata record. The caller owns the resulting source.
func (s *service) Upload(ctx context.Context, uploaderID, role string, in UploadInput) (*domain.StudySource, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	scopeID := domain.ScopeOrGlobal(in.ScopeID)
	if err := s.requireAccess(ctx, uploaderID, role, scopeID); err != nil {
		return nil, err
	}
	name := sanitizeFilename(in.Filename)
	if name == "" {
		return nil, fmt.Errorf("filename required: %w", domain.ErrBadRequest)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	sourceID := id.New()
	key := sourceID + "/" + name
	hasher := sha256.New()
	url, err := s.objects.Upload(ctx, key, io.TeeReader(in.Body, hasher), contentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	src := &domain.StudySource{
		SourceID:    sourceID,
		Title:       in.Title,
		Subject:     in.Subject,
		ScopeID:     scopeID,
		Object:      key,
		Size:        in.Size,
		ContentType: contentType,
		Name:        name,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		URL:         &url,
		UploadedBy:  uploaderID,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, src); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to clean up orphaned object", "key", key, "err", delErr)
		}
		return nil, err
	}
	return src, nil
}

func (s *service) List(ctx context.Context, requesterID, role, scopeID string) ([]domain.StudySource, error) {
	scopeID = domain.ScopeOrGlobal(scopeID)
	if err := s.requireAccess(ctx, requesterID, role, scopeID); err != nil {
		return nil, err
	}
	return s.repo.ListByScope(ctx, scopeID)
}

func (s *service) Download(ctx context.Context, requesterID, role, sourceID string) (*domain.StudySource, io.ReadCloser, error) {
	src, err := s.repo.Get(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireAccess(ctx, requesterID, role, src.ScopeID); err != nil {
		return nil, nil, err
	}
	body, err := s.objects.Download(ctx, src.Object)
	if err != nil {
		return nil, nil, err
	}
	return src, body, nil
}

func (s *service) PresignURL(ctx context.Context, requesterID, role, sourceID string) (string, error) {
	src, err := s.repo.Get(ctx, sourceID)
	if err != nil {
		return "", err
	}
	if err := s.requireAccess(ctx, requesterID, role, src.ScopeID); err != nil {
		return "", err
	}
	return s.objects.PresignedURL(ctx, src.Object, presignTTL)
}

func (s *service) Delete(ctx context.Context, requesterID, role, sourceID string) error {
	src, err := s.repo.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	if src.UploadedBy != requesterID && role != domain.RoleAdmin {
		return fmt.Errorf("not the uploader: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, src.Object); err != nil {
		slog.Warn("failed to delete object from storage", "key", src.Object, "err", err)
	}
	return s.repo.SoftDelete(ctx, sourceID)
}

func (s *service) requireAccess(ctx context.Context, userID, role, scopeID string) error {
	ok, err := s.access.HasAccess(ctx, userID, role, scopeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("scope is locked: %w", domain.ErrForbidden)
	}
	return nil
}

// sanitizeFilename strips any path components and replaces characters that
// are unsafe in object keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
