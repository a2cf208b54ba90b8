package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldBody        = "body"
	fieldCredibility = "credibility_score"
	fieldFlagged     = "flagged"
)

type Service interface {
	List(ctx context.Context, requesterID, role, scopeID string) ([]domain.Post, error)
	Get(ctx context.Context, requesterID, role, postID string) (*domain.Post, error)
	Create(ctx context.Context, authorID, role string, req domain.CreatePostRequest) (*domain.Post, error)
	Update(ctx context.Context, requesterID, role, postID string, req domain.UpdatePostRequest) (*domain.Post, error)
	Delete(ctx context.Context, requesterID, role, postID string) error
	Moderate(ctx context.Context, postID string, req domain.ModeratePostRequest) (*domain.Post, error)
	ListComments(ctx context.Context, requesterID, role, postID string) ([]domain.Comment, error)
	AddComment(ctx context.Context, authorID, role, postID string, req domain.CreateCommentRequest) (*domain.Comment, error)
	DeleteComment(ctx context.Context, requesterID, role, commentID string) error
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	ListByScope(ctx context.Context, scopeID string) ([]domain.Post, error)
	Update(ctx context.Context, postID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, postID string) error
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	Get(ctx context.Context, commentID string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
	SoftDelete(ctx context.Context, commentID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type accessChecker interface {
	HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error)
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

type service struct {
	repo        postStore
	commentRepo commentStore
	userRepo    userStore
	access      accessChecker
	notifier    notifier
}

type ServiceDeps struct {
	PostRepo    postStore
	CommentRepo commentStore
	UserRepo    userStore
	Access      accessChecker
	Notifier    notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.PostRepo,
		commentRepo: deps.CommentRepo,
		userRepo:    deps.UserRepo,
		access:      deps.Access,
		notifier:    deps.Notifier,
	}
}

func (s *service) List(ctx context.Context, requesterID, role, scopeID string) ([]domain.Post, error) {
	scopeID = domain.ScopeOrGlobal(scopeID)
	if err := s.requireAccess(ctx, requesterID, role, scopeID); err != nil {
		return nil, err
	}
	return s.repo.ListByScope(ctx, scopeID)
}

func (s *service) Get(ctx context.Context, requesterID, role, postID string) (*domain.Post, error) {
	p, err := s.getEnabled(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, requesterID, role, p.ScopeID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, authorID, role string, req domain.CreatePostRequest) (*domain.Post, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	scopeID := domain.ScopeOrGlobal(req.ScopeID)
	if err := s.requireAccess(ctx, authorID, role, scopeID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &domain.Post{
		PostID:    id.New(),
		AuthorID:  authorID,
		ScopeID:   scopeID,
		Title:     req.Title,
		Body:      req.Body,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, requesterID, role, postID string, req domain.UpdatePostRequest) (*domain.Post, error) {
	p, err := s.getEnabled(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != requesterID && role != domain.RoleAdmin {
		return nil, fmt.Errorf("not the author: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Body != nil {
		updates[fieldBody] = *req.Body
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.repo.Update(ctx, postID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, postID)
}

func (s *service) Delete(ctx context.Context, requesterID, role, postID string) error {
	p, err := s.getEnabled(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID && role != domain.RoleAdmin {
		return fmt.Errorf("not the author: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, postID)
}

// Moderate applies an admin action to a post and moves the author's
// credibility score accordingly. The author is notified on every action.
func (s *service) Moderate(ctx context.Context, postID string, req domain.ModeratePostRequest) (*domain.Post, error) {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	switch req.Action {
	case domain.ModerationApprove:
		if err := s.repo.Update(ctx, postID, map[string]interface{}{
			fieldCredibility: p.CredibilityScore + 1,
			fieldFlagged:     false,
		}); err != nil {
			return nil, err
		}
		s.adjustAuthorCredibility(ctx, p.AuthorID, 1)
		s.notifyAuthor(ctx, p.AuthorID, "your post was approved: "+p.Title)
	case domain.ModerationFlag:
		if err := s.repo.Update(ctx, postID, map[string]interface{}{
			fieldCredibility: p.CredibilityScore - 1,
			fieldFlagged:     true,
		}); err != nil {
			return nil, err
		}
		s.adjustAuthorCredibility(ctx, p.AuthorID, -1)
		s.notifyAuthor(ctx, p.AuthorID, "your post was flagged: "+p.Title)
	case domain.ModerationRemove:
		if err := s.repo.SoftDelete(ctx, postID); err != nil {
			return nil, err
		}
		s.adjustAuthorCredibility(ctx, p.AuthorID, -2)
		s.notifyAuthor(ctx, p.AuthorID, "your post was removed: "+p.Title)
	default:
		return nil, fmt.Errorf("unknown moderation action: %w", domain.ErrBadRequest)
	}
	return s.repo.Get(ctx, postID)
}

func (s *service) ListComments(ctx context.Context, requesterID, role, postID string) ([]domain.Comment, error) {
	p, err := s.getEnabled(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, requesterID, role, p.ScopeID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *service) AddComment(ctx context.Context, authorID, role, postID string, req domain.CreateCommentRequest) (*domain.Comment, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	p, err := s.getEnabled(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, authorID, role, p.ScopeID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Comment{
		CommentID: id.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Body:      req.Body,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteComment(ctx context.Context, requesterID, role, commentID string) error {
	c, err := s.commentRepo.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != requesterID && role != domain.RoleAdmin {
		return fmt.Errorf("not the author: %w", domain.ErrForbidden)
	}
	return s.commentRepo.SoftDelete(ctx, commentID)
}

// getEnabled loads a post and hides soft-deleted ones. Moderation reads the
// repo directly because it must still see removed posts.
func (s *service) getEnabled(ctx context.Context, postID string) (*domain.Post, error) {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.Enable {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return p, nil
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

// Credibility and notification updates ride alongside the moderation action
// and must not fail it.
func (s *service) adjustAuthorCredibility(ctx context.Context, authorID string, delta int) {
	u, err := s.userRepo.Get(ctx, authorID)
	if err != nil {
		slog.Warn("failed to load author for credibility update", "author_id", authorID, "err", err)
		return
	}
	if err := s.userRepo.Update(ctx, authorID, map[string]interface{}{fieldCredibility: u.CredibilityScore + delta}); err != nil {
		slog.Warn("failed to update author credibility", "author_id", authorID, "err", err)
	}
}

func (s *service) notifyAuthor(ctx context.Context, authorID, message string) {
	if err := s.notifier.Notify(ctx, authorID, domain.NotifModeration, message); err != nil {
		slog.Warn("failed to notify author", "author_id", authorID, "err", err)
	}
}
