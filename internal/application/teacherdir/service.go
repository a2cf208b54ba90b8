package teacherdir

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFullName    = "full_name"
	fieldSubject     = "subject"
	fieldBio         = "bio"
	fieldReviewCount = "review_count"
	fieldRatingSum   = "rating_sum"
)

type Service interface {
	List(ctx context.Context) ([]domain.Teacher, error)
	Get(ctx context.Context, teacherID string) (*domain.Teacher, error)
	Create(ctx context.Context, req domain.CreateTeacherRequest) (*domain.Teacher, error)
	Update(ctx context.Context, teacherID string, req domain.UpdateTeacherRequest) (*domain.Teacher, error)
	Delete(ctx context.Context, teacherID string) error
	AddReview(ctx context.Context, reviewerID, role, teacherID string, req domain.CreateReviewRequest) (*domain.TeacherReview, error)
	ListReviews(ctx context.Context, teacherID string) ([]domain.TeacherReview, error)
}

type teacherStore interface {
	Put(ctx context.Context, t *domain.Teacher) error
	Get(ctx context.Context, teacherID string) (*domain.Teacher, error)
	Scan(ctx context.Context) ([]domain.Teacher, error)
	Update(ctx context.Context, teacherID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, teacherID string) error
}

type reviewStore interface {
	PutIfAbsent(ctx context.Context, rev *domain.TeacherReview) error
	ListByTeacher(ctx context.Context, teacherID string) ([]domain.TeacherReview, error)
	DeleteByTeacher(ctx context.Context, teacherID string) error
}

type postStore interface {
	SoftDeleteByAuthor(ctx context.Context, authorID string) error
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

type service struct {
	repo       teacherStore
	reviewRepo reviewStore
	postRepo   postStore
	notifier   notifier
}

type ServiceDeps struct {
	TeacherRepo teacherStore
	ReviewRepo  reviewStore
	PostRepo    postStore
	Notifier    notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.TeacherRepo,
		reviewRepo: deps.ReviewRepo,
		postRepo:   deps.PostRepo,
		notifier:   deps.Notifier,
	}
}

func (s *service) List(ctx context.Context) ([]domain.Teacher, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, teacherID string) (*domain.Teacher, error) {
	return s.repo.Get(ctx, teacherID)
}

func (s *service) Create(ctx context.Context, req domain.CreateTeacherRequest) (*domain.Teacher, error) {
	now := time.Now().UTC()
	t := &domain.Teacher{
		TeacherID: id.New(),
		FullName:  req.FullName,
		Subject:   req.Subject,
		Bio:       req.Bio,
		UserID:    req.UserID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, teacherID string, req domain.UpdateTeacherRequest) (*domain.Teacher, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Subject != nil {
		updates[fieldSubject] = *req.Subject
	}
	if req.Bio != nil {
		updates[fieldBio] = *req.Bio
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, teacherID)
	}
	if err := s.repo.Update(ctx, teacherID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, teacherID)
}

// Delete removes the profile, all its reviews, and, when the profile is
// linked to a user account, the posts authored by that account. The steps
// are not transactional; each failure aborts the remaining ones.
func (s *service) Delete(ctx context.Context, teacherID string) error {
	t, err := s.repo.Get(ctx, teacherID)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.DeleteByTeacher(ctx, teacherID); err != nil {
		return err
	}
	if t.UserID != nil {
		if err := s.postRepo.SoftDeleteByAuthor(ctx, *t.UserID); err != nil {
			return err
		}
	}
	return s.repo.HardDelete(ctx, teacherID)
}

// AddReview stores one review per reviewer per teacher and folds the stars
// into the teacher's running average.
func (s *service) AddReview(ctx context.Context, reviewerID, role, teacherID string, req domain.CreateReviewRequest) (*domain.TeacherReview, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	t, err := s.repo.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if t.UserID != nil && *t.UserID == reviewerID {
		return nil, fmt.Errorf("cannot review yourself: %w", domain.ErrConflict)
	}
	now := time.Now().UTC()
	rev := &domain.TeacherReview{
		TeacherID:  teacherID,
		ReviewerID: reviewerID,
		Stars:      req.Stars,
		Comment:    req.Comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reviewRepo.PutIfAbsent(ctx, rev); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("already reviewed this teacher: %w", domain.ErrConflict)
		}
		return nil, err
	}
	if err := s.repo.Update(ctx, teacherID, map[string]interface{}{
		fieldReviewCount: t.ReviewCount + 1,
		fieldRatingSum:   t.RatingSum + req.Stars,
	}); err != nil {
		return nil, err
	}
	if t.UserID != nil {
		if err := s.notifier.Notify(ctx, *t.UserID, domain.NotifReview, "you received a new review"); err != nil {
			slog.Warn("failed to notify reviewed teacher", "teacher_id", teacherID, "err", err)
		}
	}
	return rev, nil
}

func (s *service) ListReviews(ctx context.Context, teacherID string) ([]domain.TeacherReview, error) {
	if _, err := s.repo.Get(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByTeacher(ctx, teacherID)
}
