package rating

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolyard-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldReputation  = "reputation_score"
	fieldRatingCount = "rating_count"
)

type Service interface {
	Rate(ctx context.Context, raterID, role, rateeID string, req domain.RateUserRequest) (*domain.PeerRating, error)
	ListForUser(ctx context.Context, rateeID string) ([]domain.PeerRating, error)
}

type ratingStore interface {
	Put(ctx context.Context, rating *domain.PeerRating) error
	Get(ctx context.Context, rateeID, raterID string) (*domain.PeerRating, error)
	ListByRatee(ctx context.Context, rateeID string) ([]domain.PeerRating, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

type service struct {
	repo     ratingStore
	userRepo userStore
	notifier notifier
}

func NewService(repo ratingStore, userRepo userStore, notifier notifier) Service {
	return &service{repo: repo, userRepo: userRepo, notifier: notifier}
}

// Rate stores or overwrites the rater's rating of another student and
// recomputes the ratee's reputation as the mean of all their ratings.
func (s *service) Rate(ctx context.Context, raterID, role, rateeID string, req domain.RateUserRequest) (*domain.PeerRating, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	if raterID == rateeID {
		return nil, fmt.Errorf("cannot rate yourself: %w", domain.ErrConflict)
	}
	ratee, err := s.userRepo.Get(ctx, rateeID)
	if err != nil {
		return nil, err
	}
	if !ratee.Enable {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	now := time.Now().UTC()
	rating := &domain.PeerRating{
		RateeID:   rateeID,
		RaterID:   raterID,
		Stars:     req.Stars,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, err := s.repo.Get(ctx, rateeID, raterID); err == nil {
		rating.CreatedAt = prev.CreatedAt
	}
	if err := s.repo.Put(ctx, rating); err != nil {
		return nil, err
	}
	if err := s.recomputeReputation(ctx, rateeID); err != nil {
		return nil, err
	}
	if err := s.notifier.Notify(ctx, rateeID, domain.NotifRating, "you received a new peer rating"); err != nil {
		slog.Warn("failed to notify rated user", "ratee_id", rateeID, "err", err)
	}
	return rating, nil
}

func (s *service) ListForUser(ctx context.Context, rateeID string) ([]domain.PeerRating, error) {
	return s.repo.ListByRatee(ctx, rateeID)
}

func (s *service) recomputeReputation(ctx context.Context, rateeID string) error {
	ratings, err := s.repo.ListByRatee(ctx, rateeID)
	if err != nil {
		return err
	}
	if len(ratings) == 0 {
		return s.userRepo.Update(ctx, rateeID, map[string]interface{}{
			fieldReputation:  0.0,
			fieldRatingCount: 0,
		})
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Stars
	}
	mean := float64(sum) / float64(len(ratings))
	return s.userRepo.Update(ctx, rateeID, map[string]interface{}{
		fieldReputation:  mean,
		fieldRatingCount: len(ratings),
	})
}
