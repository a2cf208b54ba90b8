package event

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldLocation    = "location"
	fieldStartsAt    = "starts_at"
)

type Service interface {
	List(ctx context.Context, requesterID, role, scopeID string) ([]domain.Event, error)
	Get(ctx context.Context, requesterID, role, eventID string) (*domain.Event, error)
	Create(ctx context.Context, creatorID, role string, req domain.CreateEventRequest) (*domain.Event, error)
	Update(ctx context.Context, requesterID, role, eventID string, req domain.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, requesterID, role, eventID string) error
	Reply(ctx context.Context, userID, role, eventID string, req domain.RSVPRequest) (*domain.RSVP, error)
	ListReplies(ctx context.Context, requesterID, role, eventID string) ([]domain.RSVP, error)
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	ListByScope(ctx context.Context, scopeID string) ([]domain.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, eventID string) error
}

type rsvpStore interface {
	Put(ctx context.Context, rsvp *domain.RSVP) error
	Get(ctx context.Context, eventID, userID string) (*domain.RSVP, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.RSVP, error)
}

type accessChecker interface {
	HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error)
}

type service struct {
	repo     eventStore
	rsvpRepo rsvpStore
	access   accessChecker
}

func NewService(repo eventStore, rsvpRepo rsvpStore, access accessChecker) Service {
	return &service{repo: repo, rsvpRepo: rsvpRepo, access: access}
}

func (s *service) List(ctx context.Context, requesterID, role, scopeID string) ([]domain.Event, error) {
	scopeID = domain.ScopeOrGlobal(scopeID)
	if err := s.requireAccess(ctx, requesterID, role, scopeID); err != nil {
		return nil, err
	}
	return s.repo.ListByScope(ctx, scopeID)
}

func (s *service) Get(ctx context.Context, requesterID, role, eventID string) (*domain.Event, error) {
	e, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, requesterID, role, e.ScopeID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Create(ctx context.Context, creatorID, role string, req domain.CreateEventRequest) (*domain.Event, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	scopeID := domain.ScopeOrGlobal(req.ScopeID)
	if err := s.requireAccess(ctx, creatorID, role, scopeID); err != nil {
		return nil, err
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("starts_at must be RFC 3339: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	e := &domain.Event{
		EventID:     id.New(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    startsAt,
		ScopeID:     scopeID,
		CreatedBy:   creatorID,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, requesterID, role, eventID string, req domain.UpdateEventRequest) (*domain.Event, error) {
	e, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.CreatedBy != requesterID && role != domain.RoleAdmin {
		return nil, fmt.Errorf("not the organizer: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("starts_at must be RFC 3339: %w", domain.ErrBadRequest)
		}
		updates[fieldStartsAt] = t
	}
	if len(updates) == 0 {
		return e, nil
	}
	if err := s.repo.Update(ctx, eventID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, eventID)
}

func (s *service) Delete(ctx context.Context, requesterID, role, eventID string) error {
	e, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if e.CreatedBy != requesterID && role != domain.RoleAdmin {
		return fmt.Errorf("not the organizer: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, eventID)
}

// Reply records an attendance status. Replying again overwrites the
// previous status for the same user.
func (s *service) Reply(ctx context.Context, userID, role, eventID string, req domain.RSVPRequest) (*domain.RSVP, error) {
	if role == domain.RoleVisitor {
		return nil, fmt.Errorf("visitors are read-only: %w", domain.ErrForbidden)
	}
	e, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, userID, role, e.ScopeID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rsvp := &domain.RSVP{
		EventID:   eventID,
		UserID:    userID,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, err := s.rsvpRepo.Get(ctx, eventID, userID); err == nil {
		rsvp.CreatedAt = prev.CreatedAt
	}
	if err := s.rsvpRepo.Put(ctx, rsvp); err != nil {
		return nil, err
	}
	return rsvp, nil
}

func (s *service) ListReplies(ctx context.Context, requesterID, role, eventID string) ([]domain.RSVP, error) {
	e, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, requesterID, role, e.ScopeID); err != nil {
		return nil, err
	}
	return s.rsvpRepo.ListByEvent(ctx, eventID)
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
