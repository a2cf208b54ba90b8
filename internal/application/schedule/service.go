package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldDayOfWeek = "day_of_week"
	fieldStartsAt  = "starts_at"
	fieldEndsAt    = "ends_at"
	fieldSubject   = "subject"
	fieldTeacherID = "teacher_id"
	fieldRoom      = "room"
)

type Service interface {
	ListByScope(ctx context.Context, requesterID, role, scopeID string) ([]domain.ScheduleSlot, error)
	Create(ctx context.Context, req domain.CreateSlotRequest) (*domain.ScheduleSlot, error)
	Update(ctx context.Context, slotID string, req domain.UpdateSlotRequest) (*domain.ScheduleSlot, error)
	Delete(ctx context.Context, slotID string) error
}

type slotStore interface {
	Put(ctx context.Context, s *domain.ScheduleSlot) error
	Get(ctx context.Context, slotID string) (*domain.ScheduleSlot, error)
	ListByScope(ctx context.Context, scopeID string) ([]domain.ScheduleSlot, error)
	Update(ctx context.Context, slotID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, slotID string) error
}

type accessChecker interface {
	HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error)
}

type service struct {
	repo   slotStore
	access accessChecker
}

func NewService(repo slotStore, access accessChecker) Service {
	return &service{repo: repo, access: access}
}

func (s *service) ListByScope(ctx context.Context, requesterID, role, scopeID string) ([]domain.ScheduleSlot, error) {
	ok, err := s.access.HasAccess(ctx, requesterID, role, scopeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("scope is locked: %w", domain.ErrForbidden)
	}
	return s.repo.ListByScope(ctx, scopeID)
}

func (s *service) Create(ctx context.Context, req domain.CreateSlotRequest) (*domain.ScheduleSlot, error) {
	if err := validateTimes(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	slot := &domain.ScheduleSlot{
		SlotID:    id.New(),
		ScopeID:   req.ScopeID,
		DayOfWeek: req.DayOfWeek,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Subject:   req.Subject,
		TeacherID: req.TeacherID,
		Room:      req.Room,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) Update(ctx context.Context, slotID string, req domain.UpdateSlotRequest) (*domain.ScheduleSlot, error) {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	starts, ends := slot.StartsAt, slot.EndsAt
	if req.StartsAt != nil {
		starts = *req.StartsAt
	}
	if req.EndsAt != nil {
		ends = *req.EndsAt
	}
	if err := validateTimes(starts, ends); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.DayOfWeek != nil {
		updates[fieldDayOfWeek] = *req.DayOfWeek
	}
	if req.StartsAt != nil {
		updates[fieldStartsAt] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates[fieldEndsAt] = *req.EndsAt
	}
	if req.Subject != nil {
		updates[fieldSubject] = *req.Subject
	}
	if req.TeacherID != nil {
		updates[fieldTeacherID] = *req.TeacherID
	}
	if req.Room != nil {
		updates[fieldRoom] = *req.Room
	}
	if len(updates) == 0 {
		return slot, nil
	}
	if err := s.repo.Update(ctx, slotID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, slotID)
}

func (s *service) Delete(ctx context.Context, slotID string) error {
	if _, err := s.repo.Get(ctx, slotID); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, slotID)
}

func validateTimes(starts, ends string) error {
	st, err := time.Parse("15:04", starts)
	if err != nil {
		return fmt.Errorf("starts_at must be HH:MM: %w", domain.ErrBadRequest)
	}
	et, err := time.Parse("15:04", ends)
	if err != nil {
		return fmt.Errorf("ends_at must be HH:MM: %w", domain.ErrBadRequest)
	}
	if !st.Before(et) {
		return fmt.Errorf("starts_at must be before ends_at: %w", domain.ErrBadRequest)
	}
	return nil
}
