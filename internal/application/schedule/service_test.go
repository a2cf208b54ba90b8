package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolyard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSlotStore struct{ mock.Mock }

func (m *mockSlotStore) Put(ctx context.Context, s *domain.ScheduleSlot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSlotStore) Get(ctx context.Context, slotID string) (*domain.ScheduleSlot, error) {
	args := m.Called(ctx, slotID)
	if s, _ := args.Get(0).(*domain.ScheduleSlot); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSlotStore) ListByScope(ctx context.Context, scopeID string) ([]domain.ScheduleSlot, error) {
	args := m.Called(ctx, scopeID)
	return args.Get(0).([]domain.ScheduleSlot), args.Error(1)
}

func (m *mockSlotStore) Update(ctx context.Context, slotID string, updates map[string]interface{}) error {
	return m.Called(ctx, slotID, updates).Error(0)
}

func (m *mockSlotStore) HardDelete(ctx context.Context, slotID string) error {
	return m.Called(ctx, slotID).Error(0)
}

type mockAccess struct{ mock.Mock }

func (m *mockAccess) HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error) {
	args := m.Called(ctx, userID, role, scopeID)
	return args.Bool(0), args.Error(1)
}

func validSlotRequest() domain.CreateSlotRequest {
	return domain.CreateSlotRequest{
		ScopeID:   "sc1",
		DayOfWeek: 1,
		StartsAt:  "08:00",
		EndsAt:    "08:45",
		Subject:   "Mathematics",
		Room:      "201",
	}
}

func TestListByScope_LockedScope(t *testing.T) {
	repo := &mockSlotStore{}
	access := &mockAccess{}
	access.On("HasAccess", mock.Anything, "u1", domain.RoleStudent, "sc1").Return(false, nil)

	svc := NewService(repo, access)
	_, err := svc.ListByScope(context.Background(), "u1", domain.RoleStudent, "sc1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "ListByScope", mock.Anything, mock.Anything)
}

func TestListByScope_WithKey(t *testing.T) {
	repo := &mockSlotStore{}
	access := &mockAccess{}
	access.On("HasAccess", mock.Anything, "u1", domain.RoleStudent, "sc1").Return(true, nil)
	repo.On("ListByScope", mock.Anything, "sc1").Return([]domain.ScheduleSlot{{SlotID: "sl1", Subject: "Mathematics"}}, nil)

	svc := NewService(repo, access)
	slots, err := svc.ListByScope(context.Background(), "u1", domain.RoleStudent, "sc1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Mathematics", slots[0].Subject)
}

func TestCreate_HappyPath(t *testing.T) {
	repo := &mockSlotStore{}
	repo.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.ScheduleSlot) bool {
		return s.SlotID != "" && s.ScopeID == "sc1" && s.DayOfWeek == 1
	})).Return(nil)

	svc := NewService(repo, &mockAccess{})
	slot, err := svc.Create(context.Background(), validSlotRequest())
	require.NoError(t, err)
	assert.Equal(t, "08:00", slot.StartsAt)
	repo.AssertExpectations(t)
}

func TestCreate_StartAfterEnd(t *testing.T) {
	repo := &mockSlotStore{}
	svc := NewService(repo, &mockAccess{})

	req := validSlotRequest()
	req.StartsAt = "09:00"
	req.EndsAt = "08:45"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_MalformedTime(t *testing.T) {
	svc := NewService(&mockSlotStore{}, &mockAccess{})

	req := validSlotRequest()
	req.StartsAt = "8am"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_ValidatesMergedTimes(t *testing.T) {
	repo := &mockSlotStore{}
	repo.On("Get", mock.Anything, "sl1").Return(&domain.ScheduleSlot{SlotID: "sl1", StartsAt: "08:00", EndsAt: "08:45"}, nil)

	svc := NewService(repo, &mockAccess{})
	ends := "07:30" // before the existing start
	_, err := svc.Update(context.Background(), "sl1", domain.UpdateSlotRequest{EndsAt: &ends})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NoFields_ReturnsCurrent(t *testing.T) {
	repo := &mockSlotStore{}
	slot := &domain.ScheduleSlot{SlotID: "sl1", StartsAt: "08:00", EndsAt: "08:45"}
	repo.On("Get", mock.Anything, "sl1").Return(slot, nil)

	svc := NewService(repo, &mockAccess{})
	got, err := svc.Update(context.Background(), "sl1", domain.UpdateSlotRequest{})
	require.NoError(t, err)
	assert.Same(t, slot, got)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockSlotStore{}
	repo.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(repo, &mockAccess{})
	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	repo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}
