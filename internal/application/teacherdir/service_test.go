package teacherdir

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolyard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTeacherStore struct{ mock.Mock }

func (m *mockTeacherStore) Put(ctx context.Context, t *domain.Teacher) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTeacherStore) Get(ctx context.Context, teacherID string) (*domain.Teacher, error) {
	args := m.Called(ctx, teacherID)
	if t, _ := args.Get(0).(*domain.Teacher); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTeacherStore) Scan(ctx context.Context) ([]domain.Teacher, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Teacher), args.Error(1)
}
func (m *mockTeacherStore) Update(ctx context.Context, teacherID string, updates map[string]interface{}) error {
	return m.Called(ctx, teacherID, updates).Error(0)
}
func (m *mockTeacherStore) HardDelete(ctx context.Context, teacherID string) error {
	return m.Called(ctx, teacherID).Error(0)
}

type mockReviewStore struct{ mock.Mock }

func (m *mockReviewStore) PutIfAbsent(ctx context.Context, rev *domain.TeacherReview) error {
	return m.Called(ctx, rev).Error(0)
}
func (m *mockReviewStore) ListByTeacher(ctx context.Context, teacherID string) ([]domain.TeacherReview, error) {
	args := m.Called(ctx, teacherID)
	return args.Get(0).([]domain.TeacherReview), args.Error(1)
}
func (m *mockReviewStore) DeleteByTeacher(ctx context.Context, teacherID string) error {
	return m.Called(ctx, teacherID).Error(0)
}

type mockPostStore struct{ mock.Mock }

func (m *mockPostStore) SoftDeleteByAuthor(ctx context.Context, authorID string) error {
	return m.Called(ctx, authorID).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, userID, kind, message string) error {
	return m.Called(ctx, userID, kind, message).Error(0)
}

func newService(ts *mockTeacherStore, rs *mockReviewStore, ps *mockPostStore, nt *mockNotifier) Service {
	return NewService(ServiceDeps{TeacherRepo: ts, ReviewRepo: rs, PostRepo: ps, Notifier: nt})
}

// --- AddReview ---

func TestAddReview_VisitorDenied(t *testing.T) {
	svc := newService(&mockTeacherStore{}, &mockReviewStore{}, nil, nil)
	_, err := svc.AddReview(context.Background(), "v1", domain.RoleVisitor, "t1", domain.CreateReviewRequest{Stars: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAddReview_SelfReviewRejected(t *testing.T) {
	ts := &mockTeacherStore{}
	uid := "u1"
	ts.On("Get", mock.Anything, "t1").Return(&domain.Teacher{TeacherID: "t1", UserID: &uid}, nil)

	svc := newService(ts, &mockReviewStore{}, nil, nil)
	_, err := svc.AddReview(context.Background(), "u1", domain.RoleStudent, "t1", domain.CreateReviewRequest{Stars: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestAddReview_SecondReviewRejected(t *testing.T) {
	ts := &mockTeacherStore{}
	rs := &mockReviewStore{}
	ts.On("Get", mock.Anything, "t1").Return(&domain.Teacher{TeacherID: "t1"}, nil)
	rs.On("PutIfAbsent", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newService(ts, rs, nil, nil)
	_, err := svc.AddReview(context.Background(), "u1", domain.RoleStudent, "t1", domain.CreateReviewRequest{Stars: 3})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReview_FoldsStarsIntoAverage(t *testing.T) {
	ts := &mockTeacherStore{}
	rs := &mockReviewStore{}
	nt := &mockNotifier{}
	uid := "linked"
	ts.On("Get", mock.Anything, "t1").Return(&domain.Teacher{TeacherID: "t1", UserID: &uid, ReviewCount: 2, RatingSum: 7}, nil)
	rs.On("PutIfAbsent", mock.Anything, mock.Anything).Return(nil)
	ts.On("Update", mock.Anything, "t1", map[string]interface{}{
		fieldReviewCount: 3,
		fieldRatingSum:   11,
	}).Return(nil)
	nt.On("Notify", mock.Anything, "linked", domain.NotifReview, mock.Anything).Return(nil)

	svc := newService(ts, rs, nil, nt)
	rev, err := svc.AddReview(context.Background(), "u1", domain.RoleStudent, "t1", domain.CreateReviewRequest{Stars: 4})

	require.NoError(t, err)
	assert.Equal(t, 4, rev.Stars)
	ts.AssertExpectations(t)
	nt.AssertExpectations(t)
}

// --- Delete cascade ---

func TestDelete_CascadesReviewsAndLinkedPosts(t *testing.T) {
	ts := &mockTeacherStore{}
	rs := &mockReviewStore{}
	ps := &mockPostStore{}
	uid := "linked"
	ts.On("Get", mock.Anything, "t1").Return(&domain.Teacher{TeacherID: "t1", UserID: &uid}, nil)
	rs.On("DeleteByTeacher", mock.Anything, "t1").Return(nil)
	ps.On("SoftDeleteByAuthor", mock.Anything, "linked").Return(nil)
	ts.On("HardDelete", mock.Anything, "t1").Return(nil)

	svc := newService(ts, rs, ps, nil)
	require.NoError(t, svc.Delete(context.Background(), "t1"))

	rs.AssertExpectations(t)
	ps.AssertExpectations(t)
	ts.AssertExpectations(t)
}

func TestDelete_UnlinkedProfileSkipsPosts(t *testing.T) {
	ts := &mockTeacherStore{}
	rs := &mockReviewStore{}
	ps := &mockPostStore{}
	ts.On("Get", mock.Anything, "t1").Return(&domain.Teacher{TeacherID: "t1"}, nil)
	rs.On("DeleteByTeacher", mock.Anything, "t1").Return(nil)
	ts.On("HardDelete", mock.Anything, "t1").Return(nil)

	svc := newService(ts, rs, ps, nil)
	require.NoError(t, svc.Delete(context.Background(), "t1"))

	ps.AssertNotCalled(t, "SoftDeleteByAuthor", mock.Anything, mock.Anything)
}

// --- AverageRating ---

func TestAverageRating(t *testing.T) {
	tt := &domain.Teacher{ReviewCount: 4, RatingSum: 14}
	assert.InDelta(t, 3.5, tt.AverageRating(), 0.001)

	empty := &domain.Teacher{}
	assert.Zero(t, empty.AverageRating())
}
