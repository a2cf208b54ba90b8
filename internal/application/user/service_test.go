package user

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

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockKeyStore struct{ mock.Mock }

func (m *mockKeyStore) DeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore, ss *mockSessionStore, ks *mockKeyStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:    us,
		SessionRepo: ss,
		KeyRepo:     ks,
		JWTProvider: jwt,
	})
}

func baseReq() domain.CreateUserRequest {
	grade := 9
	section := "9B"
	return domain.CreateUserRequest{
		Username:    "alice",
		Password:    "password123",
		Email:       "alice@example.com",
		FirstName:   "Alice",
		LastName:    "Smith",
		GradeNumber: &grade,
		SectionName: &section,
	}
}

// --- Register ---

func TestRegister_UsernameConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertExpectations(t)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_NewAccountIsStudent(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	var stored *domain.User
	us.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User)
	}).Return(nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.True(t, u.Enable)
	assert.Equal(t, 0, u.CredibilityScore)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	require.NotNil(t, u.GradeNumber)
	assert.Equal(t, 9, *u.GradeNumber)
}

// --- Update ---

func TestUpdate_InvalidRole(t *testing.T) {
	us := &mockUserStore{}
	bad := "superuser"

	svc := newService(us, nil, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Role: &bad})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RoleChangeToVisitor(t *testing.T) {
	us := &mockUserStore{}
	visitor := domain.RoleVisitor
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldRole: visitor}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: visitor}, nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Role: &visitor})

	require.NoError(t, err)
	assert.Equal(t, visitor, u.Role)
	us.AssertExpectations(t)
}

func TestUpdate_NoFields_ReturnsCurrent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete ---

func TestDelete_CascadesSessionsAndKeys(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	ks := &mockKeyStore{}
	us.On("SoftDelete", mock.Anything, "u1").Return(nil)
	ss.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)
	ks.On("DeleteByUser", mock.Anything, "u1").Return(nil)

	svc := newService(us, ss, ks, nil)
	require.NoError(t, svc.Delete(context.Background(), "u1"))

	us.AssertExpectations(t)
	ss.AssertExpectations(t)
	ks.AssertExpectations(t)
}

// --- ChangePassword ---

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: "$2a$10$invalidhashinvalidhashinvalidhashinvalidhashinvalidha"}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "nope", "newpassword1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
