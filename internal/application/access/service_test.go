package access

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolyard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockScopeStore struct{ mock.Mock }

func (m *mockScopeStore) Put(ctx context.Context, s *domain.Scope) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockScopeStore) Get(ctx context.Context, scopeID string) (*domain.Scope, error) {
	args := m.Called(ctx, scopeID)
	if s, _ := args.Get(0).(*domain.Scope); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockScopeStore) GetGlobal(ctx context.Context) (*domain.Scope, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).(*domain.Scope); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockScopeStore) Scan(ctx context.Context) ([]domain.Scope, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Scope), args.Error(1)
}
func (m *mockScopeStore) Update(ctx context.Context, scopeID string, updates map[string]interface{}) error {
	return m.Called(ctx, scopeID, updates).Error(0)
}

type mockKeyStore struct{ mock.Mock }

func (m *mockKeyStore) PutIfAbsent(ctx context.Context, k *domain.DigitalKey) error {
	return m.Called(ctx, k).Error(0)
}
func (m *mockKeyStore) Get(ctx context.Context, userID, scopeID string) (*domain.DigitalKey, error) {
	args := m.Called(ctx, userID, scopeID)
	if k, _ := args.Get(0).(*domain.DigitalKey); k != nil {
		return k, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockKeyStore) ListByUser(ctx context.Context, userID string) ([]domain.DigitalKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.DigitalKey), args.Error(1)
}

// --- helpers ---

func hashCode(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func gradeScope(t *testing.T, id, code string) *domain.Scope {
	t.Helper()
	g := 9
	return &domain.Scope{ScopeID: id, Name: "Grade 9", Type: domain.ScopeGrade, GradeNumber: &g, AccessCodeHash: hashCode(t, code)}
}

// --- Unlock ---

func TestUnlock_MintsKey(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "open-sesame"), nil)
	ks.On("PutIfAbsent", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(ss, ks)
	key, err := svc.Unlock(context.Background(), "u1", "sc1", "open-sesame")

	require.NoError(t, err)
	assert.Equal(t, "u1", key.UserID)
	assert.Equal(t, "sc1", key.ScopeID)
	assert.False(t, key.UnlockedAt.IsZero())
	ks.AssertExpectations(t)
}

func TestUnlock_WrongCode(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "open-sesame"), nil)

	svc := NewService(ss, ks)
	_, err := svc.Unlock(context.Background(), "u1", "sc1", "wrong")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ks.AssertNotCalled(t, "PutIfAbsent", mock.Anything, mock.Anything)
}

func TestUnlock_AlreadyUnlocked_ReturnsExistingKey(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	existing := &domain.DigitalKey{UserID: "u1", ScopeID: "sc1"}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "open-sesame"), nil)
	ks.On("PutIfAbsent", mock.Anything, mock.Anything).Return(domain.ErrConflict)
	ks.On("Get", mock.Anything, "u1", "sc1").Return(existing, nil)

	svc := NewService(ss, ks)
	key, err := svc.Unlock(context.Background(), "u1", "sc1", "open-sesame")

	require.NoError(t, err)
	assert.Same(t, existing, key)
}

func TestUnlock_GlobalScope(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc-g").Return(&domain.Scope{ScopeID: "sc-g", Type: domain.ScopeGlobal}, nil)

	svc := NewService(ss, ks)
	_, err := svc.Unlock(context.Background(), "u1", "sc-g", "anything")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUnlock_ScopeNotFound(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := NewService(ss, ks)
	_, err := svc.Unlock(context.Background(), "u1", "nope", "code")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- HasAccess ---

func TestHasAccess_EmptyScopeIsOpen(t *testing.T) {
	svc := NewService(&mockScopeStore{}, &mockKeyStore{})
	ok, err := svc.HasAccess(context.Background(), "u1", domain.RoleStudent, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_GlobalScopeIsOpen(t *testing.T) {
	ss := &mockScopeStore{}
	ss.On("Get", mock.Anything, "sc-g").Return(&domain.Scope{ScopeID: "sc-g", Type: domain.ScopeGlobal}, nil)

	svc := NewService(ss, &mockKeyStore{})
	ok, err := svc.HasAccess(context.Background(), "u1", domain.RoleVisitor, "sc-g")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_AdminBypassesKeys(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "x"), nil)

	svc := NewService(ss, ks)
	ok, err := svc.HasAccess(context.Background(), "admin1", domain.RoleAdmin, "sc1")
	require.NoError(t, err)
	assert.True(t, ok)
	ks.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestHasAccess_StudentWithKey(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "x"), nil)
	ks.On("Get", mock.Anything, "u1", "sc1").Return(&domain.DigitalKey{UserID: "u1", ScopeID: "sc1"}, nil)

	svc := NewService(ss, ks)
	ok, err := svc.HasAccess(context.Background(), "u1", domain.RoleStudent, "sc1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_StudentWithoutKey(t *testing.T) {
	ss := &mockScopeStore{}
	ks := &mockKeyStore{}
	ss.On("Get", mock.Anything, "sc1").Return(gradeScope(t, "sc1", "x"), nil)
	ks.On("Get", mock.Anything, "u1", "sc1").Return(nil, domain.ErrNotFound)

	svc := NewService(ss, ks)
	ok, err := svc.HasAccess(context.Background(), "u1", domain.RoleStudent, "sc1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// --- CreateScope ---

func TestCreateScope_SecondGlobalRejected(t *testing.T) {
	ss := &mockScopeStore{}
	ss.On("GetGlobal", mock.Anything).Return(&domain.Scope{ScopeID: "sc-g", Type: domain.ScopeGlobal}, nil)

	svc := NewService(ss, &mockKeyStore{})
	_, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{Name: "Everyone", Type: domain.ScopeGlobal})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreateScope_DuplicateGradeRejected(t *testing.T) {
	g := 9
	ss := &mockScopeStore{}
	ss.On("Scan", mock.Anything).Return([]domain.Scope{*gradeScope(t, "sc9", "x")}, nil)

	svc := NewService(ss, &mockKeyStore{})
	_, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{Name: "Grade 9 again", Type: domain.ScopeGrade, GradeNumber: &g, AccessCode: "dup"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ss.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreateScope_DuplicateSectionRejected(t *testing.T) {
	name := "5-A"
	ss := &mockScopeStore{}
	ss.On("Scan", mock.Anything).Return([]domain.Scope{
		{ScopeID: "sc-5a", Name: "Section 5-A", Type: domain.ScopeSection, SectionName: &name},
	}, nil)

	svc := NewService(ss, &mockKeyStore{})
	_, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{Name: "Another 5-A", Type: domain.ScopeSection, SectionName: &name, AccessCode: "dup"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ss.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreateScope_GlobalGetsFixedID(t *testing.T) {
	ss := &mockScopeStore{}
	ss.On("GetGlobal", mock.Anything).Return(nil, domain.ErrNotFound)
	var stored *domain.Scope
	ss.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Scope)
	}).Return(nil)

	svc := NewService(ss, &mockKeyStore{})
	sc, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{Name: "Everyone", Type: domain.ScopeGlobal})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.GlobalScopeID, sc.ScopeID)
	assert.Equal(t, domain.GlobalScopeID, stored.ScopeID)
}

func TestCreateScope_LockedScopeNeedsCode(t *testing.T) {
	g := 7
	ss := &mockScopeStore{}
	ss.On("Scan", mock.Anything).Return([]domain.Scope{}, nil)

	svc := NewService(ss, &mockKeyStore{})
	_, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{Name: "Grade 7", Type: domain.ScopeGrade, GradeNumber: &g})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreateScope_HashesAccessCode(t *testing.T) {
	g := 7
	ss := &mockScopeStore{}
	ss.On("Scan", mock.Anything).Return([]domain.Scope{}, nil)
	var stored *domain.Scope
	ss.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Scope)
	}).Return(nil)

	svc := NewService(ss, &mockKeyStore{})
	sc, err := svc.CreateScope(context.Background(), domain.CreateScopeRequest{
		Name: "Grade 7", Type: domain.ScopeGrade, GradeNumber: &g, AccessCode: "sevens",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, sc.ScopeID)
	assert.NotEqual(t, "sevens", stored.AccessCodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.AccessCodeHash), []byte("sevens")))
}
