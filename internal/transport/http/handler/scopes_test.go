package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/schoolyard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccessSvc struct{ mock.Mock }

func (m *mockAccessSvc) ListScopes(ctx context.Context) ([]domain.Scope, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Scope), args.Error(1)
}

func (m *mockAccessSvc) GetScope(ctx context.Context, scopeID string) (*domain.Scope, error) {
	args := m.Called(ctx, scopeID)
	if sc, _ := args.Get(0).(*domain.Scope); sc != nil {
		return sc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessSvc) CreateScope(ctx context.Context, req domain.CreateScopeRequest) (*domain.Scope, error) {
	args := m.Called(ctx, req)
	if sc, _ := args.Get(0).(*domain.Scope); sc != nil {
		return sc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessSvc) UpdateScope(ctx context.Context, scopeID string, req domain.UpdateScopeRequest) (*domain.Scope, error) {
	args := m.Called(ctx, scopeID, req)
	if sc, _ := args.Get(0).(*domain.Scope); sc != nil {
		return sc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessSvc) Unlock(ctx context.Context, userID, scopeID, code string) (*domain.DigitalKey, error) {
	args := m.Called(ctx, userID, scopeID, code)
	if k, _ := args.Get(0).(*domain.DigitalKey); k != nil {
		return k, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessSvc) HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error) {
	args := m.Called(ctx, userID, role, scopeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccessSvc) ListKeys(ctx context.Context, userID string) ([]domain.DigitalKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.DigitalKey), args.Error(1)
}

func TestUnlock_HappyPath(t *testing.T) {
	svc := &mockAccessSvc{}
	key := &domain.DigitalKey{UserID: "u1", ScopeID: "sc1"}
	svc.On("Unlock", mock.Anything, "u1", "sc1", "OPEN-SESAME").Return(key, nil)
	h := NewScopeHandler(svc)
	p := newTestJWTProvider(t)

	body, _ := json.Marshal(domain.UnlockScopeRequest{Code: "OPEN-SESAME"})
	r := withChiID(bearerReq(t, p, http.MethodPost, "/v1/scopes/sc1/unlock", "u1", domain.RoleStudent, body), "sc1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Unlock), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got domain.DigitalKey
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "sc1", got.ScopeID)
	svc.AssertExpectations(t)
}

func TestUnlock_WrongCode(t *testing.T) {
	svc := &mockAccessSvc{}
	svc.On("Unlock", mock.Anything, "u1", "sc1", "nope").Return(nil, domain.ErrUnauthorized)
	h := NewScopeHandler(svc)
	p := newTestJWTProvider(t)

	body, _ := json.Marshal(domain.UnlockScopeRequest{Code: "nope"})
	r := withChiID(bearerReq(t, p, http.MethodPost, "/v1/scopes/sc1/unlock", "u1", domain.RoleStudent, body), "sc1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Unlock), rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnlock_MissingCode(t *testing.T) {
	svc := &mockAccessSvc{}
	h := NewScopeHandler(svc)
	p := newTestJWTProvider(t)

	r := withChiID(bearerReq(t, p, http.MethodPost, "/v1/scopes/sc1/unlock", "u1", domain.RoleStudent, []byte(`{}`)), "sc1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Unlock), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlock_NoToken(t *testing.T) {
	h := NewScopeHandler(&mockAccessSvc{})
	p := newTestJWTProvider(t)

	body := bytes.NewBufferString(`{"code":"x"}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/scopes/sc1/unlock", body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Unlock), rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMyKeys(t *testing.T) {
	svc := &mockAccessSvc{}
	svc.On("ListKeys", mock.Anything, "u1").Return([]domain.DigitalKey{{UserID: "u1", ScopeID: "sc1"}}, nil)
	h := NewScopeHandler(svc)
	p := newTestJWTProvider(t)

	r := bearerReq(t, p, http.MethodGet, "/v1/scopes/my-keys", "u1", domain.RoleStudent, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MyKeys), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var keys []domain.DigitalKey
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&keys))
	require.Len(t, keys, 1)
	assert.Equal(t, "sc1", keys[0].ScopeID)
}

func TestCreateScope_Conflict(t *testing.T) {
	svc := &mockAccessSvc{}
	svc.On("CreateScope", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
	h := NewScopeHandler(svc)

	body, _ := json.Marshal(domain.CreateScopeRequest{Name: "Global", Type: domain.ScopeGlobal})
	r := httptest.NewRequest(http.MethodPost, "/v1/scopes", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
