package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schoolyard-api/internal/config"
	"github.com/schoolyard-api/internal/domain"
	jwtinfra "github.com/schoolyard-api/internal/infrastructure/jwt"
	"github.com/schoolyard-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.String(1), args.String(2), args.Error(3)
	}
	return nil, "", "", args.Error(3)
}

func (m *mockUserSvc) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserSvc) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, role, "sess1")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func validRegisterBody(t *testing.T) []byte {
	t.Helper()
	grade := 9
	body, err := json.Marshal(domain.CreateUserRequest{
		Username: "alice", Password: "secret12345", Email: "alice@example.com",
		FirstName: "Alice", LastName: "Smith", GradeNumber: &grade,
	})
	require.NoError(t, err)
	return body
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, time.Hour)
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, time.Hour)
	body, _ := json.Marshal(domain.CreateUserRequest{Username: "alice"}) // missing required fields
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ServiceConflict(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("RegisterWithSession", mock.Anything, mock.Anything).Return(nil, "", "", domain.ErrConflict)
	h := NewUserHandler(svc, time.Hour)
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(validRegisterBody(t)))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
	svc.AssertExpectations(t)
}

func TestRegister_HappyPath_SetsSessionCookie(t *testing.T) {
	svc := &mockUserSvc{}
	sess := &domain.Session{SessionID: "s1", UserID: "u1", User: &domain.User{UserID: "u1", Username: "alice"}}
	svc.On("RegisterWithSession", mock.Anything, mock.Anything).Return(sess, "access-token", "refresh-token", nil)
	h := NewUserHandler(svc, time.Hour)
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(validRegisterBody(t)))
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "access-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	svc.AssertExpectations(t)
}

// --- Get ---

func TestGet_MissingClaims(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, time.Hour)
	r := withChiID(httptest.NewRequest(http.MethodGet, "/v1/users/u1", nil), "u1")
	rr := httptest.NewRecorder()
	h.Get(rr, r) // called directly, no claims in context
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	h := NewUserHandler(svc, time.Hour)
	p := newTestJWTProvider(t)

	r := withChiID(bearerReq(t, p, http.MethodGet, "/v1/users/ghost", "u1", domain.RoleStudent, nil), "ghost")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Get), rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Update ---

func TestUpdate_OtherUser_Forbidden(t *testing.T) {
	svc := &mockUserSvc{}
	h := NewUserHandler(svc, time.Hour)
	p := newTestJWTProvider(t)

	body, _ := json.Marshal(domain.UpdateUserRequest{})
	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/users/u2", "u1", domain.RoleStudent, body), "u2")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Update), rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RoleChange_NonAdminForbidden(t *testing.T) {
	svc := &mockUserSvc{}
	h := NewUserHandler(svc, time.Hour)
	p := newTestJWTProvider(t)

	admin := domain.RoleAdmin
	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &admin})
	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/users/u1", "u1", domain.RoleStudent, body), "u1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Update), rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_AdminChangesRole(t *testing.T) {
	svc := &mockUserSvc{}
	visitor := domain.RoleVisitor
	svc.On("Update", mock.Anything, "u2", mock.Anything).Return(&domain.User{UserID: "u2", Role: visitor}, nil)
	h := NewUserHandler(svc, time.Hour)
	p := newTestJWTProvider(t)

	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &visitor})
	r := withChiID(bearerReq(t, p, http.MethodPut, "/v1/users/u2", "admin1", domain.RoleAdmin, body), "u2")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Update), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
