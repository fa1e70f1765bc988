package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/middleware"
	"github.com/edupode/mysterybox/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	Guest        bool   `json:"guest"`
}

// =====================
// UserRepository モック
// =====================

type MockUserRepoForMiddleware struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepoForMiddleware)(nil)

func (m *MockUserRepoForMiddleware) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepoForMiddleware) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepoForMiddleware) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// helper
// =====================

const testSecret = "test-secret"

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, tv int, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// ctxの中身をそのまま返す
func echoContext(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
	return c.JSON(http.StatusOK, mwOKResponse{
		UserID:       userID,
		Role:         role,
		TokenVersion: tv,
		Guest:        !ok,
	})
}

// =====================
// AuthJWT
// =====================

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"empty token", "Bearer "},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "USER", 0, jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS512)},
		{"no role", "Bearer " + mustMakeJWT(t, testSecret, 1, "", 0, jwt.SigningMethodHS256)},
		{"bad sub", "Bearer " + mustMakeJWT(t, testSecret, 0, "USER", 0, jwt.SigningMethodHS256)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: testSecret}))

			rec := runRequest(t, e, http.MethodGet, "/protected", tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: testSecret}))

	raw := mustMakeJWT(t, testSecret, 123, "USER", 7, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "USER", body.Role)
	assert.Equal(t, 7, body.TokenVersion)
}

// =====================
// OptionalAuthJWT
// =====================

func TestMiddleware_OptionalAuthJWT_GuestPasses(t *testing.T) {
	e := echo.New()
	e.GET("/cart", echoContext, middleware.OptionalAuthJWT(config.Config{JWTSecret: testSecret}))

	rec := runRequest(t, e, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeMWOK(t, rec).Guest)
}

func TestMiddleware_OptionalAuthJWT_ValidTokenSetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/cart", echoContext, middleware.OptionalAuthJWT(config.Config{JWTSecret: testSecret}))

	raw := mustMakeJWT(t, testSecret, 9, "USER", 2, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/cart", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.False(t, body.Guest)
	assert.Equal(t, int64(9), body.UserID)
}

// 壊れたトークンはゲストにならない
func TestMiddleware_OptionalAuthJWT_InvalidTokenRejected(t *testing.T) {
	e := echo.New()
	e.GET("/cart", echoContext, middleware.OptionalAuthJWT(config.Config{JWTSecret: testSecret}))

	raw := mustMakeJWT(t, "wrong-secret", 9, "USER", 2, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/cart", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

func TestMiddleware_TokenVersionGuard_Unauthorized_MissingContext(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	e.GET("/protected", echoContext, middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMiddleware_TokenVersionGuard(t *testing.T) {
	cases := []struct {
		name     string
		dbUser   *model.User
		dbErr    error
		wantCode int
	}{
		{"match", &model.User{ID: 1, Role: model.RoleUser, TokenVersion: 5}, nil, http.StatusOK},
		{"mismatch", &model.User{ID: 1, Role: model.RoleUser, TokenVersion: 6}, nil, http.StatusUnauthorized},
		{"user gone", nil, nil, http.StatusUnauthorized},
		{"db error", nil, errors.New("boom"), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			cfg := config.Config{JWTSecret: testSecret}

			userRepo := new(MockUserRepoForMiddleware)
			userRepo.On("FindByID", mock.Anything, int64(1)).Return(tc.dbUser, tc.dbErr)

			e.GET("/protected", echoContext, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

			raw := mustMakeJWT(t, testSecret, 1, "USER", 5, jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
			assert.Equal(t, tc.wantCode, rec.Code)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestMiddleware_OptionalTokenVersionGuard(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}

	userRepo := new(MockUserRepoForMiddleware)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, TokenVersion: 1}, nil)

	e.GET("/cart", echoContext, middleware.OptionalAuthJWT(cfg), middleware.OptionalTokenVersionGuard(userRepo))

	//ゲストはDBを見ない
	rec := runRequest(t, e, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)

	//強制ログアウト済みのトークン
	stale := mustMakeJWT(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS256)
	rec = runRequest(t, e, http.MethodGet, "/cart", "Bearer "+stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	fresh := mustMakeJWT(t, testSecret, 1, "USER", 1, jwt.SigningMethodHS256)
	rec = runRequest(t, e, http.MethodGet, "/cart", "Bearer "+fresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// AdminRoleGuard
// =====================

func TestMiddleware_AdminRoleGuard(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		wantCode int
		wantErr  string
	}{
		{"admin", "ADMIN", http.StatusOK, ""},
		{"user", "USER", http.StatusForbidden, "admin only"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/admin", echoContext, middleware.AuthJWT(config.Config{JWTSecret: testSecret}), middleware.AdminRoleGuard())

			raw := mustMakeJWT(t, testSecret, 1, tc.role, 0, jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+raw)
			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, decodeMWError(t, rec).Error)
			}
		})
	}
}

func TestMiddleware_AdminRoleGuard_NoRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", echoContext, middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// RequestLogger
// =====================

type logLine struct {
	Level     string `json:"level"`
	RequestID string `json:"request_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	UserID    int64  `json:"user_id"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestMiddleware_RequestLogger_Success(t *testing.T) {
	buf := captureLog(t)

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/products", func(c echo.Context) error {
		rid, _ := c.Get(middleware.CtxRequestIDKey).(string)
		return c.String(http.StatusOK, rid)
	})

	rec := runRequest(t, e, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rid := rec.Header().Get(echo.HeaderXRequestID)
	assert.Len(t, rid, 8)
	assert.Equal(t, rid, rec.Body.String())

	var line logLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line.Level)
	assert.Equal(t, rid, line.RequestID)
	assert.Equal(t, http.MethodGet, line.Method)
	assert.Equal(t, "/products", line.Path)
	assert.Equal(t, http.StatusOK, line.Status)
	assert.Equal(t, "HTTP Request", line.Message)
}

func TestMiddleware_RequestLogger_ErrorStatus(t *testing.T) {
	buf := captureLog(t)

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	rec := runRequest(t, e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var line logLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line.Level)
	assert.Equal(t, http.StatusServiceUnavailable, line.Status)
	assert.NotEmpty(t, line.Error)
}

func TestMiddleware_RequestLogger_WarnWithUser(t *testing.T) {
	buf := captureLog(t)

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/orders", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}, middleware.AuthJWT(config.Config{JWTSecret: testSecret}))

	raw := mustMakeJWT(t, testSecret, 42, "USER", 0, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/orders", "Bearer "+raw)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var line logLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line.Level)
	assert.Equal(t, int64(42), line.UserID)
}
