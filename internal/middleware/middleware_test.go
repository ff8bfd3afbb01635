package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(TraceID())

	api := e.Group("/api", AuthMiddleware())
	api.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"user_id":  c.Get("user_id"),
			"trace_id": bandit.TraceIDFromContext(c.Request().Context()),
		})
	})
	api.GET("/users/:user_id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, SelfOrAdmin())
	api.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, AdminOnly())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("kaboom")
	})
	return e
}

func do(t *testing.T, e *echo.Echo, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWTWithTTL(userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	e := newServer()

	rec := do(t, e, "/api/me", token(t, "7", "USER"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)

	assert.Equal(t, http.StatusUnauthorized, do(t, e, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, e, "/api/me", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// token with a non numeric subject
	assert.Equal(t, http.StatusForbidden, do(t, e, "/api/me", token(t, "alice", "USER")).Code)
}

func TestSelfOrAdmin(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	e := newServer()

	assert.Equal(t, http.StatusNoContent, do(t, e, "/api/users/7", token(t, "7", "USER")).Code)
	assert.Equal(t, http.StatusForbidden, do(t, e, "/api/users/8", token(t, "7", "USER")).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, e, "/api/users/x", token(t, "7", "USER")).Code)
	assert.Equal(t, http.StatusNoContent, do(t, e, "/api/users/8", token(t, "1", "admin")).Code)
}

func TestAdminOnly(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	e := newServer()

	assert.Equal(t, http.StatusForbidden, do(t, e, "/api/admin", token(t, "7", "USER")).Code)
	assert.Equal(t, http.StatusNoContent, do(t, e, "/api/admin", token(t, "1", "ADMIN")).Code)
}

func TestTraceID(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "7", "USER"))
	req.Header.Set(HeaderTraceID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderTraceID))
	assert.Contains(t, rec.Body.String(), `"trace_id":"abc-123"`)

	// minted when absent
	rec = do(t, e, "/api/me", token(t, "7", "USER"))
	assert.Len(t, rec.Header().Get(HeaderTraceID), 36)
}

func TestErrorHandler(t *testing.T) {
	e := newServer()

	rec := do(t, e, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_SERVER_ERROR"`)

	rec = do(t, e, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}
