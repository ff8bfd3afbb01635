package rest

import (
	"errors"
	"net/http"
	"testing"

	"myArtMarket/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUserParam(c echo.Context, id string) echo.Context {
	c.SetParamNames("user_id")
	c.SetParamValues(id)
	return c
}

func TestBanditAdmin_GetModel(t *testing.T) {
	svc := &mockService{summary: domain.ModelSummary{UserID: 44, Updates: 3, WriteState: "dirty"}}
	h := NewBanditAdminHandler(svc)

	rec, c := newRequest(http.MethodGet, "/api/v1/admin/bandit/models/44", "")
	require.NoError(t, h.GetModel(withUserParam(c, "44")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(44), svc.userID)
	assert.Contains(t, rec.Body.String(), `"write_state":"dirty"`)

	rec, c = newRequest(http.MethodGet, "/api/v1/admin/bandit/models/x", "")
	require.NoError(t, h.GetModel(withUserParam(c, "x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanditAdmin_ResetModel(t *testing.T) {
	svc := &mockService{}
	h := NewBanditAdminHandler(svc)

	rec, c := newRequest(http.MethodDelete, "/api/v1/admin/bandit/models/9", "")
	require.NoError(t, h.ResetModel(withUserParam(c, "9")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.resetCalled)
	assert.Equal(t, uint(9), svc.userID)

	svc.err = errors.New("cancelled")
	rec, c = newRequest(http.MethodDelete, "/api/v1/admin/bandit/models/9", "")
	require.NoError(t, h.ResetModel(withUserParam(c, "9")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBanditAdmin_Flush(t *testing.T) {
	svc := &mockService{}
	h := NewBanditAdminHandler(svc)

	rec, c := newRequest(http.MethodPost, "/api/v1/admin/bandit/flush", "")
	require.NoError(t, h.Flush(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.flushCalled)

	svc.err = errors.New("save model for user 1: db down")
	rec, c = newRequest(http.MethodPost, "/api/v1/admin/bandit/flush", "")
	require.NoError(t, h.Flush(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
