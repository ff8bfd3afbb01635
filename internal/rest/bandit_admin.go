package rest

import (
	"context"
	"net/http"
	"strconv"

	"myArtMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	BanditAdminHandler struct {
		service ModelAdminService
	}

	ModelAdminService interface {
		InspectModel(ctx context.Context, userID uint) (domain.ModelSummary, error)
		ResetModel(ctx context.Context, userID uint) error
		FlushModels(ctx context.Context) error
	}
)

func NewBanditAdminHandler(svc ModelAdminService) *BanditAdminHandler {
	return &BanditAdminHandler{service: svc}
}

func parseUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GET /api/v1/admin/bandit/models/:user_id
func (h *BanditAdminHandler) GetModel(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user ID"})
	}

	summary, err := h.service.InspectModel(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

// DELETE /api/v1/admin/bandit/models/:user_id
func (h *BanditAdminHandler) ResetModel(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user ID"})
	}

	if err := h.service.ResetModel(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("model reset"))
}

// POST /api/v1/admin/bandit/flush
func (h *BanditAdminHandler) Flush(c echo.Context) error {
	if err := h.service.FlushModels(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("models flushed"))
}
