package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/business/recommendation"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationService interface {
		GetPersonalizedRecommendations(ctx context.Context, userID uint, limit int, hints recommendation.Hints) ([]domain.Recommendation, error)
		DebugRecommend(ctx context.Context, userID uint, limit int, hints recommendation.Hints) ([]domain.DebugRecommendation, error)
		RecordFeedback(ctx context.Context, userID uint, artworkID uint64, eventType string, hints recommendation.Hints) error
	}

	RecommendQuery struct {
		Limit  int     `query:"limit" validate:"omitempty,min=1,max=100"`
		Device string  `query:"device" validate:"omitempty,oneof=mobile tablet desktop"`
		Budget float64 `query:"budget" validate:"omitempty,gt=0"`
	}

	FeedbackRequest struct {
		ArtworkID uint64   `json:"artwork_id" validate:"required"`
		EventType string   `json:"event_type" validate:"required,oneof=impression click save add_to_cart purchase dismiss"`
		Device    string   `json:"device" validate:"omitempty,oneof=mobile tablet desktop"`
		Budget    *float64 `json:"budget" validate:"omitempty,gt=0"`
	}
)

func (q RecommendQuery) hints() recommendation.Hints {
	h := recommendation.Hints{Device: q.Device}
	if q.Budget > 0 {
		budget := q.Budget
		h.Budget = &budget
	}
	return h
}

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  10 * time.Second,
	}
}

func currentUserID(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}

// GET /api/v1/recommendations?limit=6&device=mobile&budget=2500
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recs, err := h.service.GetPersonalizedRecommendations(ctx, userID, q.Limit, q.hints())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.service.RecordFeedback(ctx, userID, req.ArtworkID, req.EventType, recommendation.Hints{
		Device: req.Device,
		Budget: req.Budget,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrArtworkNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, bandit.ErrUnknownEvent):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	default:
		logger.Error("bandit_feedback_failed",
			"trace_id", bandit.TraceIDFromContext(ctx),
			"user_id", userID,
			"artwork_id", req.ArtworkID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/debug?limit=10
func (h *RecommendationHandler) DebugRecommend(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.service.DebugRecommend(c.Request().Context(), userID, q.Limit, q.hints())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}
