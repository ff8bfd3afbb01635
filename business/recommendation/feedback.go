package recommendation

import (
	"context"
	"fmt"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"

	"gorm.io/datatypes"
)

//  Feedback / learning

// RecordFeedback turns a user interaction into a model update. The event
// log write is best effort; the model update is what matters.
func (s *Service) RecordFeedback(
	ctx context.Context,
	userID uint,
	artworkID uint64,
	eventType string,
	hints Hints,
) error {

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	reward, err := s.cfg.Bandit.Rewards.RewardForEvent(eventType)
	if err != nil {
		return err
	}

	item, err := s.catalog.FindArtwork(ctx, artworkID)
	if err != nil {
		return fmt.Errorf("find artwork %d: %w", artworkID, err)
	}

	now := s.now()
	bctx := s.buildContext(ctx, userID, now, hints)
	x := bandit.ExtractFeatures(bandit.NewArm(item, now), bctx)

	if err := s.store.Update(ctx, userID, x, reward); err != nil {
		return fmt.Errorf("update model: %w", err)
	}

	tid := bandit.TraceIDFromContext(ctx)
	logger.Debug("bandit_feedback",
		"trace_id", tid,
		"user_id", userID,
		"artwork_id", artworkID,
		"event_type", eventType,
		"reward", reward,
	)

	if s.feedback != nil {
		eventCtx := bctx.Fields()
		eventCtx["features"] = x.Slice()
		eventCtx["trace_id"] = tid

		event := domain.FeedbackEvent{
			UserID:    userID,
			ArtworkID: artworkID,
			EventType: eventType,
			Reward:    reward,
			CreatedAt: now,
			Context:   datatypes.JSONMap(eventCtx),
		}
		if err := s.feedback.SaveEvent(ctx, event); err != nil {
			logger.Error("bandit_feedback_event_save_failed", "trace_id", tid, "user_id", userID, "error", err)
		}
	}

	FeedbackEventsTotal.WithLabelValues(eventType).Inc()
	return nil
}
