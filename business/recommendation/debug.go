package recommendation

import (
	"context"
	"fmt"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"
)

// DebugRecommend returns the ranked list with every score component and the
// feature vector, without narratives. Unlike the serving path it reports
// scoring errors instead of hiding them.
func (s *Service) DebugRecommend(
	ctx context.Context,
	userID uint,
	limit int,
	hints Hints,
) ([]domain.DebugRecommendation, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = s.cfg.Bandit.DefaultLimit
	}

	now := s.now()
	bctx := s.buildContext(ctx, userID, now, hints)

	logger.Debug("bandit_debug_recommend",
		"trace_id", bandit.TraceIDFromContext(ctx),
		"user_id", userID,
		"limit", limit,
	)

	pool := s.loadCandidatePool(ctx, userID)
	if len(pool) == 0 {
		return []domain.DebugRecommendation{}, nil
	}

	ranked, err := s.rank(ctx, userID, pool, bctx, limit)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	ctxFields := bctx.Fields()
	out := make([]domain.DebugRecommendation, 0, len(ranked))
	for i, r := range ranked {
		out = append(out, domain.DebugRecommendation{
			ArtworkID:      r.Arm.ID,
			Rank:           i + 1,
			Reason:         string(r.Reason),
			ExpectedReward: r.Score.ExpectedReward,
			Uncertainty:    r.Score.Uncertainty,
			UCB:            r.UCB,
			Confidence:     r.Confidence(),
			Features:       r.Features.Slice(),
			Context:        ctxFields,
		})
	}
	return out, nil
}
