package recommendation

import (
	"context"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"
)

// loadCandidatePool fetches the catalog and keeps what the user may be
// shown. A catalog failure yields an empty pool.
func (s *Service) loadCandidatePool(ctx context.Context, userID uint) []domain.Artwork {
	tid := bandit.TraceIDFromContext(ctx)

	items, err := s.catalog.FetchCandidatePool(ctx)
	if err != nil {
		logger.Error("bandit_catalog_fetch_failed", "trace_id", tid, "user_id", userID, "error", err)
		return nil
	}

	pool := make([]domain.Artwork, 0, len(items))
	for _, item := range items {
		ok, err := s.eligibility.IsEligible(ctx, userID, item)
		if err != nil {
			logger.Warn("bandit_eligibility_failed", "trace_id", tid, "artwork_id", item.ID, "error", err)
			continue
		}
		if ok {
			pool = append(pool, item)
		}
	}
	return pool
}
