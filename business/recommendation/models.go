package recommendation

import (
	"context"
	"fmt"

	"myArtMarket/domain"
)

// InspectModel summarizes a user's current model.
func (s *Service) InspectModel(ctx context.Context, userID uint) (domain.ModelSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelSummary{}, fmt.Errorf("context error: %w", err)
	}

	m := s.store.Get(ctx, userID)
	diag := make([]float64, 0, m.A.RawMatrix().Rows)
	for i := range m.A.RawMatrix().Rows {
		diag = append(diag, m.A.At(i, i))
	}
	theta := make([]float64, m.Theta.Len())
	for i := range theta {
		theta[i] = m.Theta.AtVec(i)
	}

	return domain.ModelSummary{
		UserID:     userID,
		Updates:    m.Updates,
		Theta:      theta,
		Diagonal:   diag,
		WriteState: s.store.State(userID).String(),
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

func (s *Service) ResetModel(ctx context.Context, userID uint) error {
	if err := s.store.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset model: %w", err)
	}
	return nil
}

// FlushModels forces every pending model write out now.
func (s *Service) FlushModels(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return s.store.Flush(ctx)
}
