package recommendation

import (
	"context"
	"fmt"
	"math"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"

	"github.com/samber/lo"
)

// ---- Repository interfaces ----

// CatalogSource supplies the candidate pool and resolves single artworks.
type CatalogSource interface {
	FetchCandidatePool(ctx context.Context) ([]domain.Artwork, error)
	FindArtwork(ctx context.Context, id uint64) (domain.Artwork, error)
}

type ActivityRepository interface {
	GetUserActivity(ctx context.Context, userID uint) (domain.UserActivity, error)
}

type FeedbackRepository interface {
	SaveEvent(ctx context.Context, event domain.FeedbackEvent) error
}

// ModelStore is the per-user model owner; see bandit.ModelStore.
type ModelStore interface {
	Get(ctx context.Context, userID uint) *bandit.UserModel
	Update(ctx context.Context, userID uint, x bandit.FeatureVector, reward float64) error
	Reset(ctx context.Context, userID uint) error
	State(userID uint) bandit.WriteState
	Flush(ctx context.Context) error
}

// Hints are per-request overrides supplied by the client.
type Hints struct {
	Device string
	Budget *float64
}

// ---- Usecase / Service ----

type Service struct {
	catalog     CatalogSource
	activity    ActivityRepository
	feedback    FeedbackRepository
	store       ModelStore
	narrator    Narrator
	eligibility EligibilityChecker
	cfg         Config
	now         func() time.Time
}

func NewService(
	catalog CatalogSource,
	activity ActivityRepository,
	feedback FeedbackRepository,
	store ModelStore,
	narrator Narrator,
	eligibility EligibilityChecker,
	cfg Config,
) *Service {
	if narrator == nil {
		narrator = TemplateNarrator{}
	}
	if eligibility == nil {
		eligibility = NoopEligibilityChecker{}
	}
	return &Service{
		catalog:     catalog,
		activity:    activity,
		feedback:    feedback,
		store:       store,
		narrator:    narrator,
		eligibility: eligibility,
		cfg:         cfg,
		now:         time.Now,
	}
}

//  Recommendation / serving

// GetPersonalizedRecommendations ranks the catalog for a user. Every
// failure past argument checking degrades to an empty list; the returned
// error is only ever a cancelled context.
func (s *Service) GetPersonalizedRecommendations(
	ctx context.Context,
	userID uint,
	limit int,
	hints Hints,
) ([]domain.Recommendation, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = s.cfg.Bandit.DefaultLimit
	}

	start := s.now()
	tid := bandit.TraceIDFromContext(ctx)

	// 1) context
	bctx := s.buildContext(ctx, userID, start, hints)

	// 2) candidate pool
	pool := s.loadCandidatePool(ctx, userID)
	if len(pool) == 0 {
		logger.Debug("bandit_recommend_empty_pool", "trace_id", tid, "user_id", userID)
		return []domain.Recommendation{}, nil
	}

	// 3) arms + 4) ranking
	ranked, err := s.rank(ctx, userID, pool, bctx, limit)
	if err != nil {
		logger.Error("bandit_recommend_scoring_failed",
			"trace_id", tid,
			"user_id", userID,
			"pool_size", len(pool),
			"error", err,
		)
		return []domain.Recommendation{}, nil
	}

	// 5) resolve items; drop ranked ids the pool no longer knows
	byID := lo.KeyBy(pool, func(a domain.Artwork) uint64 { return a.ID })
	picks := make([]pick, 0, len(ranked))
	for _, r := range ranked {
		item, ok := byID[r.Arm.ID]
		if !ok {
			logger.Warn("bandit_recommend_unresolved_item", "trace_id", tid, "artwork_id", r.Arm.ID)
			continue
		}
		picks = append(picks, pick{item: item, ranked: r})
	}

	// 6) explanations, fanned out
	explanations := s.explainAll(ctx, picks, bctx)

	// 7) assemble
	out := make([]domain.Recommendation, 0, len(picks))
	for i, p := range picks {
		confidence := p.ranked.Confidence()
		out = append(out, domain.Recommendation{
			ArtworkID:       p.item.ID,
			Title:           p.item.Title,
			ArtistID:        p.item.ArtistID,
			Price:           p.item.Price,
			Confidence:      confidence,
			MatchConfidence: int(math.Round(confidence * 100)),
			Reason:          string(p.ranked.Reason),
			Explanation:     explanations[i],
			ExpectedReward:  p.ranked.Score.ExpectedReward,
			Uncertainty:     p.ranked.Score.Uncertainty,
		})
		RecommendationsServedTotal.WithLabelValues(string(p.ranked.Reason)).Inc()
	}

	logger.Debug("bandit_recommend",
		"trace_id", tid,
		"user_id", userID,
		"limit", limit,
		"pool_size", len(pool),
		"returned", len(out),
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)

	return out, nil
}

type pick struct {
	item   domain.Artwork
	ranked bandit.RankedArm
}

func (s *Service) buildContext(ctx context.Context, userID uint, now time.Time, hints Hints) bandit.Context {
	var activity domain.UserActivity
	if s.activity != nil {
		a, err := s.activity.GetUserActivity(ctx, userID)
		if err != nil {
			logger.Warn("bandit_activity_load_failed",
				"trace_id", bandit.TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		} else {
			activity = a
		}
	}

	opts := bandit.ContextOptions{
		Budget:         hints.Budget,
		RecentViews:    s.cfg.Bandit.RecentViews,
		RecentSearches: s.cfg.Bandit.RecentSearches,
	}
	if hints.Device != "" {
		opts.Device = bandit.ParseDeviceClass(hints.Device)
	}
	return bandit.NewContext(userID, now, activity, opts)
}

// rank scores the pool against the user's model. A panic inside scoring is
// turned into an error so one bad model cannot take the request down.
func (s *Service) rank(
	ctx context.Context,
	userID uint,
	pool []domain.Artwork,
	bctx bandit.Context,
	limit int,
) (ranked []bandit.RankedArm, err error) {

	defer func() {
		if r := recover(); r != nil {
			ranked = nil
			err = fmt.Errorf("scoring panic: %v", r)
		}
	}()

	now := bctx.At
	arms := lo.Map(pool, func(item domain.Artwork, _ int) bandit.Arm {
		return bandit.NewArm(item, now)
	})

	model := s.store.Get(ctx, userID)
	return bandit.Rank(arms, bctx, model, limit, s.cfg.Bandit.RankParams())
}
