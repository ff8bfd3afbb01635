package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeCatalog struct {
	items []domain.Artwork
	err   error
}

func (c *fakeCatalog) FetchCandidatePool(ctx context.Context) ([]domain.Artwork, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]domain.Artwork(nil), c.items...), nil
}

func (c *fakeCatalog) FindArtwork(ctx context.Context, id uint64) (domain.Artwork, error) {
	for _, item := range c.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.Artwork{}, domain.ErrArtworkNotFound
}

type fakeActivity struct {
	activity domain.UserActivity
	err      error
}

func (a *fakeActivity) GetUserActivity(ctx context.Context, userID uint) (domain.UserActivity, error) {
	if a.err != nil {
		return domain.UserActivity{}, a.err
	}
	out := a.activity
	out.UserID = userID
	return out, nil
}

type fakeFeedback struct {
	mu     sync.Mutex
	events []domain.FeedbackEvent
	err    error
}

func (f *fakeFeedback) SaveEvent(ctx context.Context, event domain.FeedbackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type narratorFunc func(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error)

func (f narratorFunc) Explain(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error) {
	return f(ctx, item, c)
}

// malformedStore hands out a model with no matrices.
type malformedStore struct {
	*bandit.ModelStore
}

func (malformedStore) Get(ctx context.Context, userID uint) *bandit.UserModel {
	return &bandit.UserModel{}
}

type panickingStore struct {
	*bandit.ModelStore
}

func (panickingStore) Get(ctx context.Context, userID uint) *bandit.UserModel {
	panic("corrupted resident set")
}

// ---- helpers ----

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func artwork(id uint64, price float64) domain.Artwork {
	return domain.Artwork{
		ID:           id,
		Title:        fmt.Sprintf("Work %d", id),
		ArtistID:     7,
		Medium:       "Painting",
		Style:        "Abstract",
		Price:        price,
		ViewCount:    100,
		CreationYear: 2020,
		IsAvailable:  true,
	}
}

func catalogOf(items ...domain.Artwork) *fakeCatalog {
	return &fakeCatalog{items: items}
}

func defaultCatalog() *fakeCatalog {
	return catalogOf(artwork(1, 1000), artwork(2, 5000), artwork(3, 9000))
}

type deps struct {
	catalog     CatalogSource
	activity    ActivityRepository
	feedback    FeedbackRepository
	store       ModelStore
	narrator    Narrator
	eligibility EligibilityChecker
}

func newTestService(t *testing.T, d deps) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NarrativeTimeout = 50 * time.Millisecond
	if d.catalog == nil {
		d.catalog = defaultCatalog()
	}
	if d.activity == nil {
		d.activity = &fakeActivity{}
	}
	if d.store == nil {
		d.store = bandit.NewModelStore(nil, cfg.Bandit)
	}
	svc := NewService(d.catalog, d.activity, d.feedback, d.store, d.narrator, d.eligibility, cfg)
	svc.now = func() time.Time { return testNow }
	return svc
}

func budget(v float64) *float64 { return &v }

func recIDs(recs []domain.Recommendation) []uint64 {
	out := make([]uint64, len(recs))
	for i, r := range recs {
		out[i] = r.ArtworkID
	}
	return out
}

// ---- serving ----

func TestGetPersonalizedRecommendations_Basic(t *testing.T) {
	svc := newTestService(t, deps{})

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), 42, 3, Hints{Device: "desktop", Budget: budget(2000)})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for i, r := range recs {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Explanation)
		assert.Equal(t, int(math.Round(r.Confidence*100)), r.MatchConfidence)
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 0.99)
		if i > 0 {
			prev := recs[i-1]
			assert.GreaterOrEqual(t,
				prev.ExpectedReward+bandit.DefaultAlpha*prev.Uncertainty,
				r.ExpectedReward+bandit.DefaultAlpha*r.Uncertainty)
		}
	}

	// one of three picks is exploration, and it is the last one
	assert.Equal(t, string(bandit.ReasonExploit), recs[0].Reason)
	assert.Equal(t, string(bandit.ReasonExploit), recs[1].Reason)
	assert.Equal(t, string(bandit.ReasonExplore), recs[2].Reason)
}

func TestGetPersonalizedRecommendations_DefaultLimit(t *testing.T) {
	items := make([]domain.Artwork, 0, 10)
	for id := uint64(1); id <= 10; id++ {
		items = append(items, artwork(id, float64(id)*500))
	}
	svc := newTestService(t, deps{catalog: catalogOf(items...)})

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), 1, 0, Hints{})
	require.NoError(t, err)
	assert.Len(t, recs, bandit.DefaultConfig().DefaultLimit)
}

func TestGetPersonalizedRecommendations_DegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	base := bandit.NewModelStore(nil, bandit.DefaultConfig())

	tests := []struct {
		name string
		deps deps
	}{
		{name: "empty pool", deps: deps{catalog: catalogOf()}},
		{name: "catalog error", deps: deps{catalog: &fakeCatalog{err: errors.New("db down")}}},
		{name: "malformed model", deps: deps{store: malformedStore{base}}},
		{name: "scoring panic", deps: deps{store: panickingStore{base}}},
		{
			name: "nothing eligible",
			deps: deps{eligibility: mustRule(t, "item.price > 1000000.0")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.deps)
			recs, err := svc.GetPersonalizedRecommendations(ctx, 1, 5, Hints{})
			require.NoError(t, err)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
		})
	}
}

func TestGetPersonalizedRecommendations_CancelledContext(t *testing.T) {
	svc := newTestService(t, deps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs, err := svc.GetPersonalizedRecommendations(ctx, 1, 3, Hints{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, recs)
}

func TestGetPersonalizedRecommendations_ActivityFailureStillServes(t *testing.T) {
	svc := newTestService(t, deps{activity: &fakeActivity{err: errors.New("timeout")}})

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), 1, 3, Hints{})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestGetPersonalizedRecommendations_NarrativeFallbacks(t *testing.T) {
	narrator := narratorFunc(func(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error) {
		switch item.ID {
		case 1:
			return "", errors.New("upstream 500")
		case 2:
			return "   ", nil
		case 3:
			<-ctx.Done()
			return "too late", nil
		default:
			return "a remote explanation", nil
		}
	})
	svc := newTestService(t, deps{
		catalog:  catalogOf(artwork(1, 1000), artwork(2, 5000), artwork(3, 9000), artwork(4, 3000)),
		narrator: narrator,
	})

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), 1, 4, Hints{Budget: budget(2000)})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	for _, r := range recs {
		item, _ := svc.catalog.FindArtwork(context.Background(), r.ArtworkID)
		if r.ArtworkID == 4 {
			assert.Equal(t, "a remote explanation", r.Explanation)
			continue
		}
		assert.Equal(t, fallbackExplanation(item, bandit.Reason(r.Reason)), r.Explanation, "artwork %d", r.ArtworkID)
	}
}

func TestGetPersonalizedRecommendations_LearnsFromFeedback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	hints := Hints{Device: "desktop", Budget: budget(2000)}

	before, err := svc.GetPersonalizedRecommendations(ctx, 9, 3, hints)
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 2, 1}, recIDs(before))

	for range 3 {
		require.NoError(t, svc.RecordFeedback(ctx, 9, 1, domain.EventPurchase, hints))
		require.NoError(t, svc.RecordFeedback(ctx, 9, 3, domain.EventDismiss, hints))
	}

	after, err := svc.GetPersonalizedRecommendations(ctx, 9, 3, hints)
	require.NoError(t, err)
	require.Len(t, after, 3)
	assert.Equal(t, uint64(1), after[0].ArtworkID)
	assert.Greater(t, after[0].ExpectedReward, 0.0)

	// another user is untouched
	other, err := svc.GetPersonalizedRecommendations(ctx, 10, 3, hints)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2, 1}, recIDs(other))
}

// ---- feedback ----

func TestRecordFeedback_SavesEvent(t *testing.T) {
	feedback := &fakeFeedback{}
	svc := newTestService(t, deps{feedback: feedback})
	ctx := bandit.WithTraceID(context.Background(), "trace-123")

	require.NoError(t, svc.RecordFeedback(ctx, 5, 2, domain.EventAddToCart, Hints{Device: "mobile"}))

	require.Len(t, feedback.events, 1)
	ev := feedback.events[0]
	assert.Equal(t, uint(5), ev.UserID)
	assert.Equal(t, uint64(2), ev.ArtworkID)
	assert.Equal(t, domain.EventAddToCart, ev.EventType)
	assert.InDelta(t, 0.7, ev.Reward, 1e-12)
	assert.Equal(t, testNow, ev.CreatedAt)
	assert.Equal(t, "trace-123", ev.Context["trace_id"])
	assert.Equal(t, "mobile", ev.Context["device"])
	assert.Len(t, ev.Context["features"], bandit.FeatureDim)

	summary, err := svc.InspectModel(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updates)
}

func TestRecordFeedback_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown event", func(t *testing.T) {
		feedback := &fakeFeedback{}
		svc := newTestService(t, deps{feedback: feedback})

		err := svc.RecordFeedback(ctx, 1, 1, "wishlist", Hints{})
		assert.ErrorIs(t, err, bandit.ErrUnknownEvent)
		assert.Empty(t, feedback.events)

		summary, err := svc.InspectModel(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, summary.Updates)
	})

	t.Run("unknown artwork", func(t *testing.T) {
		svc := newTestService(t, deps{})
		err := svc.RecordFeedback(ctx, 1, 404, domain.EventClick, Hints{})
		assert.ErrorIs(t, err, domain.ErrArtworkNotFound)
	})

	t.Run("cancelled", func(t *testing.T) {
		svc := newTestService(t, deps{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, svc.RecordFeedback(cctx, 1, 1, domain.EventClick, Hints{}), context.Canceled)
	})

	t.Run("event log failure is not fatal", func(t *testing.T) {
		svc := newTestService(t, deps{feedback: &fakeFeedback{err: errors.New("insert failed")}})
		require.NoError(t, svc.RecordFeedback(ctx, 1, 1, domain.EventSave, Hints{}))

		summary, err := svc.InspectModel(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Updates)
	})
}

// ---- debug and admin ----

func TestDebugRecommend(t *testing.T) {
	svc := newTestService(t, deps{
		activity: &fakeActivity{activity: domain.UserActivity{DeviceClass: "iPhone", Budget: budget(3000)}},
	})
	ctx := context.Background()

	out, err := svc.DebugRecommend(ctx, 1, 2, Hints{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i, d := range out {
		assert.Equal(t, i+1, d.Rank)
		assert.Len(t, d.Features, bandit.FeatureDim)
		assert.InDelta(t, d.ExpectedReward+bandit.DefaultAlpha*d.Uncertainty, d.UCB, 1e-12)
		assert.Equal(t, "mobile", d.Context["device"])
		assert.Equal(t, 3000.0, d.Context["budget"])
	}
	assert.Equal(t, string(bandit.ReasonExplore), out[1].Reason)

	// request hints win over stored activity
	out, err = svc.DebugRecommend(ctx, 1, 2, Hints{Device: "desktop", Budget: budget(500)})
	require.NoError(t, err)
	assert.Equal(t, "desktop", out[0].Context["device"])
	assert.Equal(t, 500.0, out[0].Context["budget"])
}

func TestDebugRecommend_ReportsScoringErrors(t *testing.T) {
	svc := newTestService(t, deps{store: malformedStore{bandit.NewModelStore(nil, bandit.DefaultConfig())}})

	_, err := svc.DebugRecommend(context.Background(), 1, 2, Hints{})
	assert.ErrorIs(t, err, bandit.ErrMalformedModel)
}

func TestInspectResetAndFlush(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})

	summary, err := svc.InspectModel(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, summary.Updates)
	assert.Len(t, summary.Theta, bandit.FeatureDim)
	require.Len(t, summary.Diagonal, bandit.FeatureDim)
	for _, d := range summary.Diagonal {
		assert.Equal(t, 1.0, d)
	}
	assert.Equal(t, "clean", summary.WriteState)

	require.NoError(t, svc.RecordFeedback(ctx, 3, 1, domain.EventPurchase, Hints{}))
	summary, err = svc.InspectModel(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updates)
	assert.Equal(t, "dirty", summary.WriteState)
	assert.False(t, summary.UpdatedAt.IsZero())

	require.NoError(t, svc.FlushModels(ctx))
	summary, err = svc.InspectModel(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "clean", summary.WriteState)

	require.NoError(t, svc.ResetModel(ctx, 3))
	summary, err = svc.InspectModel(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, summary.Updates)
	for _, th := range summary.Theta {
		assert.Zero(t, th)
	}
}
