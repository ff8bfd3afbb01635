package recommendation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateNarrator(t *testing.T) {
	item := artwork(1, 1500)
	ctx := context.Background()

	styled := bandit.NewContext(1, testNow, domain.UserActivity{PreferredStyles: []string{"abstract"}}, bandit.ContextOptions{})
	text, err := TemplateNarrator{}.Explain(ctx, item, styled)
	require.NoError(t, err)
	assert.Equal(t, "An abstract painting that fits your taste for abstract work.", text)

	inBudget := bandit.NewContext(1, testNow, domain.UserActivity{}, bandit.ContextOptions{Budget: budget(2000)})
	text, err = TemplateNarrator{}.Explain(ctx, item, inBudget)
	require.NoError(t, err)
	assert.Contains(t, text, "within your budget")

	plain := bandit.NewContext(1, testNow, domain.UserActivity{}, bandit.ContextOptions{})
	text, err = TemplateNarrator{}.Explain(ctx, item, plain)
	require.NoError(t, err)
	assert.Contains(t, text, "worth a closer look")
}

func TestFallbackExplanation(t *testing.T) {
	item := domain.Artwork{Style: " Minimalism ", Medium: ""}
	assert.Equal(t,
		"Something a little different: a minimalism piece outside your usual picks.",
		fallbackExplanation(item, bandit.ReasonExplore))
	assert.Equal(t,
		"Picked for you: a minimalism piece similar to work you have enjoyed.",
		fallbackExplanation(item, bandit.ReasonExploit))
	assert.Equal(t,
		"Picked for you: an oil piece similar to work you have enjoyed.",
		fallbackExplanation(domain.Artwork{Style: "Oil"}, bandit.ReasonExploit))
}

func TestExplainAll_RespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	narrator := narratorFunc(func(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return "ok", nil
	})

	svc := newTestService(t, deps{narrator: narrator})
	svc.cfg.NarrativeConcurrency = 2
	svc.cfg.NarrativeTimeout = time.Second

	picks := make([]pick, 0, 6)
	for id := uint64(1); id <= 6; id++ {
		picks = append(picks, pick{item: artwork(id, 100)})
	}
	out := svc.explainAll(context.Background(), picks, bandit.Context{})

	assert.Equal(t, []string{"ok", "ok", "ok", "ok", "ok", "ok"}, out)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExplainAll_Empty(t *testing.T) {
	svc := newTestService(t, deps{})
	assert.Empty(t, svc.explainAll(context.Background(), nil, bandit.Context{}))
}
