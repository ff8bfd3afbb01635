package recommendation

import (
	"context"
	"testing"

	"myArtMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRule(t *testing.T, expr string) *RuleEligibilityChecker {
	t.Helper()
	c, err := NewRuleEligibilityChecker(expr)
	require.NoError(t, err)
	return c
}

func TestRuleEligibilityChecker(t *testing.T) {
	ctx := context.Background()
	tagged := artwork(2, 800)
	tagged.ColorTags = []string{"red", "nsfw"}
	sold := artwork(3, 800)
	sold.IsAvailable = false

	tests := []struct {
		name string
		rule string
		item domain.Artwork
		want bool
	}{
		{name: "empty rule allows", rule: "  ", item: sold, want: true},
		{name: "price cap pass", rule: "item.price <= 1500.0", item: artwork(1, 1000), want: true},
		{name: "price cap fail", rule: "item.price <= 1500.0", item: artwork(1, 2000), want: false},
		{name: "availability", rule: "item.is_available", item: sold, want: false},
		{name: "tag exclusion", rule: `!("nsfw" in item.color_tags)`, item: tagged, want: false},
		{name: "tag exclusion untagged", rule: `!("nsfw" in item.color_tags)`, item: artwork(1, 10), want: true},
		{name: "user scoped", rule: "user_id != 13", item: artwork(1, 10), want: false},
		{name: "medium", rule: `item.medium == "Painting" && item.creation_year >= 2000`, item: artwork(1, 10), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := mustRule(t, tt.rule).IsEligible(ctx, 13, tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRuleEligibilityChecker_Errors(t *testing.T) {
	_, err := NewRuleEligibilityChecker("item.price >")
	assert.Error(t, err)

	_, err = NewRuleEligibilityChecker("unknown_var > 1")
	assert.Error(t, err)

	c := mustRule(t, "item.price")
	_, err = c.IsEligible(context.Background(), 1, artwork(1, 10))
	assert.Error(t, err, "non-bool result")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = mustRule(t, "true").IsEligible(cancelled, 1, artwork(1, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuleEligibility_FiltersPool(t *testing.T) {
	svc := newTestService(t, deps{eligibility: mustRule(t, "item.price < 6000.0")})

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), 1, 5, Hints{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 2}, recIDs(recs))
}

func TestNoopEligibilityChecker(t *testing.T) {
	ok, err := NoopEligibilityChecker{}.IsEligible(context.Background(), 1, domain.Artwork{})
	require.NoError(t, err)
	assert.True(t, ok)
}
