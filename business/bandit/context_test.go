package bandit

import (
	"testing"
	"time"

	"myArtMarket/domain"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	now := time.Date(2026, 7, 15, 20, 30, 0, 0, time.UTC) // Wednesday
	stored := 1500.0
	activity := domain.UserActivity{
		RecentViews:     []uint64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 99, 98},
		RecentSearches:  []string{"blue", "sea", "sky", "calm", "large", "oil"},
		Budget:          &stored,
		PreferredStyles: []string{"Abstract", " Pop Art ", ""},
		DeviceClass:     "mobile",
	}

	c := NewContext(3, now, activity, ContextOptions{})

	assert.Equal(t, uint(3), c.UserID)
	assert.Equal(t, 20, c.Hour)
	assert.Equal(t, int(time.Wednesday), c.DayOfWeek)
	assert.Equal(t, SeasonSummer, c.Season)
	assert.Equal(t, []uint64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, c.RecentViews)
	assert.Equal(t, []string{"blue", "sea", "sky", "calm", "large"}, c.RecentSearches)
	assert.Equal(t, DeviceMobile, c.Device)
	assert.Equal(t, 1500.0, *c.Budget)
	assert.Len(t, c.PreferredStyles, 2)
	assert.True(t, c.PrefersStyle("pop art"))
	assert.True(t, c.PrefersStyle("ABSTRACT"))
	assert.False(t, c.PrefersStyle(""))

	// the context owns its copies
	*activity.Budget = 1
	activity.RecentViews[0] = 1000
	assert.Equal(t, 1500.0, *c.Budget)
	assert.Equal(t, uint64(9), c.RecentViews[0])
}

func TestNewContext_OptionsOverrideStoredActivity(t *testing.T) {
	stored := 1500.0
	override := 4000.0
	activity := domain.UserActivity{Budget: &stored, DeviceClass: "mobile"}

	c := NewContext(1, time.Now(), activity, ContextOptions{
		Device:      DeviceTablet,
		Budget:      &override,
		RecentViews: 2,
	})
	assert.Equal(t, DeviceTablet, c.Device)
	assert.Equal(t, 4000.0, *c.Budget)

	c = NewContext(1, time.Now(), domain.UserActivity{}, ContextOptions{})
	assert.Nil(t, c.Budget)
	assert.Equal(t, DeviceDesktop, c.Device)
	assert.Empty(t, c.RecentViews)
}

func TestParseDeviceClass(t *testing.T) {
	cases := map[string]DeviceClass{
		"":        DeviceDesktop,
		"desktop": DeviceDesktop,
		"Mobile":  DeviceMobile,
		"tablet":  DeviceTablet,
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)": DeviceMobile,
		"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)":          DeviceTablet,
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)":              DeviceDesktop,
	}
	for in, want := range cases {
		assert.Equalf(t, want, ParseDeviceClass(in), "%q", in)
	}
}

func TestSeasonForMonth(t *testing.T) {
	assert.Equal(t, SeasonWinter, seasonForMonth(time.January))
	assert.Equal(t, SeasonWinter, seasonForMonth(time.December))
	assert.Equal(t, SeasonSpring, seasonForMonth(time.April))
	assert.Equal(t, SeasonSummer, seasonForMonth(time.August))
	assert.Equal(t, SeasonAutumn, seasonForMonth(time.October))
}

func TestRewardForEvent(t *testing.T) {
	table := DefaultRewardTable()
	want := map[string]float64{
		domain.EventImpression: 0,
		domain.EventClick:      0.3,
		domain.EventSave:       0.5,
		domain.EventAddToCart:  0.7,
		domain.EventPurchase:   1.0,
		domain.EventDismiss:    -0.2,
	}
	for event, reward := range want {
		got, err := table.RewardForEvent(event)
		assert.NoError(t, err)
		assert.Equalf(t, reward, got, "%s", event)
	}

	_, err := table.RewardForEvent("share")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
