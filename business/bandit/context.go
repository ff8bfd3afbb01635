package bandit

import (
	"strings"
	"time"

	"myArtMarket/domain"
)

type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

const (
	defaultRecentViews    = 10
	defaultRecentSearches = 5
)

// Context is the read-only snapshot of one recommendation decision.
type Context struct {
	UserID          uint
	Hour            int
	DayOfWeek       int // 0=Sunday
	Season          Season
	RecentViews     []uint64
	RecentSearches  []string
	Budget          *float64
	Device          DeviceClass
	PreferredStyles map[string]struct{}
	At              time.Time
}

// ContextOptions tweaks NewContext. Zero values fall back to defaults.
type ContextOptions struct {
	Device         DeviceClass
	Budget         *float64
	RecentViews    int
	RecentSearches int
}

// NewContext builds the decision context from the clock and the user's
// stored activity. A device or budget given in opts wins over the stored one.
func NewContext(userID uint, now time.Time, activity domain.UserActivity, opts ContextOptions) Context {
	nViews := opts.RecentViews
	if nViews <= 0 {
		nViews = defaultRecentViews
	}
	nSearches := opts.RecentSearches
	if nSearches <= 0 {
		nSearches = defaultRecentSearches
	}

	device := opts.Device
	if device == "" {
		device = ParseDeviceClass(activity.DeviceClass)
	}

	budget := opts.Budget
	if budget == nil && activity.Budget != nil {
		b := *activity.Budget
		budget = &b
	}

	styles := make(map[string]struct{}, len(activity.PreferredStyles))
	for _, s := range activity.PreferredStyles {
		if n := normalizeLabel(s); n != "" {
			styles[n] = struct{}{}
		}
	}

	return Context{
		UserID:          userID,
		Hour:            now.Hour(),
		DayOfWeek:       int(now.Weekday()),
		Season:          seasonForMonth(now.Month()),
		RecentViews:     lastN(activity.RecentViews, nViews),
		RecentSearches:  lastN(activity.RecentSearches, nSearches),
		Budget:          budget,
		Device:          device,
		PreferredStyles: styles,
		At:              now,
	}
}

func (c Context) PrefersStyle(genre string) bool {
	if len(c.PreferredStyles) == 0 {
		return false
	}
	_, ok := c.PreferredStyles[normalizeLabel(genre)]
	return ok
}

// Fields flattens the context for logs and event storage.
func (c Context) Fields() map[string]any {
	out := map[string]any{
		"hour":         c.Hour,
		"dow":          c.DayOfWeek,
		"season":       string(c.Season),
		"device":       string(c.Device),
		"recent_views": len(c.RecentViews),
	}
	if c.Budget != nil {
		out["budget"] = *c.Budget
	}
	return out
}

// ParseDeviceClass maps a client label or user agent to a device class.
// Anything unrecognized is treated as desktop.
func ParseDeviceClass(s string) DeviceClass {
	s = strings.ToLower(s)
	switch {
	case s == "":
		return DeviceDesktop
	case strings.Contains(s, "ipad"), strings.Contains(s, "tablet"):
		return DeviceTablet
	case strings.Contains(s, "mobile"), strings.Contains(s, "iphone"), strings.Contains(s, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// northern hemisphere meteorological seasons
func seasonForMonth(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// lastN keeps the first n entries; activity is stored newest first.
func lastN[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T(nil), s...)
}
