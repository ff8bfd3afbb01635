package bandit

import "time"

type Config struct {
	// exploration weight on the uncertainty term, fixed per store
	Alpha float64
	// share of each result list tagged explore
	ExplorationRatio float64

	DefaultLimit int

	// quiet period after the last update before a durable write
	PersistDebounce time.Duration
	// upper bound on one durable write issued by the debouncer
	PersistTimeout time.Duration

	// resident models kept in memory; clean ones beyond this are evicted
	MaxResidentModels int

	RecentViews    int
	RecentSearches int

	Rewards RewardTable
}

const (
	defaultLimit             = 6
	defaultPersistDebounce   = 5 * time.Second
	defaultPersistTimeout    = 5 * time.Second
	defaultMaxResidentModels = 10_000
)

func DefaultConfig() Config {
	return Config{
		Alpha:             DefaultAlpha,
		ExplorationRatio:  DefaultExplorationRatio,
		DefaultLimit:      defaultLimit,
		PersistDebounce:   defaultPersistDebounce,
		PersistTimeout:    defaultPersistTimeout,
		MaxResidentModels: defaultMaxResidentModels,
		RecentViews:       defaultRecentViews,
		RecentSearches:    defaultRecentSearches,
		Rewards:           DefaultRewardTable(),
	}
}

func (cfg Config) RankParams() RankParams {
	return RankParams{
		Alpha:            cfg.Alpha,
		ExplorationRatio: cfg.ExplorationRatio,
	}
}
