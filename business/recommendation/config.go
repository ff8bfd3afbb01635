package recommendation

import (
	"time"

	"myArtMarket/business/bandit"
)

type Config struct {
	Bandit bandit.Config

	// per-call budget for one narrative request
	NarrativeTimeout time.Duration
	// max narrative calls in flight per request; 0 means unbounded
	NarrativeConcurrency int
}

const (
	defaultNarrativeTimeout     = 2 * time.Second
	defaultNarrativeConcurrency = 8
)

func DefaultConfig() Config {
	return Config{
		Bandit:               bandit.DefaultConfig(),
		NarrativeTimeout:     defaultNarrativeTimeout,
		NarrativeConcurrency: defaultNarrativeConcurrency,
	}
}
