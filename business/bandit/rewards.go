package bandit

import (
	"errors"
	"fmt"

	"myArtMarket/domain"
)

var ErrUnknownEvent = errors.New("unknown event type")

// RewardTable maps feedback events to rewards.
type RewardTable struct {
	Impression float64
	Click      float64
	Save       float64
	AddToCart  float64
	Purchase   float64
	Dismiss    float64
}

const (
	defaultRewardImpression = 0.0
	defaultRewardClick      = 0.3
	defaultRewardSave       = 0.5
	defaultRewardAddToCart  = 0.7
	defaultRewardPurchase   = 1.0
	defaultRewardDismiss    = -0.2
)

func DefaultRewardTable() RewardTable {
	return RewardTable{
		Impression: defaultRewardImpression,
		Click:      defaultRewardClick,
		Save:       defaultRewardSave,
		AddToCart:  defaultRewardAddToCart,
		Purchase:   defaultRewardPurchase,
		Dismiss:    defaultRewardDismiss,
	}
}

// RewardForEvent turns a feedback event type into a numeric reward.
func (t RewardTable) RewardForEvent(eventType string) (float64, error) {
	switch eventType {
	case domain.EventImpression:
		return t.Impression, nil
	case domain.EventClick:
		return t.Click, nil
	case domain.EventSave:
		return t.Save, nil
	case domain.EventAddToCart:
		return t.AddToCart, nil
	case domain.EventPurchase:
		return t.Purchase, nil
	case domain.EventDismiss:
		return t.Dismiss, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
}
