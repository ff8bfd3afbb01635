package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventImpression = "impression"
	EventClick      = "click"
	EventSave       = "save"
	EventAddToCart  = "add_to_cart"
	EventPurchase   = "purchase"
	EventDismiss    = "dismiss"
)

// FeedbackEvent is one user interaction with a recommended artwork.
type FeedbackEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	ArtworkID uint64    `gorm:"column:artwork_id;not null" json:"artwork_id"`
	EventType string    `gorm:"column:event_type;not null" json:"event_type"`
	Reward    float64   `gorm:"column:reward" json:"reward"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (FeedbackEvent) TableName() string {
	return "feedback_events"
}

type Recommendation struct {
	ArtworkID       uint64  `json:"artwork_id"`
	Title           string  `json:"title"`
	ArtistID        uint64  `json:"artist_id"`
	Price           float64 `json:"price"`
	Confidence      float64 `json:"confidence"`       // min(0.99, reward + 0.1·uncertainty)
	MatchConfidence int     `json:"match_confidence"` // 0–100
	Reason          string  `json:"reason"`           // exploit | explore
	Explanation     string  `json:"explanation"`
	ExpectedReward  float64 `json:"expected_reward"`
	Uncertainty     float64 `json:"uncertainty"`
}

type DebugRecommendation struct {
	ArtworkID      uint64         `json:"artwork_id"`
	Rank           int            `json:"rank"`
	Reason         string         `json:"reason"`
	ExpectedReward float64        `json:"expected_reward"` // θᵀx
	Uncertainty    float64        `json:"uncertainty"`     // sqrt(xᵀA⁻¹x)
	UCB            float64        `json:"ucb"`             // reward + α·uncertainty
	Confidence     float64        `json:"confidence"`
	Features       []float64      `json:"features"`
	Context        map[string]any `json:"context,omitempty"`
}

// ModelSummary is an inspection view of a user's bandit state.
type ModelSummary struct {
	UserID     uint      `json:"user_id"`
	Updates    int       `json:"updates"`
	Theta      []float64 `json:"theta"`
	Diagonal   []float64 `json:"a_diagonal"`
	WriteState string    `json:"write_state"`
	UpdatedAt  time.Time `json:"updated_at"`
}
