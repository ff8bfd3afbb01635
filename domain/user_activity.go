package domain

import (
	"time"

	"gorm.io/datatypes"
)

// UserPreference holds what a user told us about their taste.
type UserPreference struct {
	UserID          uint                        `gorm:"column:user_id;primaryKey" json:"user_id"`
	Budget          *float64                    `gorm:"column:budget;type:numeric" json:"budget,omitempty"`
	PreferredStyles datatypes.JSONSlice[string] `gorm:"column:preferred_styles;type:jsonb" json:"preferred_styles"`
	DeviceClass     string                      `gorm:"column:device_class;type:text" json:"device_class"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

type ArtworkView struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;index"`
	ArtworkID uint64    `gorm:"column:artwork_id;not null"`
	ViewedAt  time.Time `gorm:"column:viewed_at;autoCreateTime"`
}

func (ArtworkView) TableName() string {
	return "artwork_views"
}

type SearchQuery struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"column:user_id;not null;index"`
	Query      string    `gorm:"column:query;type:text"`
	SearchedAt time.Time `gorm:"column:searched_at;autoCreateTime"`
}

func (SearchQuery) TableName() string {
	return "search_queries"
}

// UserActivity is the history snapshot used to build a request context.
type UserActivity struct {
	UserID          uint
	RecentViews     []uint64
	RecentSearches  []string
	Budget          *float64
	PreferredStyles []string
	DeviceClass     string
}
