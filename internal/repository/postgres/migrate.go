package postgres

import (
	"fmt"

	"myArtMarket/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the recommender reads or writes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Artwork{},
		&domain.FeedbackEvent{},
		&domain.UserPreference{},
		&domain.ArtworkView{},
		&domain.SearchQuery{},
		&userModelRow{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
