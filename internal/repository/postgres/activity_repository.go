package postgres

import (
	"context"
	"errors"
	"fmt"

	"myArtMarket/business/recommendation"
	"myArtMarket/domain"

	"gorm.io/gorm"
)

// ActivityRepository implements recommendation.ActivityRepository using the
// user_preferences, artwork_views and search_queries tables.
type ActivityRepository struct {
	DB *gorm.DB

	viewLimit   int
	searchLimit int
}

// Compile-time check that the struct implements the interface.
var _ recommendation.ActivityRepository = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB, viewLimit, searchLimit int) *ActivityRepository {
	return &ActivityRepository{DB: db, viewLimit: viewLimit, searchLimit: searchLimit}
}

func (r *ActivityRepository) GetUserActivity(
	ctx context.Context,
	userID uint,
) (domain.UserActivity, error) {

	if err := ctx.Err(); err != nil {
		return domain.UserActivity{}, fmt.Errorf("context error: %w", err)
	}

	activity := domain.UserActivity{UserID: userID}

	var pref domain.UserPreference
	err := r.DB.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no preferences yet, just an empty profile
	case err != nil:
		return domain.UserActivity{}, fmt.Errorf("failed to query user_preferences: %w", err)
	default:
		activity.Budget = pref.Budget
		activity.PreferredStyles = []string(pref.PreferredStyles)
		activity.DeviceClass = pref.DeviceClass
	}

	// newest first, matching how the request context trims history
	var views []uint64
	if err := r.DB.WithContext(ctx).
		Model(&domain.ArtworkView{}).
		Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Limit(r.viewLimit).
		Pluck("artwork_id", &views).Error; err != nil {
		return domain.UserActivity{}, fmt.Errorf("failed to query artwork_views: %w", err)
	}
	activity.RecentViews = views

	var searches []string
	if err := r.DB.WithContext(ctx).
		Model(&domain.SearchQuery{}).
		Where("user_id = ?", userID).
		Order("searched_at DESC").
		Limit(r.searchLimit).
		Pluck("query", &searches).Error; err != nil {
		return domain.UserActivity{}, fmt.Errorf("failed to query search_queries: %w", err)
	}
	activity.RecentSearches = searches

	return activity, nil
}
