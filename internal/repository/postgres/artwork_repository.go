package postgres

import (
	"context"
	"errors"
	"fmt"

	"myArtMarket/business/recommendation"
	"myArtMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArtworkRepository struct {
	DB *gorm.DB

	// pool size cap; zero means unbounded
	poolLimit int
}

var _ recommendation.CatalogSource = (*ArtworkRepository)(nil)

func NewArtworkRepository(db *gorm.DB, poolLimit int) *ArtworkRepository {
	return &ArtworkRepository{
		DB:        db,
		poolLimit: poolLimit,
	}
}

// Upsert inserts or replaces artworks by id. Used to import catalog files.
func (r *ArtworkRepository) Upsert(ctx context.Context, items []domain.Artwork) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		},
	).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to upsert artworks: %w", err)
	}

	return nil
}

func (r *ArtworkRepository) FindArtwork(ctx context.Context, id uint64) (domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artwork{}, fmt.Errorf("context error: %w", err)
	}

	var artwork domain.Artwork

	err := r.DB.WithContext(ctx).First(&artwork, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Artwork{}, domain.ErrArtworkNotFound
		}
		return domain.Artwork{}, fmt.Errorf("failed to find artwork: %w", err)
	}

	return artwork, nil
}

// FetchCandidatePool returns available artworks, most popular first so a
// capped pool keeps the items users actually interact with.
func (r *ArtworkRepository) FetchCandidatePool(ctx context.Context) ([]domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("is_available = ?", true).
		Order("view_count + 3 * like_count + 5 * save_count DESC").
		Order("id ASC")
	if r.poolLimit > 0 {
		q = q.Limit(r.poolLimit)
	}

	var artworks []domain.Artwork
	if err := q.Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch candidate pool: %w", err)
	}

	return artworks, nil
}
