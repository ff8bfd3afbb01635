package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/business/recommendation"
	"myArtMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BanditRepository struct {
	DB *gorm.DB
}

var (
	_ bandit.ModelRepository            = (*BanditRepository)(nil)
	_ recommendation.FeedbackRepository = (*BanditRepository)(nil)
)

func NewBanditRepository(db *gorm.DB) *BanditRepository {
	return &BanditRepository{DB: db}
}

// ---- Events ----

func (r *BanditRepository) SaveEvent(ctx context.Context, event domain.FeedbackEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save feedback event: %w", err)
	}

	return nil
}

// ---- Models ----

// CREATE TABLE public.user_bandit_models (
//     user_id    BIGINT PRIMARY KEY,
//     model_json JSONB NOT NULL,
//     updates    INT DEFAULT 0,
//     updated_at TIMESTAMPTZ DEFAULT NOW()
// );
type userModelRow struct {
	UserID    uint      `gorm:"column:user_id;primaryKey"`
	ModelJSON []byte    `gorm:"column:model_json;type:jsonb;not null"`
	Updates   int       `gorm:"column:updates"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModelRow) TableName() string {
	return "user_bandit_models"
}

func newUserModelRow(userID uint, m *bandit.UserModel) (userModelRow, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return userModelRow{}, fmt.Errorf("failed to marshal model: %w", err)
	}
	return userModelRow{
		UserID:    userID,
		ModelJSON: raw,
		Updates:   m.Updates,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (row userModelRow) model() (*bandit.UserModel, error) {
	var m bandit.UserModel
	if err := json.Unmarshal(row.ModelJSON, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model_json: %w", err)
	}
	return &m, nil
}

func (r *BanditRepository) LoadModel(ctx context.Context, userID uint) (*bandit.UserModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var row userModelRow
	err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user_bandit_models: %w", err)
	}

	return row.model()
}

func (r *BanditRepository) SaveModel(ctx context.Context, userID uint, m *bandit.UserModel) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row, err := newUserModelRow(userID, m)
	if err != nil {
		return err
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert user_bandit_models: %w", err)
	}

	return nil
}
