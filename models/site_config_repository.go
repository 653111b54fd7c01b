package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConfigNotFound is returned when the site config row does not exist.
var ErrConfigNotFound = errors.New("site config not found")

type SiteConfigRepository struct {
	db *gorm.DB
}

func NewSiteConfigRepository(db *gorm.DB) *SiteConfigRepository {
	return &SiteConfigRepository{db: db}
}

func (r *SiteConfigRepository) GetConfig(ctx context.Context) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig overwrites the editable fields of the row with the given id.
func (r *SiteConfigRepository) UpdateConfig(ctx context.Context, id uuid.UUID, cfg *SiteConfig) (*SiteConfig, error) {
	res := r.db.WithContext(ctx).
		Model(&SiteConfig{}).
		Where("id = ?", id).
		Select("location", "attractions", "rules", "whatsapp_link", "hero_title",
			"hero_description", "event_date", "primary_color", "secondary_color").
		Updates(cfg)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConfigNotFound
	}

	var updated SiteConfig
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// SaveConfig inserts or replaces the singleton row.
func (r *SiteConfigRepository) SaveConfig(ctx context.Context, cfg *SiteConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
