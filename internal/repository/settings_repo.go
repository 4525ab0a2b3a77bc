package repository

import (
	"context"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository is the repository for localized site settings
type SettingsRepository struct {
	DB *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// List returns the settings of a locale, or of all locales when empty, sorted
// by key
func (r *SettingsRepository) List(ctx context.Context, locale string) ([]models.Setting, error) {
	settings := []models.Setting{}
	tx := r.DB.WithContext(ctx)
	if locale != "" {
		tx = tx.Where("locale = ?", locale)
	}
	err := tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "locale"}}).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Map returns the settings of a locale keyed by setting key. Null values map
// to the empty string.
func (r *SettingsRepository) Map(ctx context.Context, locale string) (map[string]string, error) {
	settings, err := r.List(ctx, locale)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		if s.Value != nil {
			values[s.Key] = *s.Value
		} else {
			values[s.Key] = ""
		}
	}
	return values, nil
}

// Upsert writes every input in one transaction, inserting or replacing the
// value of each (key, locale)
func (r *SettingsRepository) Upsert(ctx context.Context, inputs []models.SettingInput) error {
	if len(inputs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			value := in.Value
			locale := in.Locale
			if locale == "" {
				locale = models.DefaultLocale
			}
			setting := models.Setting{Key: in.Key, Value: &value, Locale: locale, UpdatedAt: time.Now()}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}, {Name: "locale"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Hero returns the hero slice, falling back to the built-in defaults
func (r *SettingsRepository) Hero(ctx context.Context, locale string) (*models.HeroSettings, error) {
	values, err := r.Map(ctx, locale)
	if err != nil {
		return nil, err
	}
	return &models.HeroSettings{
		Name:        valueOr(values, models.SettingHeroName, models.DefaultHeroName),
		Title:       valueOr(values, models.SettingHeroTitle, models.DefaultHeroTitle),
		Tagline:     valueOr(values, models.SettingHeroTagline, models.DefaultHeroTagline),
		Description: values[models.SettingHeroDescription],
	}, nil
}

// Contact returns the contact slice
func (r *SettingsRepository) Contact(ctx context.Context, locale string) (*models.ContactSettings, error) {
	values, err := r.Map(ctx, locale)
	if err != nil {
		return nil, err
	}
	return &models.ContactSettings{
		Email:         values[models.SettingContactEmail],
		Phone:         values[models.SettingContactPhone],
		Whatsapp:      values[models.SettingContactWhatsapp],
		WorkingStatus: valueOr(values, models.SettingWorkingStatus, models.WorkingStatusAvailable),
	}, nil
}

// Social returns the social links slice
func (r *SettingsRepository) Social(ctx context.Context, locale string) (*models.SocialSettings, error) {
	values, err := r.Map(ctx, locale)
	if err != nil {
		return nil, err
	}
	return &models.SocialSettings{
		GithubURL:   values[models.SettingGithubURL],
		LinkedinURL: values[models.SettingLinkedinURL],
		TwitterURL:  values[models.SettingTwitterURL],
	}, nil
}

func valueOr(values map[string]string, key, fallback string) string {
	if v := values[key]; v != "" {
		return v
	}
	return fallback
}
