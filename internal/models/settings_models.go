package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SettingsTableName = "settings"

// Setting is a localized key/value site setting
type Setting struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_settings_key_locale,priority:1" json:"key"`
	Value     *string   `json:"value"`
	Locale    string    `gorm:"size:5;not null;default:en;uniqueIndex:idx_settings_key_locale,priority:2" json:"locale"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return SettingsTableName
}

func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SettingInput is one key/value pair of a settings update
type SettingInput struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Locale string `json:"locale"`
}

// Setting keys read by the public slices
const (
	SettingHeroName        = "hero_name"
	SettingHeroTitle       = "hero_title"
	SettingHeroTagline     = "hero_tagline"
	SettingHeroDescription = "hero_description"
	SettingContactEmail    = "contact_email"
	SettingContactPhone    = "contact_phone"
	SettingContactWhatsapp = "contact_whatsapp"
	SettingWorkingStatus   = "working_status"
	SettingGithubURL       = "github_url"
	SettingLinkedinURL     = "linkedin_url"
	SettingTwitterURL      = "twitter_url"
	SettingLocation        = "location"
)

// Working statuses shown on the contact section
const (
	WorkingStatusAvailable   = "available"
	WorkingStatusBusy        = "busy"
	WorkingStatusUnavailable = "unavailable"
)

// HeroSettings is the hero section slice
type HeroSettings struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
}

// ContactSettings is the contact section slice
type ContactSettings struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Whatsapp      string `json:"whatsapp"`
	WorkingStatus string `json:"working_status"`
}

// SocialSettings is the social links slice
type SocialSettings struct {
	GithubURL   string `json:"github_url"`
	LinkedinURL string `json:"linkedin_url"`
	TwitterURL  string `json:"twitter_url"`
}

// Defaults for hero keys that have never been set
const (
	DefaultHeroName    = "M. ALDIAN RIZKI LAMANI"
	DefaultHeroTitle   = "Fullstack Developer & Tech Lead"
	DefaultHeroTagline = "Leading teams to ship scalable systems in the AI era."
)
