// Package models contains the models for the Portfolio API
package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Supported content locales
const (
	LocaleEN = "en"
	LocaleID = "id"

	DefaultLocale = LocaleEN
)

// Locales lists every supported locale in display order
var Locales = []string{LocaleEN, LocaleID}

// IsSupportedLocale reports whether locale is one the site is published in
func IsSupportedLocale(locale string) bool {
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// Base holds the columns shared by every orderable, localized content entity
type Base struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Locale     string    `gorm:"size:5;not null;default:en;index" json:"locale"`
	OrderIndex int       `gorm:"not null;default:0;index" json:"order_index"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not provide one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Locale == "" {
		b.Locale = DefaultLocale
	}
	return nil
}

// ContentBase gives generic code access to the shared columns
func (b *Base) ContentBase() *Base {
	return b
}

// StringList is a text[] column on Postgres and a text column elsewhere
type StringList []string

// Value encodes the list as a Postgres array literal
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(l).Value()
}

// Scan decodes a Postgres array literal
func (l *StringList) Scan(src interface{}) error {
	return (*pq.StringArray)(l).Scan(src)
}

// GormDBDataType picks the column type per dialect
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// ReorderItem is one entry of a reorder request
type ReorderItem struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}
