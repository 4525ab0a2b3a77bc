package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ContactMessagesTableName = "contact_messages"

// ContactMessage is a submission of the public contact form
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Message   string    `gorm:"size:2000;not null" json:"message"`
	Locale    string    `gorm:"size:5;not null;default:en" json:"locale"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ContactMessage) TableName() string {
	return ContactMessagesTableName
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Message list filters
const (
	MessageStatusAll    = "all"
	MessageStatusUnread = "unread"
	MessageStatusRead   = "read"
)
