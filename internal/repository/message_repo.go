package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// MessageRepository is the repository for contact form messages
type MessageRepository struct {
	DB *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

// Create stores a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

// List returns messages newest first, filtered by read status
func (r *MessageRepository) List(ctx context.Context, status string) ([]models.ContactMessage, error) {
	messages := []models.ContactMessage{}
	tx := r.DB.WithContext(ctx)
	switch status {
	case models.MessageStatusUnread:
		tx = tx.Where("is_read = ?", false)
	case models.MessageStatusRead:
		tx = tx.Where("is_read = ?", true)
	}
	if err := tx.Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// Get returns one message
func (r *MessageRepository) Get(ctx context.Context, id string) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetRead marks a message read or unread
func (r *MessageRepository) SetRead(ctx context.Context, id string, read bool) (*models.ContactMessage, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("is_read", read)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes one message
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes each id on its own and reports how many failed
func (r *MessageRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted, failed := 0, 0
	for _, id := range ids {
		result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
		if result.Error != nil {
			failed++
			zaplogger.Error("message delete failed", zaplogger.Fields{"id": id, "error": result.Error})
			continue
		}
		deleted += int(result.RowsAffected)
	}
	if failed > 0 {
		return deleted, fmt.Errorf("%d of %d deletes failed", failed, len(ids))
	}
	return deleted, nil
}

// CountUnread returns the number of unread messages
func (r *MessageRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// Count returns the number of messages
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Count(&count).Error
	return count, err
}
