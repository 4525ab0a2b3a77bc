package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches the requested id
var ErrNotFound = errors.New("record not found")

// ContentRepository is the CRUD and ordering repository for one content table
type ContentRepository[T any] struct {
	DB *gorm.DB
}

// NewContentRepository creates a repository for the table of T
func NewContentRepository[T any](db *gorm.DB) *ContentRepository[T] {
	return &ContentRepository[T]{DB: db}
}

// List returns the rows of a locale by order_index ascending.
// An empty locale returns every locale.
func (r *ContentRepository[T]) List(ctx context.Context, locale string) ([]T, error) {
	return r.ListWhere(ctx, locale, "")
}

// ListWhere is List with an extra condition
func (r *ContentRepository[T]) ListWhere(ctx context.Context, locale string, query string, args ...interface{}) ([]T, error) {
	items := []T{}
	tx := r.DB.WithContext(ctx)
	if locale != "" {
		tx = tx.Where("locale = ?", locale)
	}
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Order("order_index ASC").Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the row with the given id
func (r *ContentRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.FindOne(ctx, "id = ?", id)
}

// FindOne returns the first row matching the condition
func (r *ContentRepository[T]) FindOne(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var item T
	err := r.DB.WithContext(ctx).Where(query, args...).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a row; the id is generated when empty
func (r *ContentRepository[T]) Create(ctx context.Context, item *T) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

// Update replaces every column of the row except id and created_at and
// returns the stored row
func (r *ContentRepository[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	result := r.DB.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(item)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the row with the given id
func (r *ContentRepository[T]) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes each id on its own. Deletes that already succeeded are
// kept when a later one fails; the returned error names how many failed.
func (r *ContentRepository[T]) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted, failed := 0, 0
	for _, id := range ids {
		result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(new(T))
		if result.Error != nil {
			failed++
			zaplogger.Error("bulk delete failed", zaplogger.Fields{"id": id, "error": result.Error})
			continue
		}
		deleted += int(result.RowsAffected)
	}
	if failed > 0 {
		return deleted, fmt.Errorf("%d of %d deletes failed", failed, len(ids))
	}
	return deleted, nil
}

// Reorder sets order_index of each listed row. Updates are independent, so a
// failure leaves the earlier ones applied; the returned error names how many
// failed.
func (r *ContentRepository[T]) Reorder(ctx context.Context, items []models.ReorderItem) error {
	failed := 0
	for _, item := range items {
		err := r.DB.WithContext(ctx).
			Model(new(T)).
			Where("id = ?", item.ID).
			Update("order_index", item.OrderIndex).Error
		if err != nil {
			failed++
			zaplogger.Error("reorder update failed", zaplogger.Fields{"id": item.ID, "error": err})
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d order updates failed", failed, len(items))
	}
	return nil
}

// Count returns the number of rows of a locale, or of all locales when empty
func (r *ContentRepository[T]) Count(ctx context.Context, locale string) (int64, error) {
	var count int64
	tx := r.DB.WithContext(ctx).Model(new(T))
	if locale != "" {
		tx = tx.Where("locale = ?", locale)
	}
	err := tx.Count(&count).Error
	return count, err
}
