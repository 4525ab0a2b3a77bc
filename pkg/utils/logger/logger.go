// Package logger records admin actions into a database audit table
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditTableName is the table audit entries are written to
var AuditTableName = "_admin_audit"

// Action is the kind of change an admin made
type Action string

const (
	CREATE     Action = "CREATE"
	UPDATE     Action = "UPDATE"
	DELETE     Action = "DELETE"
	BULKDELETE Action = "BULK_DELETE"
	REORDER    Action = "REORDER"
	LOGIN      Action = "LOGIN"
	LOGOUT     Action = "LOGOUT"
	UPLOAD     Action = "UPLOAD"
)

// Entry represents an audit entry in the database
type Entry struct {
	ID        uint32    `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index"`
	Entity    string    `gorm:"index"`
	Action    Action    `gorm:"index"`
	ClientIP  string
	Fields    datatypes.JSON
}

// TableName overrides the table name used by Entry
func (Entry) TableName() string {
	return AuditTableName
}

// Logger writes audit entries
type Logger struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a new Logger instance and migrates its table
func New(db *gorm.DB) (*Logger, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate table %s: %w", AuditTableName, err)
	}
	return &Logger{db: db, now: time.Now}, nil
}

func (l *Logger) record(ctx context.Context, entity string, action Action, clientIP string, fields map[string]interface{}) error {
	var fieldsJSON datatypes.JSON
	if len(fields) > 0 {
		jsonBytes, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
		fieldsJSON = datatypes.JSON(jsonBytes)
	}

	entry := Entry{
		Timestamp: l.now(),
		Entity:    entity,
		Action:    action,
		ClientIP:  clientIP,
		Fields:    fieldsJSON,
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Record stores an audit entry. Failures are logged, never returned: the audited
// action already happened.
func (l *Logger) Record(ctx context.Context, entity string, action Action, clientIP string, fields map[string]interface{}) {
	if l == nil {
		return
	}
	if err := l.record(ctx, entity, action, clientIP, fields); err != nil {
		zaplogger.Error("Failed to record audit entry", zaplogger.Fields{
			"entity": entity,
			"action": string(action),
			"error":  err,
		})
	}
}

// Recent returns the latest audit entries, newest first
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []Entry
	err := l.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
