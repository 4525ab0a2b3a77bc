// Package repository contains the repository layer for the Portfolio API
package repository

import (
	"fmt"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres connects to a Postgres database and returns a GORM database object
func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Initializing Postgres")
	zaplogger.Info(config.SingleLine)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(GormLogLevel(cfg.PostgresLogLevel)),
	}

	// Open database connection
	postgresDSN := fmt.Sprintf("%s search_path=%s,public", cfg.PostgresDsn, cfg.PostgresSchema)
	db, err := gorm.Open(postgres.Open(postgresDSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %v", err)
	}

	zaplogger.Info("  * connected")

	// Create the schema if it doesn't exist
	createSchemaSql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", cfg.PostgresSchema)
	if err := db.Exec(createSchemaSql).Error; err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}
	zaplogger.Info("  * migrating schema: \"" + cfg.PostgresSchema + "\"")

	// AutoMigrate will create tables and add/modify columns
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	return db, nil
}

// GormLogLevel maps a config level name to a gorm log level
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// AutoMigrate creates or updates every table the API owns
func AutoMigrate(db *gorm.DB) error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{models.EducationTableName, &models.Education{}},
		{models.ExperienceTableName, &models.Experience{}},
		{models.ProjectsTableName, &models.Project{}},
		{models.SkillsTableName, &models.Skill{}},
		{models.OrganizationsTableName, &models.Organization{}},
		{models.TestimonialsTableName, &models.Testimonial{}},
		{models.CertificationsTableName, &models.Certification{}},
		{models.SettingsTableName, &models.Setting{}},
		{models.ContactMessagesTableName, &models.ContactMessage{}},
	}

	zaplogger.Info("  * migrating tables")
	for _, table := range tables {
		if err := db.AutoMigrate(table.model); err != nil {
			return fmt.Errorf("failed to auto migrate table: %s, err:%v", table.name, err)
		}
		zaplogger.Info("    - \"" + table.name + "\"")
	}

	return nil
}
