package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	internal "costwatch/internal/models"
	"costwatch/pkg/models"
)

// gormBackend stores entries in a SQLite database, one row per
// (project, date), payload serialized as JSON.
type gormBackend struct {
	db *gorm.DB
}

// NewSQLiteBackend opens (or creates) a SQLite cache database at path and
// migrates the schema.
func NewSQLiteBackend(path string) (Backend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open cache database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&internal.CostCacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrate cache schema: %w", err)
	}
	return &gormBackend{db: db}, nil
}

func (g *gormBackend) Get(projectID, date string) (*Entry, error) {
	var row internal.CostCacheEntry
	err := g.db.Where("project_id = ? AND usage_date = ?", projectID, date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache row: %w", err)
	}

	var payload []models.DailyServiceTotal
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode cache payload: %w", err)
		}
	}

	return &Entry{
		ProjectID:   row.ProjectID,
		UsageDate:   row.UsageDate,
		Maturity:    row.Maturity,
		Payload:     payload,
		RetrievedAt: row.RetrievedAt,
	}, nil
}

func (g *gormBackend) Put(entry *Entry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	var existing internal.CostCacheEntry
	err = g.db.Where("project_id = ? AND usage_date = ?", entry.ProjectID, entry.UsageDate).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := internal.CostCacheEntry{
			ProjectID:   entry.ProjectID,
			UsageDate:   entry.UsageDate,
			Maturity:    entry.Maturity,
			Payload:     payload,
			RetrievedAt: entry.RetrievedAt,
		}
		if err := g.db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert cache row: %w", err)
		}
	case err != nil:
		return fmt.Errorf("query cache row: %w", err)
	default:
		updates := map[string]interface{}{
			"maturity":     entry.Maturity,
			"payload":      payload,
			"retrieved_at": entry.RetrievedAt,
		}
		if err := g.db.Model(&existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("update cache row: %w", err)
		}
	}
	return nil
}

func (g *gormBackend) List(projectID string) ([]string, error) {
	var dates []string
	err := g.db.Model(&internal.CostCacheEntry{}).
		Where("project_id = ?", projectID).
		Pluck("usage_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("list cache rows: %w", err)
	}
	return dates, nil
}
