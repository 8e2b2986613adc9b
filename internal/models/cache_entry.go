package models

import (
	"time"

	"gorm.io/datatypes"
)

// CacheMaturity marks whether a cached day may still change upstream
type CacheMaturity string

const (
	CacheMaturityProvisional CacheMaturity = "provisional"
	CacheMaturityFinal       CacheMaturity = "final"
)

// CostCacheEntry persists one day of aggregated cost data for a project.
// Payload holds the serialized daily service totals for that usage date.
type CostCacheEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   string         `gorm:"uniqueIndex:idx_project_date;not null" json:"project_id"`
	UsageDate   string         `gorm:"uniqueIndex:idx_project_date;not null" json:"usage_date"` // YYYY-MM-DD
	Maturity    CacheMaturity  `gorm:"default:provisional" json:"maturity"`
	Payload     datatypes.JSON `json:"payload"`
	RetrievedAt time.Time      `json:"retrieved_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName returns the table name for CostCacheEntry model
func (CostCacheEntry) TableName() string {
	return "cost_cache_entries"
}
