package models

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the canonical day key used across billing queries, cache
// entries and report rendering
const DateLayout = "2006-01-02"

// LineItem is one raw billing row: cost for a (service, sku) pair on one
// usage day, credits already folded in as negative amounts.
type LineItem struct {
	ProjectID string          `json:"project_id"`
	Service   string          `json:"service"`
	SKU       string          `json:"sku"`
	UsageDate string          `json:"usage_date"` // YYYY-MM-DD
	Amount    decimal.Decimal `json:"amount"`
}

// DailyServiceTotal is the per-day cost of one display category under a
// service, after SKU normalization. This is the unit the cache persists.
type DailyServiceTotal struct {
	ProjectID string          `json:"project_id"`
	Service   string          `json:"service"`
	Category  string          `json:"category"`
	UsageDate string          `json:"usage_date"` // YYYY-MM-DD
	Amount    decimal.Decimal `json:"amount"`
}

// ServiceCategoryTotal is an aggregated category amount inside a service
// breakdown, ephemeral per run.
type ServiceCategoryTotal struct {
	Service  string          `json:"service"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

