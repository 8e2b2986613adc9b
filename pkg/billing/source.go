package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"

	"costwatch/pkg/config"
	"costwatch/pkg/models"
)

// querier is the slice of the client the source needs
type querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
}

// Source fetches line items for one billing export table
type Source struct {
	db      querier
	table   string
	timeout time.Duration
}

// NewSource builds a Source over a connected client
func NewSource(client *Client, cfg *config.ReportConfig) *Source {
	return &Source{
		db:      client,
		table:   cfg.BillingTable,
		timeout: time.Duration(cfg.QueryTimeout) * time.Second,
	}
}

const (
	// estimatedRowBytes approximates the bytes scanned per billing row,
	// used to turn a row estimate into a scan cost
	estimatedRowBytes = 256
	// costPerTBUSD prices a scanned terabyte
	costPerTBUSD = 5
)

// Estimate is a dry-run result: how much data a fetch would scan
type Estimate struct {
	Rows    uint64
	Bytes   uint64
	CostUSD decimal.Decimal
}

// EstimateScanCost dry-runs the line-item query via EXPLAIN ESTIMATE and
// prices the scan. Nothing is executed against the billing data itself.
func (s *Source) EstimateScanCost(ctx context.Context, projectID string, start, end time.Time) (*Estimate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := "EXPLAIN ESTIMATE " + buildLineItemQuery(s.table)
	rows, err := s.db.Query(ctx, query, queryArgs(projectID, start, end)...)
	if err != nil {
		return nil, wrapQueryError("dry-run estimate", s.table, err)
	}
	defer rows.Close()

	var totalRows uint64
	for rows.Next() {
		var database, table string
		var parts, rowCount, marks uint64
		if err := rows.Scan(&database, &table, &parts, &rowCount, &marks); err != nil {
			return nil, wrapQueryError("dry-run estimate scan", s.table, err)
		}
		totalRows += rowCount
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("dry-run estimate", s.table, err)
	}

	return estimateFromRows(totalRows), nil
}

// estimateFromRows prices a row estimate
func estimateFromRows(rows uint64) *Estimate {
	bytes := rows * estimatedRowBytes
	cost := decimal.NewFromInt(int64(bytes)).
		Mul(decimal.NewFromInt(costPerTBUSD)).
		Div(decimal.NewFromInt(1_000_000_000_000))
	return &Estimate{Rows: rows, Bytes: bytes, CostUSD: cost}
}

// FetchLineItems returns per (service, sku, day) cost rows for a project
// over [start, end]. Credits are folded in; tax and adjustment rows are
// excluded. Amounts come back as strings so no precision is lost.
func (s *Source) FetchLineItems(ctx context.Context, projectID string, start, end time.Time) ([]models.LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.Query(ctx, buildLineItemQuery(s.table), queryArgs(projectID, start, end)...)
	if err != nil {
		return nil, wrapQueryError("fetch line items", s.table, err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var service, sku, usageDate, amount string
		if err := rows.Scan(&service, &sku, &usageDate, &amount); err != nil {
			return nil, wrapQueryError("scan line item", s.table, err)
		}

		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, wrapQueryError("parse amount", s.table,
				fmt.Errorf("bad amount %q for %s/%s on %s: %w", amount, service, sku, usageDate, err))
		}

		items = append(items, models.LineItem{
			ProjectID: projectID,
			Service:   service,
			SKU:       sku,
			UsageDate: usageDate,
			Amount:    value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("fetch line items", s.table, err)
	}

	return items, nil
}

// buildLineItemQuery builds the grouped line-item query. The table name
// comes from configuration, everything else is parameterized.
func buildLineItemQuery(table string) string {
	var b strings.Builder
	b.WriteString("SELECT service_description AS service, ")
	b.WriteString("sku_description AS sku, ")
	b.WriteString("toString(usage_date) AS usage_date, ")
	b.WriteString("toString(sum(cost) + sum(credits)) AS amount ")
	fmt.Fprintf(&b, "FROM %s ", table)
	b.WriteString("WHERE project_id = ? AND usage_date >= ? AND usage_date <= ? ")
	b.WriteString("AND cost_type NOT IN ('tax', 'adjustment') ")
	b.WriteString("GROUP BY service, sku, usage_date ")
	b.WriteString("ORDER BY usage_date, service, sku")
	return b.String()
}

func queryArgs(projectID string, start, end time.Time) []interface{} {
	return []interface{}{
		projectID,
		start.Format(models.DateLayout),
		end.Format(models.DateLayout),
	}
}
