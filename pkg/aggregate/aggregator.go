// Package aggregate turns raw billing line items into per-service and
// per-category cost totals with unbroken daily series. All summation is
// decimal; nothing is rounded until rendering.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"costwatch/pkg/models"
	"costwatch/pkg/normalize"
)

// Aggregator groups line items by service and normalized category
type Aggregator struct {
	normalizer *normalize.Normalizer
}

// NewAggregator builds an Aggregator around a SKU normalizer
func NewAggregator(n *normalize.Normalizer) *Aggregator {
	return &Aggregator{normalizer: n}
}

// Result is the aggregation of one project over one date range. It is
// ephemeral, recomputed every run, and feeds the trend and report stages.
type Result struct {
	ProjectID string
	// Dates is the full ordered day range, including days with no data
	Dates []string

	serviceTotals  map[string]decimal.Decimal
	categoryTotals map[string]map[string]decimal.Decimal
	serviceDaily   map[string]map[string]decimal.Decimal
	categoryDaily  map[string]map[string]map[string]decimal.Decimal
}

// Aggregate normalizes and sums line items for a project across a date
// range. An empty item set yields an empty but valid result.
func (a *Aggregator) Aggregate(projectID string, items []models.LineItem, start, end time.Time) *Result {
	r := newResult(projectID, start, end)
	for _, item := range items {
		category := a.normalizer.Normalize(item.Service, item.SKU)
		r.add(item.Service, category, item.UsageDate, item.Amount)
	}
	return r
}

// FromTotals rebuilds a Result from cached daily service totals, which are
// already normalized.
func FromTotals(projectID string, totals []models.DailyServiceTotal, start, end time.Time) *Result {
	r := newResult(projectID, start, end)
	for _, t := range totals {
		r.add(t.Service, t.Category, t.UsageDate, t.Amount)
	}
	return r
}

func newResult(projectID string, start, end time.Time) *Result {
	return &Result{
		ProjectID:      projectID,
		Dates:          DateRange(start, end),
		serviceTotals:  map[string]decimal.Decimal{},
		categoryTotals: map[string]map[string]decimal.Decimal{},
		serviceDaily:   map[string]map[string]decimal.Decimal{},
		categoryDaily:  map[string]map[string]map[string]decimal.Decimal{},
	}
}

func (r *Result) add(service, category, date string, amount decimal.Decimal) {
	r.serviceTotals[service] = r.serviceTotals[service].Add(amount)

	if r.categoryTotals[service] == nil {
		r.categoryTotals[service] = map[string]decimal.Decimal{}
	}
	r.categoryTotals[service][category] = r.categoryTotals[service][category].Add(amount)

	if r.serviceDaily[service] == nil {
		r.serviceDaily[service] = map[string]decimal.Decimal{}
	}
	r.serviceDaily[service][date] = r.serviceDaily[service][date].Add(amount)

	if r.categoryDaily[service] == nil {
		r.categoryDaily[service] = map[string]map[string]decimal.Decimal{}
	}
	if r.categoryDaily[service][category] == nil {
		r.categoryDaily[service][category] = map[string]decimal.Decimal{}
	}
	r.categoryDaily[service][category][date] = r.categoryDaily[service][category][date].Add(amount)
}

// Empty reports whether no line item contributed to the result
func (r *Result) Empty() bool {
	return len(r.serviceTotals) == 0
}

// Services returns all services seen, name ascending
func (r *Result) Services() []string {
	services := make([]string, 0, len(r.serviceTotals))
	for s := range r.serviceTotals {
		services = append(services, s)
	}
	sort.Strings(services)
	return services
}

// ServiceTotal returns the summed cost of a service over the range
func (r *Result) ServiceTotal(service string) decimal.Decimal {
	return r.serviceTotals[service]
}

// Total returns the grand total over all services
func (r *Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range r.serviceTotals {
		total = total.Add(amount)
	}
	return total
}

// Categories returns a service's category breakdown sorted by amount
// descending, ties broken by label ascending.
func (r *Result) Categories(service string) []models.ServiceCategoryTotal {
	byCategory := r.categoryTotals[service]
	out := make([]models.ServiceCategoryTotal, 0, len(byCategory))
	for category, amount := range byCategory {
		out = append(out, models.ServiceCategoryTotal{
			Service:  service,
			Category: category,
			Amount:   amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailySeries returns the per-day totals of a service aligned to Dates,
// zero-filled so the trend stage sees an unbroken series.
func (r *Result) DailySeries(service string) []decimal.Decimal {
	byDate := r.serviceDaily[service]
	series := make([]decimal.Decimal, len(r.Dates))
	for i, date := range r.Dates {
		series[i] = byDate[date]
	}
	return series
}

// DailyTotals flattens the result into cacheable per (service, category,
// date) rows, deterministically ordered.
func (r *Result) DailyTotals() []models.DailyServiceTotal {
	var out []models.DailyServiceTotal
	for _, service := range r.Services() {
		categories := make([]string, 0, len(r.categoryDaily[service]))
		for c := range r.categoryDaily[service] {
			categories = append(categories, c)
		}
		sort.Strings(categories)

		for _, category := range categories {
			byDate := r.categoryDaily[service][category]
			dates := make([]string, 0, len(byDate))
			for d := range byDate {
				dates = append(dates, d)
			}
			sort.Strings(dates)

			for _, date := range dates {
				out = append(out, models.DailyServiceTotal{
					ProjectID: r.ProjectID,
					Service:   service,
					Category:  category,
					UsageDate: date,
					Amount:    byDate[date],
				})
			}
		}
	}
	return out
}

// DateRange expands [start, end] into ordered YYYY-MM-DD day keys
func DateRange(start, end time.Time) []string {
	start = truncateDay(start)
	end = truncateDay(end)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
