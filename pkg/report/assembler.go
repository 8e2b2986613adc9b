// Package report turns aggregated cost data into ranked, rendered report
// text: a fixed-width summary table plus one detail block per service for
// threaded delivery.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"costwatch/pkg/aggregate"
	"costwatch/pkg/config"
	"costwatch/pkg/models"
	"costwatch/pkg/trend"
)

// Row is one ranked service in a project report
type Row struct {
	Service    string
	Current    decimal.Decimal
	Prior      decimal.Decimal
	Trend      trend.Trends
	Recent     []decimal.Decimal
	Categories []models.ServiceCategoryTotal
	// VarianceFlagged marks a most-recent-day spike beyond the threshold
	VarianceFlagged bool
}

// Report is a fully assembled project report, ready for rendering
type Report struct {
	ProjectID    string
	ProjectName  string
	ChannelID    string
	Month        string // YYYY-MM
	GeneratedAt  time.Time
	Rows         []Row
	TotalCurrent decimal.Decimal
	TotalPrior   decimal.Decimal
	TotalFcst    decimal.Decimal
	// TotalBaseline is the prior month prorated to the elapsed days, the
	// pace the current total is compared against
	TotalBaseline decimal.Decimal
	RecentDates   []string
	// Negligible marks projects whose spend is too small to report
	Negligible bool
}

// Assembler ranks services and attaches trend numbers per the report
// configuration.
type Assembler struct {
	alwaysFirst       []string
	varianceThreshold float64
	recentDays        int
}

// NewAssembler builds an Assembler from the report configuration
func NewAssembler(cfg *config.ReportConfig) *Assembler {
	return &Assembler{
		alwaysFirst:       cfg.AlwaysFirst,
		varianceThreshold: cfg.VarianceThreshold,
		recentDays:        cfg.RecentDays,
	}
}

// Input carries one project's aggregates into assembly. Current spans the
// first of the month through today; Prior spans the full previous month.
type Input struct {
	Project config.ProjectConfig
	Channel string
	Current *aggregate.Result
	Prior   *aggregate.Result
	Today   time.Time
}

// negligibleCeiling is the spend below which a project is not worth a
// report (both months under a dollar)
var negligibleCeiling = decimal.NewFromInt(1)

// Assemble ranks the union of current and prior month services, computes
// trends per service, and fills the totals row.
func (a *Assembler) Assemble(in Input) *Report {
	daysInMonth := trend.DaysInMonth(in.Today)
	daysInPrior := trend.DaysInMonth(in.Today.AddDate(0, 0, -in.Today.Day()))

	services := unionServices(in.Current, in.Prior)
	rows := make([]Row, 0, len(services))
	for _, service := range services {
		daily := in.Current.DailySeries(service)
		t := trend.Compute(trend.Input{
			Daily:           daily,
			PriorMonthTotal: in.Prior.ServiceTotal(service),
			DaysInMonth:     daysInMonth,
			DaysInPrior:     daysInPrior,
		})

		rows = append(rows, Row{
			Service:         service,
			Current:         in.Current.ServiceTotal(service),
			Prior:           in.Prior.ServiceTotal(service),
			Trend:           t,
			Recent:          tail(daily, a.recentDays),
			Categories:      in.Current.Categories(service),
			VarianceFlagged: t.VarianceExceeds(a.varianceThreshold),
		})
	}
	a.sortRows(rows)

	r := &Report{
		ProjectID:   in.Project.ID,
		ProjectName: in.Project.Name,
		ChannelID:   in.Channel,
		Month:       in.Today.Format("2006-01"),
		GeneratedAt: in.Today,
		Rows:        rows,
		RecentDates: tail(in.Current.Dates, a.recentDays),
	}
	for _, row := range rows {
		r.TotalCurrent = r.TotalCurrent.Add(row.Current)
		r.TotalPrior = r.TotalPrior.Add(row.Prior)
		r.TotalBaseline = r.TotalBaseline.Add(row.Trend.PriorBaseline)
		if row.Trend.ForecastOK {
			r.TotalFcst = r.TotalFcst.Add(row.Trend.Forecast)
		}
	}
	r.Negligible = r.TotalCurrent.LessThan(negligibleCeiling) &&
		r.TotalPrior.LessThan(negligibleCeiling)

	return r
}

// sortRows orders services: configured always-first list in its own order,
// then month-to-date amount descending, name ascending on ties.
func (a *Assembler) sortRows(rows []Row) {
	rank := map[string]int{}
	for i, s := range a.alwaysFirst {
		rank[s] = i
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, iFirst := rank[rows[i].Service]
		rj, jFirst := rank[rows[j].Service]
		switch {
		case iFirst && jFirst:
			return ri < rj
		case iFirst:
			return true
		case jFirst:
			return false
		}
		if c := rows[i].Current.Cmp(rows[j].Current); c != 0 {
			return c > 0
		}
		return rows[i].Service < rows[j].Service
	})
}

func unionServices(current, prior *aggregate.Result) []string {
	seen := map[string]bool{}
	var services []string
	for _, s := range current.Services() {
		if !seen[s] {
			seen[s] = true
			services = append(services, s)
		}
	}
	for _, s := range prior.Services() {
		if !seen[s] {
			seen[s] = true
			services = append(services, s)
		}
	}
	sort.Strings(services)
	return services
}

func tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
