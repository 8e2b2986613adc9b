package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Detail is one service's drill-down block, posted as a threaded reply
type Detail struct {
	Service string
	Text    string
}

// Rendered is the deliverable form of a report: a summary message plus
// detail blocks in the same order as the summary rows.
type Rendered struct {
	Summary string
	Details []Detail
}

// renderer produces fixed-width report text
type renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() Renderer {
	return &renderer{}
}

// Renderer renders an assembled report into deliverable text
type Renderer interface {
	Render(r *Report) *Rendered
}

const (
	serviceWidth = 28
	amountWidth  = 12
	recentWidth  = 9
)

// Render produces the summary table and per-service detail blocks. Output
// depends only on the report contents, so identical input renders to
// identical bytes.
func (renderer) Render(r *Report) *Rendered {
	out := &Rendered{Summary: renderSummary(r)}
	for i, row := range r.Rows {
		out.Details = append(out.Details, Detail{
			Service: row.Service,
			Text:    renderDetail(r, i),
		})
	}
	return out
}

func renderSummary(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Monthly Cost Report — %s (%s)\n", r.ProjectName, r.Month)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02"))
	b.WriteString("```\n")

	// header
	fmt.Fprintf(&b, " #  %-*s %*s %*s %*s", serviceWidth, "Service",
		amountWidth, "MTD", amountWidth, "Last Mo", amountWidth, "Forecast")
	for _, date := range r.RecentDates {
		fmt.Fprintf(&b, " %*s", recentWidth, shortDate(date))
	}
	b.WriteString("\n")

	for i, row := range r.Rows {
		fmt.Fprintf(&b, "%2d  %-*s %*s %*s %*s", i+1,
			serviceWidth, clip(row.Service, serviceWidth),
			amountWidth, formatAmount(row.Current),
			amountWidth, formatAmount(row.Prior),
			amountWidth, forecastCell(row))
		for _, amount := range row.Recent {
			fmt.Fprintf(&b, " %*s", recentWidth, formatAmount(amount))
		}
		if row.VarianceFlagged {
			b.WriteString(" ⚠️")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "    %-*s %*s %*s %*s%s\n", serviceWidth, "TOTAL",
		amountWidth, formatAmount(r.TotalCurrent),
		amountWidth, formatAmount(r.TotalPrior),
		amountWidth, formatAmount(r.TotalFcst),
		formatDiff(r.TotalCurrent, r.TotalBaseline, r.TotalPrior))
	b.WriteString("```")

	return b.String()
}

func renderDetail(r *Report, idx int) string {
	row := r.Rows[idx]

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 %s (%s)\n", row.Service, r.Month)
	b.WriteString("```\n")
	for i, c := range row.Categories {
		fmt.Fprintf(&b, "%2d  %-*s %*s\n", i+1,
			serviceWidth+6, clip(c.Category, serviceWidth+6),
			amountWidth, formatAmount(c.Amount))
	}
	if len(row.Categories) == 0 {
		b.WriteString("(no charges this month)\n")
	}
	b.WriteString("```\n")

	fmt.Fprintf(&b, "MTD: %s%s | Forecast: %s | 7d avg: %s | Last day: %s (%s)",
		formatAmount(row.Current),
		formatDiff(row.Trend.MonthToDate, row.Trend.PriorBaseline, row.Prior),
		forecastCell(row),
		avgCell(row),
		formatAmount(row.Trend.MostRecentDay),
		varianceCell(row))

	return b.String()
}

// formatDiff renders the month-over-month pace marker: current spend versus
// the prior month prorated to the elapsed days. Empty when there is no prior
// month to compare against.
func formatDiff(current, baseline, prior decimal.Decimal) string {
	if prior.IsZero() {
		return ""
	}
	if baseline.IsZero() {
		if current.IsPositive() {
			return " (↑ ∞%) 🔴"
		}
		return " (→ 0.00%)"
	}

	pct := current.Div(baseline).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	switch {
	case pct.IsPositive():
		return fmt.Sprintf(" (↑%s%%) 🔴", pct.StringFixed(2))
	case pct.IsNegative():
		return fmt.Sprintf(" (↓%s%%) 🟢", pct.Neg().StringFixed(2))
	default:
		return " (→ 0.00%)"
	}
}

func forecastCell(row Row) string {
	if !row.Trend.ForecastOK {
		return "n/a"
	}
	return formatAmount(row.Trend.Forecast)
}

func avgCell(row Row) string {
	if !row.Trend.SevenDayOK {
		return "n/a"
	}
	return formatAmount(row.Trend.SevenDayAvg)
}

func varianceCell(row Row) string {
	if !row.Trend.VarianceOK {
		return "n/a"
	}
	return row.Trend.VarianceRatio.StringFixed(2) + "x"
}

// formatAmount renders a monetary amount as $1234.56, sign outside the
// currency symbol
func formatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// shortDate turns YYYY-MM-DD into MM-DD for column headers
func shortDate(date string) string {
	if len(date) == 10 {
		return date[5:]
	}
	return date
}

func clip(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
