// Package trend derives forecasting and variance signals from a service's
// month-to-date daily cost series.
package trend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Input is one service's month-to-date series plus calendar context.
// Daily holds one amount per elapsed day of the current month, zero-filled,
// oldest first.
type Input struct {
	Daily           []decimal.Decimal
	PriorMonthTotal decimal.Decimal
	DaysInMonth     int
	DaysInPrior     int
}

// Trends carries the derived numbers. The OK flags distinguish a real zero
// from "insufficient data" or "n/a" so rendering can say so.
type Trends struct {
	MonthToDate   decimal.Decimal
	Forecast      decimal.Decimal
	ForecastOK    bool
	PriorBaseline decimal.Decimal
	SevenDayAvg   decimal.Decimal
	SevenDayOK    bool
	MostRecentDay decimal.Decimal
	VarianceRatio decimal.Decimal
	VarianceOK    bool
}

// Compute derives all trend numbers from a single pass over the input
func Compute(in Input) Trends {
	var t Trends

	elapsed := len(in.Daily)
	for _, amount := range in.Daily {
		t.MonthToDate = t.MonthToDate.Add(amount)
	}

	// linear extrapolation of the month-to-date run rate
	if elapsed >= 1 && in.DaysInMonth > 0 {
		t.Forecast = t.MonthToDate.
			Div(decimal.NewFromInt(int64(elapsed))).
			Mul(decimal.NewFromInt(int64(in.DaysInMonth)))
		t.ForecastOK = true
	}

	// prior month prorated to the same number of elapsed days
	if in.DaysInPrior > 0 {
		t.PriorBaseline = in.PriorMonthTotal.
			Mul(decimal.NewFromInt(int64(elapsed))).
			Div(decimal.NewFromInt(int64(in.DaysInPrior)))
	}

	if elapsed >= 1 {
		window := in.Daily
		if len(window) > 7 {
			window = window[len(window)-7:]
		}
		sum := decimal.Zero
		for _, amount := range window {
			sum = sum.Add(amount)
		}
		t.SevenDayAvg = sum.Div(decimal.NewFromInt(int64(len(window))))
		t.SevenDayOK = true
		t.MostRecentDay = in.Daily[len(in.Daily)-1]

		if !t.SevenDayAvg.IsZero() {
			t.VarianceRatio = t.MostRecentDay.Div(t.SevenDayAvg)
			t.VarianceOK = true
		}
	}

	return t
}

// DaysInMonth returns the number of calendar days in t's month
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}

// VarianceExceeds reports whether the most recent day diverges from the
// 7-day average by more than threshold (a ratio delta, e.g. 0.3 for ±30%).
func (t Trends) VarianceExceeds(threshold float64) bool {
	if !t.VarianceOK {
		return false
	}
	delta := t.VarianceRatio.Sub(decimal.NewFromInt(1)).Abs()
	return delta.GreaterThan(decimal.NewFromFloat(threshold))
}
