package trend

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func TestForecastSingleDay(t *testing.T) {
	// one day at X in a 30-day month forecasts X * 30
	got := Compute(Input{
		Daily:       []decimal.Decimal{dec(42)},
		DaysInMonth: 30,
		DaysInPrior: 31,
	})

	if !got.ForecastOK {
		t.Fatal("forecast should be defined with one day of data")
	}
	if !got.Forecast.Equal(dec(42 * 30)) {
		t.Errorf("forecast = %s, want %d", got.Forecast, 42*30)
	}
}

func TestForecastNoData(t *testing.T) {
	got := Compute(Input{DaysInMonth: 30, DaysInPrior: 31})

	if got.ForecastOK {
		t.Error("forecast must be insufficient-data with an empty series")
	}
	if got.SevenDayOK {
		t.Error("7-day average must be insufficient-data with an empty series")
	}
	if got.VarianceOK {
		t.Error("variance must be undefined with an empty series")
	}
}

func TestPriorBaselineProrated(t *testing.T) {
	got := Compute(Input{
		Daily:           []decimal.Decimal{dec(10), dec(10), dec(10)}, // 3 elapsed days
		PriorMonthTotal: dec(310),
		DaysInMonth:     30,
		DaysInPrior:     31,
	})

	// 310 * 3/31 = 30
	if !got.PriorBaseline.Equal(dec(30)) {
		t.Errorf("prior baseline = %s, want 30", got.PriorBaseline)
	}
}

func TestSevenDayAverageWindow(t *testing.T) {
	daily := []decimal.Decimal{
		dec(100), dec(100), // outside the window
		dec(1), dec(2), dec(3), dec(4), dec(5), dec(6), dec(7),
	}
	got := Compute(Input{Daily: daily, DaysInMonth: 30, DaysInPrior: 31})

	if !got.SevenDayAvg.Equal(dec(4)) {
		t.Errorf("7-day avg = %s, want 4", got.SevenDayAvg)
	}
	if !got.MostRecentDay.Equal(dec(7)) {
		t.Errorf("most recent day = %s, want 7", got.MostRecentDay)
	}
}

func TestSevenDayAverageShortSeries(t *testing.T) {
	got := Compute(Input{
		Daily:       []decimal.Decimal{dec(3), dec(5)},
		DaysInMonth: 30,
		DaysInPrior: 31,
	})

	if !got.SevenDayOK {
		t.Fatal("short series still has a defined average")
	}
	if !got.SevenDayAvg.Equal(dec(4)) {
		t.Errorf("avg = %s, want 4", got.SevenDayAvg)
	}
}

func TestVarianceZeroAverage(t *testing.T) {
	got := Compute(Input{
		Daily:       []decimal.Decimal{decimal.Zero, decimal.Zero},
		DaysInMonth: 30,
		DaysInPrior: 31,
	})

	if got.VarianceOK {
		t.Error("variance over a zero average must be n/a, not a division")
	}
}

func TestVarianceExceeds(t *testing.T) {
	got := Compute(Input{
		Daily:       []decimal.Decimal{dec(10), dec(10), dec(10), dec(20)},
		DaysInMonth: 30,
		DaysInPrior: 31,
	})

	// ratio = 20 / 12.5 = 1.6
	if !got.VarianceExceeds(0.3) {
		t.Error("60% jump should exceed a 30% threshold")
	}
	if got.VarianceExceeds(0.7) {
		t.Error("60% jump should not exceed a 70% threshold")
	}

	flat := Compute(Input{
		Daily:       []decimal.Decimal{dec(10), dec(10)},
		DaysInMonth: 30,
		DaysInPrior: 31,
	})
	if flat.VarianceExceeds(0.3) {
		t.Error("flat series should not flag variance")
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2028, time.February, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.date); got != tc.want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", tc.date.Format("2006-01"), got, tc.want)
		}
	}
}
