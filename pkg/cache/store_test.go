package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	internal "costwatch/internal/models"
	"costwatch/pkg/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestMaturityFor(t *testing.T) {
	cases := []struct {
		date     string
		today    time.Time
		expected internal.CacheMaturity
	}{
		{"2026-08-03", day(2026, time.August, 20), internal.CacheMaturityProvisional},  // current month
		{"2026-07-15", day(2026, time.August, 5), internal.CacheMaturityProvisional},   // just closed, still settling
		{"2026-07-15", day(2026, time.August, 8), internal.CacheMaturityFinal},         // just closed, settled
		{"2026-05-15", day(2026, time.August, 5), internal.CacheMaturityFinal},         // old month
		{"2026-12-20", day(2027, time.January, 3), internal.CacheMaturityProvisional},  // year boundary
	}

	for _, tc := range cases {
		if got := MaturityFor(tc.date, tc.today); got != tc.expected {
			t.Errorf("MaturityFor(%s, %s) = %s, want %s", tc.date, tc.today.Format(models.DateLayout), got, tc.expected)
		}
	}
}

func TestIsStale(t *testing.T) {
	entry := &Entry{
		ProjectID: "proj-a",
		UsageDate: "2026-08-03",
		Maturity:  internal.CacheMaturityProvisional,
	}

	if IsStale(entry, day(2026, time.August, 20), false) {
		t.Error("provisional entry in its own month must be fresh")
	}
	if !IsStale(entry, day(2026, time.September, 5), false) {
		t.Error("provisional entry must go stale once its month has closed")
	}
	if !IsStale(entry, day(2026, time.August, 20), true) {
		t.Error("force refresh must always report stale")
	}
	if !IsStale(nil, day(2026, time.August, 20), false) {
		t.Error("absent entry must be stale")
	}

	final := &Entry{UsageDate: "2026-05-03", Maturity: internal.CacheMaturityFinal}
	if IsStale(final, day(2026, time.September, 5), false) {
		t.Error("final entry must never be stale without force refresh")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store := NewStore(backend)

	payload := []models.DailyServiceTotal{
		{ProjectID: "proj-a", Service: "Compute Engine", Category: "VM Core Hours (On-Demand)", UsageDate: "2026-05-03", Amount: decimal.RequireFromString("12.3456789")},
		{ProjectID: "proj-a", Service: "BigQuery", Category: "Analysis", UsageDate: "2026-05-03", Amount: decimal.RequireFromString("0.000001")},
	}

	today := day(2026, time.August, 20)
	if err := store.Put("proj-a", "2026-05-03", payload, today); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got := store.Get("proj-a", "2026-05-03")
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Maturity != internal.CacheMaturityFinal {
		t.Errorf("maturity = %s, want final", got.Maturity)
	}
	if len(got.Payload) != 2 {
		t.Fatalf("payload length = %d, want 2", len(got.Payload))
	}
	if !got.Payload[0].Amount.Equal(decimal.RequireFromString("12.3456789")) {
		t.Errorf("amount lost precision: %s", got.Payload[0].Amount)
	}
	if !got.Payload[1].Amount.Equal(decimal.RequireFromString("0.000001")) {
		t.Errorf("tiny amount lost precision: %s", got.Payload[1].Amount)
	}
}

func TestFinalEntryNeverOverwritten(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store := NewStore(backend)

	original := []models.DailyServiceTotal{
		{Service: "BigQuery", Category: "Analysis", UsageDate: "2026-05-03", Amount: decimal.NewFromInt(100)},
	}
	today := day(2026, time.August, 20)
	if err := store.Put("proj-a", "2026-05-03", original, today); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	replacement := []models.DailyServiceTotal{
		{Service: "BigQuery", Category: "Analysis", UsageDate: "2026-05-03", Amount: decimal.NewFromInt(999)},
	}
	if err := store.Put("proj-a", "2026-05-03", replacement, today); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got := store.Get("proj-a", "2026-05-03")
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if !got.Payload[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("final entry was overwritten, amount = %s", got.Payload[0].Amount)
	}
}

func TestCorruptEntryDegradesToMiss(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store := NewStore(backend)

	if err := os.MkdirAll(filepath.Join(dir, "proj-a"), 0755); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(dir, "proj-a", "2026-05-03.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := store.Get("proj-a", "2026-05-03"); got != nil {
		t.Errorf("corrupt entry should read as a miss, got %+v", got)
	}
	// other dates are unaffected
	if got := store.Get("proj-a", "2026-05-04"); got != nil {
		t.Error("unrelated date should be a clean miss")
	}
}

func TestFileBackendList(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store := NewStore(backend)

	today := day(2026, time.August, 20)
	for _, date := range []string{"2026-05-01", "2026-05-02"} {
		if err := store.Put("proj-a", date, nil, today); err != nil {
			t.Fatalf("Put %s failed: %v", date, err)
		}
	}

	dates, err := store.List("proj-a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(dates) != 2 {
		t.Errorf("List returned %d dates, want 2", len(dates))
	}

	empty, err := store.List("proj-b")
	if err != nil {
		t.Fatalf("List on empty project failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List on empty project = %v, want empty", empty)
	}
}
