package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestBuildLineItemQuery(t *testing.T) {
	query := buildLineItemQuery("billing.gcp_export")

	if !strings.Contains(query, "FROM billing.gcp_export") {
		t.Errorf("query missing table: %s", query)
	}
	if !strings.Contains(query, "cost_type NOT IN ('tax', 'adjustment')") {
		t.Errorf("query must exclude tax and adjustment rows: %s", query)
	}
	if !strings.Contains(query, "sum(cost) + sum(credits)") {
		t.Errorf("query must fold credits into cost: %s", query)
	}
	if got := strings.Count(query, "?"); got != 3 {
		t.Errorf("query has %d placeholders, want 3 (project, start, end)", got)
	}
	// amounts must travel as strings to keep decimal precision
	if !strings.Contains(query, "toString(sum(cost) + sum(credits))") {
		t.Errorf("amount must be selected as string: %s", query)
	}
}

func TestEstimateFromRows(t *testing.T) {
	// 1 TB worth of rows at 256 bytes each
	rowsPerTB := uint64(1_000_000_000_000 / estimatedRowBytes)
	est := estimateFromRows(rowsPerTB)

	if est.Bytes != 1_000_000_000_000 {
		t.Errorf("bytes = %d, want 1TB", est.Bytes)
	}
	if !est.CostUSD.Equal(decimal.NewFromInt(costPerTBUSD)) {
		t.Errorf("cost = %s, want %d", est.CostUSD, costPerTBUSD)
	}

	empty := estimateFromRows(0)
	if !empty.CostUSD.IsZero() {
		t.Errorf("zero rows should cost nothing, got %s", empty.CostUSD)
	}
}

func TestQueryArgsFormat(t *testing.T) {
	args := queryArgs("proj-a", mustDate(t, "2026-08-01"), mustDate(t, "2026-08-31"))
	if len(args) != 3 {
		t.Fatalf("got %d args, want 3", len(args))
	}
	if args[0] != "proj-a" || args[1] != "2026-08-01" || args[2] != "2026-08-31" {
		t.Errorf("args = %v", args)
	}
}
