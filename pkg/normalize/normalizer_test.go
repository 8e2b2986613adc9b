package normalize

import "testing"

func TestNormalizeComputeEngineBuckets(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		sku      string
		expected string
	}{
		{"N2 Instance Core running in Americas", "VM Core Hours (On-Demand)"},
		{"Spot Preemptible N2 Instance Core running in Americas", "VM Core Hours (Spot/Preemptible)"},
		{"Commitment v1: Cpu in Americas for 1 Year", "VM Core Hours (Committed Use)"},
		{"N2 Instance Ram running in Americas", "VM RAM (On-Demand)"},
		{"Spot Preemptible N2 Instance Ram running in Americas", "VM RAM (Spot/Preemptible)"},
		{"Commitment v1: Ram in Americas for 1 Year", "VM RAM (Committed Use)"},
		{"SSD backed Local Storage", "Storage: Local SSD/Storage (On-Demand)"},
		{"Commitment v1: Local SSD in Americas for 1 Year", "Storage: Local SSD/Storage (Committed Use)"},
		{"SSD backed PD Capacity", "Storage: Persistent Disk"},
		{"Storage PD Snapshot in Americas", "Storage: PD Snapshots"},
		{"Data Transfer Internet Egress from Americas to APAC", "Network: Data Transfer"},
		{"Static Ip Address in Americas", "Network: IP Addresses"},
		{"Cloud Router Data Processing", "Network: Cloud Router"},
		{"Licensing Fee for Windows Server 2022", "Licenses"},
		{"Totally Unknown SKU Name", "Other Compute Engine"},
	}

	for _, tc := range cases {
		got := n.Normalize(ComputeEngineService, tc.sku)
		if got != tc.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tc.sku, got, tc.expected)
		}
	}
}

func TestNormalizeCaseAndWhitespaceInsensitive(t *testing.T) {
	n := NewNormalizer()

	variants := []string{
		"N2 Instance Core running in Americas",
		"  n2 instance core RUNNING in americas  ",
		"N2   Instance\tCore running in Americas",
	}

	want := n.Normalize(ComputeEngineService, variants[0])
	for _, v := range variants {
		if got := n.Normalize(ComputeEngineService, v); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer()
	sku := "Spot Preemptible N2 Instance Ram running in Americas"

	first := n.Normalize(ComputeEngineService, sku)
	for i := 0; i < 10; i++ {
		if got := n.Normalize(ComputeEngineService, sku); got != first {
			t.Fatalf("Normalize not stable: got %q then %q", first, got)
		}
	}
}

func TestNormalizeServiceWithoutRules(t *testing.T) {
	n := NewNormalizer()

	// No rule table: the cleaned SKU is its own category
	if got := n.Normalize("BigQuery", "Analysis (on-demand)"); got != "Analysis (on-demand)" {
		t.Errorf("got %q, want SKU passthrough", got)
	}

	// Empty SKU still yields a label
	if got := n.Normalize("BigQuery", "   "); got != "Other BigQuery" {
		t.Errorf("got %q, want %q", got, "Other BigQuery")
	}
}

func TestNormalizeEmptyInputs(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("", ""); got == "" {
		t.Error("empty inputs must still produce a label")
	}
	if got := n.Normalize(ComputeEngineService, ""); got != "Other Compute Engine" {
		t.Errorf("got %q, want %q", got, "Other Compute Engine")
	}
}

func TestNormalizeFirstMatchWins(t *testing.T) {
	n := NewNormalizerWithRules(map[string][]Rule{
		"Cloud Storage": {
			{AnyOf: []string{"storage"}, Label: "First"},
			{AnyOf: []string{"storage"}, Label: "Second"},
		},
	})

	if got := n.Normalize("Cloud Storage", "Standard Storage US"); got != "First" {
		t.Errorf("got %q, want first rule to win", got)
	}
}

func TestAddRulesKeepsBuiltinPrecedence(t *testing.T) {
	n := NewNormalizer()
	n.AddRules(ComputeEngineService, []Rule{
		{AnyOf: []string{"gpu"}, Label: "GPU"},
	})

	if got := n.Normalize(ComputeEngineService, "Nvidia L4 GPU running in Americas"); got != "GPU" {
		t.Errorf("got %q, want %q", got, "GPU")
	}
	// Built-ins still match before any extension could
	if got := n.Normalize(ComputeEngineService, "N2 Instance Core running"); got != "VM Core Hours (On-Demand)" {
		t.Errorf("got %q, builtin rule should keep precedence", got)
	}
}
