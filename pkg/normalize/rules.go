package normalize

// Rule maps a SKU description onto a display category.
// AnyOf must have at least one hit, AllOf must hit completely; both are
// matched against the cleaned (trimmed, case-folded) SKU text.
type Rule struct {
	AnyOf []string `json:"any_of" yaml:"any_of"`
	AllOf []string `json:"all_of" yaml:"all_of"`
	Label string   `json:"label" yaml:"label"`
}

// ComputeEngineService is the billing service name carrying the bulk of
// high-cardinality SKUs that need semantic grouping
const ComputeEngineService = "Compute Engine"

// DefaultRules returns the built-in rule tables keyed by service name.
// Rules are evaluated in order, first match wins. The table grew out of
// observed SKU strings in GCP billing exports and is extensible from
// configuration without touching the matching logic.
func DefaultRules() map[string][]Rule {
	return map[string][]Rule{
		ComputeEngineService: {
			// Local SSD before generic storage so "local" wins
			{AnyOf: []string{"local ssd", "local storage"}, AllOf: []string{"commitment"}, Label: "Storage: Local SSD/Storage (Committed Use)"},
			{AnyOf: []string{"local ssd", "local storage"}, Label: "Storage: Local SSD/Storage (On-Demand)"},

			// RAM: "memory optimized" SKUs still say Ram/Memory somewhere
			{AnyOf: []string{" ram ", "instance ram", "memory"}, AllOf: []string{"spot"}, Label: "VM RAM (Spot/Preemptible)"},
			{AnyOf: []string{" ram ", "instance ram", "memory"}, AllOf: []string{"preemptible"}, Label: "VM RAM (Spot/Preemptible)"},
			{AnyOf: []string{" ram ", "instance ram", "memory"}, AllOf: []string{"commitment"}, Label: "VM RAM (Committed Use)"},
			{AnyOf: []string{" ram ", "instance ram", "memory"}, Label: "VM RAM (On-Demand)"},

			// Cores
			{AnyOf: []string{"instance core", "cpu"}, AllOf: []string{"spot"}, Label: "VM Core Hours (Spot/Preemptible)"},
			{AnyOf: []string{"instance core", "cpu"}, AllOf: []string{"preemptible"}, Label: "VM Core Hours (Spot/Preemptible)"},
			{AnyOf: []string{"instance core", "cpu"}, AllOf: []string{"commitment"}, Label: "VM Core Hours (Committed Use)"},
			{AnyOf: []string{"instance core", "cpu"}, Label: "VM Core Hours (On-Demand)"},

			// Persistent disk, snapshots first
			{AnyOf: []string{"storage pd", "persistent disk"}, AllOf: []string{"snapshot"}, Label: "Storage: PD Snapshots"},
			{AnyOf: []string{"storage pd", "persistent disk"}, Label: "Storage: Persistent Disk"},

			// Network
			{AnyOf: []string{"data transfer"}, Label: "Network: Data Transfer"},
			{AnyOf: []string{"ip address"}, Label: "Network: IP Addresses"},
			{AnyOf: []string{"router"}, Label: "Network: Cloud Router"},

			// Licensing
			{AnyOf: []string{"licensing fee", "license"}, Label: "Licenses"},
		},
	}
}

// matches reports whether the cleaned SKU text satisfies the rule
func (r Rule) matches(cleaned string) bool {
	if len(r.AnyOf) > 0 {
		hit := false
		for _, s := range r.AnyOf {
			if containsFold(cleaned, s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	for _, s := range r.AllOf {
		if !containsFold(cleaned, s) {
			return false
		}
	}

	return len(r.AnyOf) > 0 || len(r.AllOf) > 0
}
