package config

import "costwatch/pkg/normalize"

// ProjectConfig describes one GCP project to report on
type ProjectConfig struct {
	ID             string `json:"id" yaml:"id"`                             // GCP project id
	Name           string `json:"name" yaml:"name"`                         // display name used in the report
	SlackChannelID string `json:"slack_channel_id" yaml:"slack_channel_id"` // overrides the default channel when set
}

// ReportConfig holds the cost report generation settings
type ReportConfig struct {
	BillingTable      string          `json:"billing_table" yaml:"billing_table"`             // billing export table in ClickHouse
	BackupDirectory   string          `json:"backup_directory" yaml:"backup_directory"`       // cache location for fetched billing data
	CacheBackend      string          `json:"cache_backend" yaml:"cache_backend"`             // file, sqlite
	Projects          []ProjectConfig `json:"projects" yaml:"projects"`                       // projects to monitor
	AlwaysFirst       []string        `json:"always_first_services" yaml:"always_first_services"` // services pinned to the top of the summary
	VarianceThreshold float64         `json:"variance_threshold" yaml:"variance_threshold"`   // |day/7d-avg - 1| above this flags the row
	QueryCostLimitUSD float64         `json:"query_cost_limit_usd" yaml:"query_cost_limit_usd"` // dry-run estimate above this aborts the project
	RecentDays        int             `json:"recent_days" yaml:"recent_days"`                 // trailing per-day columns in the summary table
	QueryTimeout      int             `json:"query_timeout" yaml:"query_timeout"`             // seconds per warehouse query
	Concurrency       int             `json:"concurrency" yaml:"concurrency"`                 // projects processed in parallel

	// CategoryRules extends (or overrides) the built-in SKU normalization
	// tables, keyed by service name
	CategoryRules map[string][]normalize.Rule `json:"category_rules" yaml:"category_rules"`
}

// NewReportConfig creates report configuration with defaults from environment
func NewReportConfig() *ReportConfig {
	return &ReportConfig{
		BillingTable:      getEnv("COSTWATCH_BILLING_TABLE", ""),
		BackupDirectory:   getEnv("COSTWATCH_BACKUP_DIR", "./backups"),
		CacheBackend:      getEnv("COSTWATCH_CACHE_BACKEND", "file"),
		AlwaysFirst:       parseStringList(getEnv("COSTWATCH_ALWAYS_FIRST", "BigQuery")),
		VarianceThreshold: getEnvFloat("COSTWATCH_VARIANCE_THRESHOLD", 0.3),
		QueryCostLimitUSD: getEnvFloat("COSTWATCH_QUERY_COST_LIMIT", 5.0),
		RecentDays:        getEnvInt("COSTWATCH_RECENT_DAYS", 3),
		QueryTimeout:      getEnvInt("COSTWATCH_QUERY_TIMEOUT", 30),
		Concurrency:       getEnvInt("COSTWATCH_CONCURRENCY", 1),
	}
}

// ChannelFor returns the Slack channel for a project, falling back to defaultChannel
func (rc *ReportConfig) ChannelFor(project ProjectConfig, defaultChannel string) string {
	if project.SlackChannelID != "" {
		return project.SlackChannelID
	}
	return defaultChannel
}

// Validate checks the report configuration
func (rc *ReportConfig) Validate() error {
	if rc.BillingTable == "" {
		return ErrMissingRequired
	}

	if rc.BackupDirectory == "" {
		return ErrMissingRequired
	}

	if rc.CacheBackend != "" && !isValidValue(rc.CacheBackend, []string{"file", "sqlite"}) {
		return ErrInvalidValue
	}

	if len(rc.Projects) == 0 {
		return ErrMissingRequired
	}

	for _, p := range rc.Projects {
		if p.ID == "" {
			return ErrProjectConfig
		}
	}

	if rc.VarianceThreshold < 0 {
		return ErrInvalidValue
	}

	if rc.QueryCostLimitUSD < 0 {
		return ErrInvalidValue
	}

	if rc.RecentDays <= 0 {
		rc.RecentDays = 3
	}

	if rc.QueryTimeout <= 0 {
		rc.QueryTimeout = 30
	}

	if rc.Concurrency <= 0 {
		rc.Concurrency = 1
	}

	return nil
}
