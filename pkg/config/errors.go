package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Database configuration errors
	ErrClickHouseConfig = errors.New("ClickHouse configuration error")

	// Report configuration errors
	ErrReportConfig  = errors.New("report configuration error")
	ErrProjectConfig = errors.New("project configuration error")

	// Notification configuration errors
	ErrSlackConfig = errors.New("slack notification configuration error")

	// Scheduler configuration errors
	ErrSchedulerConfig = errors.New("scheduler configuration error")
	ErrInvalidCron     = errors.New("invalid Cron expression")

	// Server configuration errors
	ErrServerConfig = errors.New("server configuration error")
)
