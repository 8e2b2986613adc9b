package config

import (
	"errors"
	"testing"
)

func validTestConfig() *Config {
	return &Config{
		ClickHouse: &ClickHouseConfig{
			Hosts:    []string{"localhost"},
			Port:     9000,
			Database: "billing",
			Protocol: "native",
		},
		Report: &ReportConfig{
			BillingTable:    "billing.gcp_billing_export",
			BackupDirectory: "./backups",
			Projects: []ProjectConfig{
				{ID: "proj-a", Name: "Project A", SlackChannelID: "C123"},
			},
			VarianceThreshold: 0.3,
			QueryCostLimitUSD: 5,
			RecentDays:        3,
			QueryTimeout:      30,
			Concurrency:       1,
		},
		Slack: &SlackConfig{
			Enabled:          true,
			BotToken:         "xoxb-token",
			DefaultChannelID: "C999",
			MaxRetries:       3,
			RetryDelay:       2,
			Timeout:          15,
			MessagesPerSec:   1,
		},
		Server:    NewServerConfig(),
		Scheduler: &SchedulerConfig{Enabled: false},
		App:       NewAppConfig(),
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("Valid config rejected: %v", err)
	}
}

func TestValidateConfig_MissingBillingTable(t *testing.T) {
	cfg := validTestConfig()
	cfg.Report.BillingTable = ""

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected error for missing billing table")
	}
	if !errors.Is(err, ErrReportConfig) {
		t.Errorf("Expected ErrReportConfig, got %v", err)
	}
}

func TestValidateConfig_NoProjects(t *testing.T) {
	cfg := validTestConfig()
	cfg.Report.Projects = nil

	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("Expected error for empty project list")
	}
}

func TestValidateConfig_ProjectWithoutChannel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Report.Projects[0].SlackChannelID = ""
	cfg.Slack.DefaultChannelID = ""

	// DefaultChannelID为空时Slack自身校验就会失败
	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected error when no channel can be resolved")
	}
}

func TestValidateConfig_SlackDisabledSkipsSlackChecks(t *testing.T) {
	cfg := validTestConfig()
	cfg.Slack.Enabled = false
	cfg.Slack.BotToken = ""
	cfg.Slack.DefaultChannelID = ""
	cfg.Report.Projects[0].SlackChannelID = ""

	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("Disabled slack should skip validation, got %v", err)
	}
}

func TestValidateConfig_BadClickHousePort(t *testing.T) {
	cfg := validTestConfig()
	cfg.ClickHouse.Port = -1

	err := cfg.ValidateConfig()
	if !errors.Is(err, ErrClickHouseConfig) {
		t.Errorf("Expected ErrClickHouseConfig, got %v", err)
	}
}
