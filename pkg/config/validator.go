package config

import (
	"fmt"
)

// ValidateConfig 验证完整的配置
func (c *Config) ValidateConfig() error {
	if err := c.validateClickHouseConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrClickHouseConfig, err)
	}

	if err := c.validateReportConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrReportConfig, err)
	}

	if c.Slack != nil {
		if err := c.Slack.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrSlackConfig, err)
		}
	}

	if c.Server != nil {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrServerConfig, err)
		}
	}

	if c.Scheduler != nil {
		if err := c.Scheduler.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrSchedulerConfig, err)
		}
	}

	return nil
}

// validateClickHouseConfig 验证ClickHouse配置
func (c *Config) validateClickHouseConfig() error {
	if c.ClickHouse == nil {
		return fmt.Errorf("%w: clickhouse", ErrMissingRequired)
	}

	ch := c.ClickHouse

	if len(ch.Hosts) == 0 {
		return fmt.Errorf("%w: hosts", ErrMissingRequired)
	}

	if ch.Port <= 0 || ch.Port > 65535 {
		return fmt.Errorf("%w: port must be within 1-65535", ErrInvalidValue)
	}

	if ch.Database == "" {
		return fmt.Errorf("%w: database", ErrMissingRequired)
	}

	if ch.Protocol != "" && ch.Protocol != "native" && ch.Protocol != "http" {
		return fmt.Errorf("%w: protocol must be 'native' or 'http'", ErrInvalidValue)
	}

	return nil
}

// validateReportConfig 验证报告配置
func (c *Config) validateReportConfig() error {
	if c.Report == nil {
		return fmt.Errorf("%w: report", ErrMissingRequired)
	}

	if err := c.Report.Validate(); err != nil {
		return err
	}

	// 每个项目都必须能确定一个发送频道
	defaultChannel := ""
	if c.Slack != nil {
		defaultChannel = c.Slack.DefaultChannelID
	}
	if c.Slack != nil && c.Slack.Enabled {
		for _, p := range c.Report.Projects {
			if p.SlackChannelID == "" && defaultChannel == "" {
				return fmt.Errorf("%w: project %s has no slack channel and no default is set", ErrProjectConfig, p.ID)
			}
		}
	}

	return nil
}
