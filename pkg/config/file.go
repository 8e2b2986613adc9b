package config

// Config is the root configuration for a costwatch run
type Config struct {
	ClickHouse *ClickHouseConfig `json:"clickhouse" yaml:"clickhouse"`
	Report     *ReportConfig     `json:"report" yaml:"report"`
	Slack      *SlackConfig      `json:"slack" yaml:"slack"`
	Server     *ServerConfig     `json:"server" yaml:"server"`
	Scheduler  *SchedulerConfig  `json:"scheduler" yaml:"scheduler"`
	App        *AppConfig        `json:"app" yaml:"app"`
}

// getDefaultConfig 获取默认配置，所有配置项都使用各自的默认值
func getDefaultConfig() *Config {
	return &Config{
		ClickHouse: NewClickHouseConfig(),
		Report:     NewReportConfig(),
		Slack:      NewSlackConfig(),
		Server:     NewServerConfig(),
		Scheduler:  NewSchedulerConfig(),
		App:        NewAppConfig(),
	}
}

// GetSlackConfig returns the Slack configuration, never nil
func (c *Config) GetSlackConfig() *SlackConfig {
	if c.Slack == nil {
		c.Slack = NewSlackConfig()
	}
	return c.Slack
}

// GetReportConfig returns the report configuration, never nil
func (c *Config) GetReportConfig() *ReportConfig {
	if c.Report == nil {
		c.Report = NewReportConfig()
	}
	return c.Report
}
