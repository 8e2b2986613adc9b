package config

// ServerConfig holds the HTTP API settings used in serve mode
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Host: getEnv("COSTWATCH_SERVER_HOST", "0.0.0.0"),
		Port: getEnvInt("COSTWATCH_SERVER_PORT", 8080),
	}
}

// Validate checks the server configuration
func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return ErrInvalidValue
	}
	return nil
}

// SchedulerConfig holds the cron schedule for automatic report runs
type SchedulerConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ReportCron string `json:"report_cron" yaml:"report_cron"` // standard 5-field cron spec
}

func NewSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Enabled:    getEnvBool("COSTWATCH_SCHEDULE_ENABLED", false),
		ReportCron: getEnv("COSTWATCH_REPORT_CRON", "0 9 * * *"),
	}
}

// Validate checks the scheduler configuration
func (sc *SchedulerConfig) Validate() error {
	if !sc.Enabled {
		return nil
	}
	if sc.ReportCron == "" {
		return ErrMissingRequired
	}
	return nil
}
