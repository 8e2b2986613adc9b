package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig 从指定路径加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 如果配置文件不存在，返回默认配置
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	config := &Config{}
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	fillDefaults(config)
	mergeEnvVars(config)
	return config, nil
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 确保目录存在
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 优先级：当前目录 > 用户配置目录 > 系统配置目录
	paths := []string{
		"./config.yaml",
		"./config.json",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".costwatch", "config.yaml"),
			filepath.Join(homeDir, ".costwatch", "config.json"),
		)
	}

	paths = append(paths,
		"/etc/costwatch/config.yaml",
		"/etc/costwatch/config.json",
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./config.yaml"
}

// fillDefaults 补齐缺失的配置段
func fillDefaults(config *Config) {
	if config.ClickHouse == nil {
		config.ClickHouse = NewClickHouseConfig()
	}
	if config.Report == nil {
		config.Report = NewReportConfig()
	}
	if config.Slack == nil {
		config.Slack = NewSlackConfig()
	}
	if config.Server == nil {
		config.Server = NewServerConfig()
	}
	if config.Scheduler == nil {
		config.Scheduler = NewSchedulerConfig()
	}
	if config.App == nil {
		config.App = NewAppConfig()
	}
}

// mergeEnvVars 将环境变量合并到配置中
func mergeEnvVars(config *Config) {
	// ClickHouse connection overrides
	if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		config.ClickHouse.Hosts = []string{host}
	}
	if hosts := os.Getenv("CLICKHOUSE_HOSTS"); hosts != "" {
		config.ClickHouse.Hosts = parseStringList(hosts)
	}
	if port := getEnvInt("CLICKHOUSE_PORT", 0); port != 0 {
		config.ClickHouse.Port = port
	}
	if db := os.Getenv("CLICKHOUSE_DATABASE"); db != "" {
		config.ClickHouse.Database = db
	}
	if user := os.Getenv("CLICKHOUSE_USERNAME"); user != "" {
		config.ClickHouse.Username = user
	}
	if pass := os.Getenv("CLICKHOUSE_PASSWORD"); pass != "" {
		config.ClickHouse.Password = pass
	}

	// Slack token永远不写入配置文件，优先读环境变量
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		config.Slack.BotToken = token
	}
	if channel := os.Getenv("SLACK_DEFAULT_CHANNEL"); channel != "" {
		config.Slack.DefaultChannelID = channel
	}

	// Report overrides
	if table := os.Getenv("COSTWATCH_BILLING_TABLE"); table != "" {
		config.Report.BillingTable = table
	}
	if dir := os.Getenv("COSTWATCH_BACKUP_DIR"); dir != "" {
		config.Report.BackupDirectory = dir
	}
}
