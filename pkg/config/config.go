package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig holds connection settings for the billing data warehouse
type ClickHouseConfig struct {
	Hosts    []string `json:"hosts" yaml:"hosts"`
	Port     int      `json:"port" yaml:"port"`
	Database string   `json:"database" yaml:"database"`
	Username string   `json:"username" yaml:"username"`
	Password string   `json:"password" yaml:"password"`
	Debug    bool     `json:"debug" yaml:"debug"`
	Protocol string   `json:"protocol" yaml:"protocol"` // native, http
}

func NewClickHouseConfig() *ClickHouseConfig {
	hosts := []string{getEnv("CLICKHOUSE_HOST", "localhost")}
	if hostsEnv := os.Getenv("CLICKHOUSE_HOSTS"); hostsEnv != "" {
		hosts = parseStringList(hostsEnv)
	}

	// 根据协议设置默认端口
	protocol := getEnv("CLICKHOUSE_PROTOCOL", "native")
	defaultPort := 9000 // native 协议默认端口
	if protocol == "http" {
		defaultPort = 8123 // HTTP 协议默认端口
	}

	return &ClickHouseConfig{
		Hosts:    hosts,
		Port:     getEnvInt("CLICKHOUSE_PORT", defaultPort),
		Database: getEnv("CLICKHOUSE_DATABASE", "default"),
		Username: getEnv("CLICKHOUSE_USERNAME", "default"),
		Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		Debug:    getEnvBool("CLICKHOUSE_DEBUG", false),
		Protocol: protocol,
	}
}

func (c *ClickHouseConfig) DSN() string {
	host := "localhost"
	if len(c.Hosts) > 0 {
		host = c.Hosts[0]
	}

	scheme := "clickhouse"
	if c.Protocol == "http" {
		scheme = "http"
	}

	username := url.QueryEscape(c.Username)
	password := url.QueryEscape(c.Password)

	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, username, password, host, c.Port, c.Database)
}

// GetProtocol 返回协议类型，默认为 native
func (c *ClickHouseConfig) GetProtocol() clickhouse.Protocol {
	if c.Protocol == "http" {
		return clickhouse.HTTP
	}
	return clickhouse.Native
}

func (c *ClickHouseConfig) GetAddresses() []string {
	addresses := make([]string, len(c.Hosts))
	for i, host := range c.Hosts {
		addresses[i] = fmt.Sprintf("%s:%d", host, c.Port)
	}
	return addresses
}

// AppConfig holds application-level settings
type AppConfig struct {
	Environment string `json:"environment" yaml:"environment"` // development, production
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		Environment: getEnv("COSTWATCH_ENV", "production"),
		LogLevel:    getEnv("COSTWATCH_LOG_LEVEL", "info"),
		LogFile:     getEnv("COSTWATCH_LOG_FILE", "./logs/costwatch.log"),
	}
}

// IsDevelopment reports whether the app runs in development mode
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// ---------- env helpers ----------

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// parseStringList splits a comma separated list, trimming whitespace
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// isValidValue checks whether value is one of the allowed values
func isValidValue(value string, allowed []string) bool {
	for _, v := range allowed {
		if value == v {
			return true
		}
	}
	return false
}
