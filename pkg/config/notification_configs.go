package config

// SlackConfig Slack通知配置
type SlackConfig struct {
	Enabled          bool    `json:"enabled" yaml:"enabled"`                       // 是否启用Slack通知
	BotToken         string  `json:"bot_token" yaml:"bot_token"`                   // Bot token，优先从环境变量读取
	DefaultChannelID string  `json:"default_channel_id" yaml:"default_channel_id"` // 默认发送频道
	MaxRetries       int     `json:"max_retries" yaml:"max_retries"`               // 最大重试次数
	RetryDelay       int     `json:"retry_delay" yaml:"retry_delay"`               // 初始重试延迟（秒），指数退避
	Timeout          int     `json:"timeout" yaml:"timeout"`                       // 请求超时（秒）
	MessagesPerSec   float64 `json:"messages_per_sec" yaml:"messages_per_sec"`     // 发送限速
}

// NewSlackConfig 创建Slack配置，使用环境变量填充默认值
func NewSlackConfig() *SlackConfig {
	return &SlackConfig{
		Enabled:          getEnvBool("SLACK_ENABLED", true),
		BotToken:         getEnv("SLACK_BOT_TOKEN", ""),
		DefaultChannelID: getEnv("SLACK_DEFAULT_CHANNEL", ""),
		MaxRetries:       getEnvInt("SLACK_MAX_RETRIES", 3),
		RetryDelay:       getEnvInt("SLACK_RETRY_DELAY", 2),
		Timeout:          getEnvInt("SLACK_TIMEOUT", 15),
		MessagesPerSec:   getEnvFloat("SLACK_MESSAGES_PER_SEC", 1.0),
	}
}

// Validate 验证Slack配置
func (sc *SlackConfig) Validate() error {
	if !sc.Enabled {
		return nil // 如果未启用，跳过验证
	}

	if sc.BotToken == "" {
		return ErrMissingRequired
	}

	if sc.DefaultChannelID == "" {
		return ErrMissingRequired
	}

	if sc.MaxRetries < 0 {
		sc.MaxRetries = 3
	}

	if sc.RetryDelay <= 0 {
		sc.RetryDelay = 2
	}

	if sc.Timeout <= 0 {
		sc.Timeout = 15
	}

	if sc.MessagesPerSec <= 0 {
		sc.MessagesPerSec = 1.0
	}

	return nil
}
