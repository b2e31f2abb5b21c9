package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置（apiserver 与 worker 共用同一结构，各自加载各自的 yaml）
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Server    ServerConfig     `mapstructure:"server"`
	MySQL     MySQLConfig      `mapstructure:"mysql"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Lmstfy    LmstfyConfig     `mapstructure:"lmstfy"`
	Tracking  TrackingConfig   `mapstructure:"tracking"`
	Sweeper   SweeperConfig    `mapstructure:"sweeper"`
	Providers []ProviderConfig `mapstructure:"providers"`
	Workers   []WorkerConfig   `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// TrackingConfig 订单追踪记录配置
type TrackingConfig struct {
	RecordTTL time.Duration `mapstructure:"record_ttl"` // 追踪记录过期时间（兜底清理）
	IndexTTL  time.Duration `mapstructure:"index_ttl"`  // 外部单号索引过期时间
}

// SweeperConfig 超时订单清理任务配置
type SweeperConfig struct {
	Spec         string        `mapstructure:"spec"`          // cron 表达式，例如 "@every 5m"
	CookDeadline time.Duration `mapstructure:"cook_deadline"` // 订单整体出餐期限
}

// ProviderConfig 餐厅供应商配置
type ProviderConfig struct {
	ID      string `mapstructure:"id"`       // 供应商稳定标识（餐厅表 provider_id 引用）
	Mode    string `mapstructure:"mode"`     // poll / push
	BaseURL string `mapstructure:"base_url"` // 供应商 API 地址
	Queue   string `mapstructure:"queue"`    // 该供应商的子订单队列
}

// WorkerConfig Worker 配置（每个供应商队列一个 Worker）
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	ProviderID string           `mapstructure:"provider_id"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
	Cook       CookConfig       `mapstructure:"cook"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// CookConfig 子订单轮询策略配置
type CookConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"` // 轮询间隔
	MaxAttempts  int           `mapstructure:"max_attempts"`  // 最大轮询次数
	Deadline     time.Duration `mapstructure:"deadline"`      // 单个子订单出餐期限
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Tracking.RecordTTL == 0 {
		cfg.Tracking.RecordTTL = 24 * time.Hour
	}
	if cfg.Tracking.IndexTTL == 0 {
		cfg.Tracking.IndexTTL = 24 * time.Hour
	}

	return &cfg, nil
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	for _, p := range c.Providers {
		if p.ID == "" || p.Queue == "" {
			return fmt.Errorf("provider id and queue are required")
		}
		if p.Mode != "poll" && p.Mode != "push" {
			return fmt.Errorf("provider %s: mode must be poll or push", p.ID)
		}
	}
	return nil
}

// ProviderQueues 返回 供应商ID → 队列名 映射（fan-out 派发使用）
func (c *Config) ProviderQueues() map[string]string {
	queues := make(map[string]string, len(c.Providers))
	for _, p := range c.Providers {
		queues[p.ID] = p.Queue
	}
	return queues
}
