// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// 行情数据源配置
	AlphaVantage AlphaVantageConfig `mapstructure:"alpha_vantage"`
	// 趋势预测配置
	Forecast ForecastConfig `mapstructure:"forecast"`
	// 回测默认参数
	Backtest BacktestConfig `mapstructure:"backtest"`
	// 定时刷新配置
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host"`
	// 监听端口
	Port int `mapstructure:"port"`
	// 路由前缀，例如 "api/"
	Prefix string `mapstructure:"prefix"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：mysql, postgres, sqlite
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// 是否启用 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold"`
	// 启动时自动建表
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 是否启用。未启用时模型缓存为 no-op，入站限流不可用
	Enabled bool `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// 密码
	Password string `mapstructure:"password"`
	// 数据库编号
	DB int `mapstructure:"db"`
	// 最大连接数
	MaxPoolSize int `mapstructure:"max_pool_size"`
	// 连接超时（秒）
	ConnTimeout int `mapstructure:"conn_timeout"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// Broker 地址列表，为空时事件发布为 no-op
	Brokers []string `mapstructure:"brokers"`
	// Consumer Group ID
	GroupID string `mapstructure:"group_id"`
	// 消费者超时（秒）
	SessionTimeout int `mapstructure:"session_timeout"`
	// 最大重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// 重试退避（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// RateLimitConfig 入站限流配置（需要 Redis）
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	QPS     int  `mapstructure:"qps"`
	Burst   int  `mapstructure:"burst"`
}

// AlphaVantageConfig 行情数据源配置
type AlphaVantageConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// 单次请求超时（秒）
	Timeout int `mapstructure:"timeout"`
}

// ForecastConfig 趋势预测配置
type ForecastConfig struct {
	// 外推天数（自然日）
	HorizonDays int `mapstructure:"horizon_days"`
	// 模型缓存有效期（秒），0 表示不缓存
	ModelCacheTTL int `mapstructure:"model_cache_ttl"`
}

// BacktestConfig 回测请求缺省参数
type BacktestConfig struct {
	InitialInvestment string `mapstructure:"initial_investment"`
	ShortWindow       int    `mapstructure:"short_window"`
	LongWindow        int    `mapstructure:"long_window"`
}

// SchedulerConfig 定时刷新配置
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 带秒的 cron 表达式
	Cron string `mapstructure:"cron"`
	// 刷新后是否立即生成预测
	PredictAfterFetch bool `mapstructure:"predict_after_fetch"`
	// 关注列表
	Watchlist []WatchItem `mapstructure:"watchlist"`
	// 拉取请求 topic，为空时不启动消费者
	FetchRequestTopic string `mapstructure:"fetch_request_topic"`
}

// WatchItem 关注列表中的一个标的
type WatchItem struct {
	Symbol   string `mapstructure:"symbol"`
	DataType string `mapstructure:"data_type"`
	Market   string `mapstructure:"market"`
}

// Load 从 TOML 文件加载配置，文件不存在时只使用默认值与环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 设置环境变量前缀，APP_ALPHA_VANTAGE_API_KEY 覆盖 alpha_vantage.api_key
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "sqlite":
	case "mysql", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.AlphaVantage.BaseURL == "" {
		return fmt.Errorf("alpha_vantage.base_url is required")
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be positive")
	}
	if c.Backtest.ShortWindow <= 0 || c.Backtest.LongWindow <= 0 {
		return fmt.Errorf("backtest windows must be positive")
	}
	if c.RateLimit.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("rate_limit requires redis to be enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.Cron == "" {
		return fmt.Errorf("scheduler.cron is required when scheduler is enabled")
	}
	return nil
}

// KafkaEnabled 是否配置了 Kafka
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "stockinsight")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.prefix", "")
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 60)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/stockinsight.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.group_id", "stockinsight-worker")
	v.SetDefault("kafka.session_timeout", 10)
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/stockinsight.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.qps", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("alpha_vantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("alpha_vantage.api_key", "")
	v.SetDefault("alpha_vantage.timeout", 30)

	v.SetDefault("forecast.horizon_days", 30)
	v.SetDefault("forecast.model_cache_ttl", 3600)

	v.SetDefault("backtest.initial_investment", "10000")
	v.SetDefault("backtest.short_window", 50)
	v.SetDefault("backtest.long_window", 200)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron", "0 0 22 * * *")
	v.SetDefault("scheduler.predict_after_fetch", true)
	v.SetDefault("scheduler.fetch_request_topic", "marketdata.fetch.requests")
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
