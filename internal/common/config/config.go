// Package config 提供应用配置管理功能
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	globalConfig *Config
	once         sync.Once
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Business  BusinessConfig  `mapstructure:"business"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Name            string `mapstructure:"name"`
	Mode            string `mapstructure:"mode"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogMode         bool   `mapstructure:"log_mode"`
	SlowThreshold   int    `mapstructure:"slow_threshold"`
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		// 开启外键以支持级联删除
		return d.SQLitePath + "?_foreign_keys=on"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Timezone,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Addr 返回 Redis 地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Broker         string `mapstructure:"broker"`
	ClientIDPrefix string `mapstructure:"client_id_prefix"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	KeepAlive      int    `mapstructure:"keep_alive"`
	AutoReconnect  bool   `mapstructure:"auto_reconnect"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
	QoS            byte   `mapstructure:"qos"`
	Retained       bool   `mapstructure:"retained"`
	TopicPrefix    string `mapstructure:"topic_prefix"`
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
	Caller     bool   `mapstructure:"caller"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	Booking BookingConfig `mapstructure:"booking"`
}

// BookingConfig 预订配置
type BookingConfig struct {
	VIPDiscountRate float64 `mapstructure:"vip_discount_rate"`
	LockBackend     string  `mapstructure:"lock_backend"`
	LockTTL         int     `mapstructure:"lock_ttl"`
	LockWait        int     `mapstructure:"lock_wait"`
	StatsInterval   int     `mapstructure:"stats_interval"`
	Timezone        string  `mapstructure:"timezone"`
}

// LockTTLDuration 房间锁过期时间
func (b *BookingConfig) LockTTLDuration() time.Duration {
	return time.Duration(b.LockTTL) * time.Second
}

// LockWaitDuration 获取房间锁的最长等待时间
func (b *BookingConfig) LockWaitDuration() time.Duration {
	return time.Duration(b.LockWait) * time.Millisecond
}

// StatsIntervalDuration 统计刷新间隔
func (b *BookingConfig) StatsIntervalDuration() time.Duration {
	return time.Duration(b.StatsInterval) * time.Second
}

// Location 业务日期所在时区，解析失败时回退到 UTC
func (b *BookingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load 加载配置，进程内只解析一次
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		// .env 仅用于本地开发，缺失时忽略
		_ = godotenv.Load()
		globalConfig, err = load(configPath)
	})
	return globalConfig, err
}

// Get 获取全局配置，未 Load 时返回默认配置
func Get() *Config {
	if globalConfig == nil {
		cfg := &Config{}
		_ = newViper().Unmarshal(cfg)
		globalConfig = cfg
	}
	return globalConfig
}

func load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper 带默认值与环境变量映射，如 DATABASE_HOST 覆盖 database.host
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

var defaults = map[string]interface{}{
	"server.name":             "hotel-booking-core",
	"server.mode":             "debug",
	"server.port":             8000,
	"server.read_timeout":     30,
	"server.write_timeout":    30,
	"server.shutdown_timeout": 10,

	"database.driver":            "postgres",
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "postgres",
	"database.password":          "postgres",
	"database.name":              "hotel_booking",
	"database.sslmode":           "disable",
	"database.timezone":          "UTC",
	"database.sqlite_path":       "./data/hotel.db",
	"database.auto_migrate":      true,
	"database.max_idle_conns":    10,
	"database.max_open_conns":    50,
	"database.conn_max_lifetime": 60,
	"database.log_mode":          false,
	"database.slow_threshold":    200,

	"redis.enabled":        true,
	"redis.host":           "localhost",
	"redis.port":           6379,
	"redis.password":       "",
	"redis.db":             0,
	"redis.pool_size":      50,
	"redis.min_idle_conns": 5,
	"redis.dial_timeout":   5,
	"redis.read_timeout":   3,
	"redis.write_timeout":  3,

	"mqtt.enabled":          false,
	"mqtt.broker":           "tcp://localhost:1883",
	"mqtt.client_id_prefix": "hotel-booking-",
	"mqtt.keep_alive":       60,
	"mqtt.auto_reconnect":   true,
	"mqtt.connect_timeout":  10,
	"mqtt.qos":              1,
	"mqtt.retained":         false,
	"mqtt.topic_prefix":     "hotel/",

	"logger.level":       "debug",
	"logger.format":      "console",
	"logger.output":      "stdout",
	"logger.file_path":   "./logs/app.log",
	"logger.max_size":    100,
	"logger.max_backups": 10,
	"logger.max_age":     30,
	"logger.compress":    true,
	"logger.caller":      true,

	"metrics.enabled":   true,
	"metrics.namespace": "hotel_booking",
	"metrics.path":      "/metrics",

	"tracing.enabled":      false,
	"tracing.service_name": "hotel-booking-core",
	"tracing.sample_rate":  1.0,

	"ratelimit.enabled":             true,
	"ratelimit.requests_per_minute": 600,

	"cors.allowed_origins":   []string{"*"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	"cors.exposed_headers":   []string{"X-Request-ID", "traceparent"},
	"cors.allow_credentials": true,
	"cors.max_age":           86400,

	"business.booking.vip_discount_rate": 0.25,
	"business.booking.lock_backend":      "local",
	"business.booking.lock_ttl":          10,
	"business.booking.lock_wait":         3000,
	"business.booking.stats_interval":    60,
	"business.booking.timezone":          "UTC",
}

// Validate 校验会导致启动后行为异常的配置项
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		problems = append(problems, fmt.Sprintf("database.driver %q unsupported", c.Database.Driver))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		problems = append(problems, "ratelimit.requests_per_minute must be positive")
	}

	b := c.Business.Booking
	if b.VIPDiscountRate < 0 || b.VIPDiscountRate >= 1 {
		problems = append(problems, fmt.Sprintf("business.booking.vip_discount_rate %.2f not in [0,1)", b.VIPDiscountRate))
	}
	if b.LockBackend != "local" && b.LockBackend != "redis" {
		problems = append(problems, fmt.Sprintf("business.booking.lock_backend %q unsupported", b.LockBackend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDebug 是否为调试模式
func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}

// IsRelease 是否为发布模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release" || c.Server.Mode == "production"
}
