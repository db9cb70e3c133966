package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		ThrottleRPS     float64       `yaml:"throttle_rps"`
		ThrottleBurst   int           `yaml:"throttle_burst"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Markets struct {
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		Timeout      time.Duration `yaml:"timeout"`
		LookbackDays int           `yaml:"lookback_days"`
		StreamURL    string        `yaml:"stream_url"`
		Symbols      []string      `yaml:"symbols"`
		PingInterval time.Duration `yaml:"ping_interval"`
	} `yaml:"markets"`
	News struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
		Limit   int           `yaml:"limit"`
	} `yaml:"news"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory | redis
		TTL     time.Duration `yaml:"ttl"`
		MaxSize int           `yaml:"max_size"`
		Redis   Redis         `yaml:"redis"`
	} `yaml:"cache"`
	Admission struct {
		Backend       string        `yaml:"backend"` // memory | redis
		BurstLimit    int           `yaml:"burst_limit"`
		BurstWindow   time.Duration `yaml:"burst_window"`
		DailyLimit    int           `yaml:"daily_limit"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		ProWallets    []string      `yaml:"pro_wallets"`
		Redis         Redis         `yaml:"redis"`
	} `yaml:"admission"`
	Events struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		Async        bool          `yaml:"async"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"events"`
	Archive struct {
		Enabled       bool          `yaml:"enabled"`
		Host          string        `yaml:"host"`
		Port          int           `yaml:"port"`
		Database      string        `yaml:"database"`
		User          string        `yaml:"user"`
		Password      string        `yaml:"password"`
		DialTimeout   time.Duration `yaml:"dial_timeout"`
		ReadTimeout   time.Duration `yaml:"read_timeout"`
		WriteTimeout  time.Duration `yaml:"write_timeout"`
		BatchSize     int           `yaml:"batch_size"`
		FlushInterval time.Duration `yaml:"flush_interval"`
	} `yaml:"archive"`
}

// Redis holds connection settings shared by the cache and admission stores.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETS_API_KEY"); v != "" {
		c.Markets.APIKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Markets.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Admission.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = 1000
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Admission.Backend == "" {
		c.Admission.Backend = "memory"
	}
	if c.Admission.BurstLimit <= 0 {
		c.Admission.BurstLimit = 10
	}
	if c.Admission.BurstWindow <= 0 {
		c.Admission.BurstWindow = time.Minute
	}
	if c.Admission.DailyLimit <= 0 {
		c.Admission.DailyLimit = 50
	}
	if c.Markets.Timeout <= 0 {
		c.Markets.Timeout = 4 * time.Second
	}
	if c.Markets.LookbackDays <= 0 {
		c.Markets.LookbackDays = 30
	}
	if c.News.Timeout <= 0 {
		c.News.Timeout = 4 * time.Second
	}
	if c.News.Limit <= 0 {
		c.News.Limit = 20
	}
	if c.Archive.BatchSize <= 0 {
		c.Archive.BatchSize = 100
	}
	if c.Archive.FlushInterval <= 0 {
		c.Archive.FlushInterval = 10 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	switch c.Admission.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("admission.backend must be 'memory' or 'redis', got '%s'", c.Admission.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for redis backend")
	}
	if c.Admission.Backend == "redis" && c.Admission.Redis.Addr == "" {
		return fmt.Errorf("admission.redis.addr is required for redis backend")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers cannot be empty when events are enabled")
	}
	if c.Archive.Enabled && c.Archive.Host == "" {
		return fmt.Errorf("archive.host is required when archive is enabled")
	}
	return nil
}
