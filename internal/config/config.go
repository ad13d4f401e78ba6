// Package config loads taskmgr settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// AutoName makes Resolve generate a fresh channel name for every run.
const AutoName = "auto"

// Config is the top level configuration.
type Config struct {
	Queue   QueueConfig   `yaml:"queue"`
	Channel ChannelConfig `yaml:"channel"`
	Log     LogConfig     `yaml:"log"`
	Trace   TraceConfig   `yaml:"trace"`
}

// QueueConfig controls worker queues.
type QueueConfig struct {
	TimeoutMs   int `yaml:"timeout_ms"`
	TaskDelayMs int `yaml:"task_delay_ms"`
}

// ChannelConfig selects and locates the shared channel.
type ChannelConfig struct {
	Backend string      `yaml:"backend"` // shm, redis
	Dir     string      `yaml:"dir"`
	Name    string      `yaml:"name"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig is used by the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`
}

// LogConfig mirrors the logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, stderr, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// TraceConfig enables the stdout span exporter.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			TimeoutMs:   1000,
			TaskDelayMs: 2000,
		},
		Channel: ChannelConfig{
			Backend: "shm",
			Dir:     defaultDir(),
			Name:    "taskmgr",
			Redis:   RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Load reads path on top of the defaults. An empty path yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TASKMGR_CHANNEL_BACKEND")); v != "" {
		c.Channel.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMGR_REDIS_ADDR")); v != "" {
		c.Channel.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Channel.Redis.Password = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Queue.TimeoutMs < 0 {
		return errors.New("config: queue.timeout_ms must not be negative")
	}
	if c.Queue.TaskDelayMs < 0 {
		return errors.New("config: queue.task_delay_ms must not be negative")
	}
	switch c.Channel.Backend {
	case "shm":
		if c.Channel.Dir == "" {
			return errors.New("config: channel.dir is required for shm backend")
		}
	case "redis":
		if c.Channel.Redis.Addr == "" {
			return errors.New("config: channel.redis.addr is required for redis backend")
		}
	default:
		return fmt.Errorf("config: unknown channel.backend %q", c.Channel.Backend)
	}
	if c.Channel.Name == "" {
		return errors.New("config: channel.name is required")
	}
	if strings.ContainsAny(c.Channel.Name, "/{}") {
		return fmt.Errorf("config: invalid channel.name %q", c.Channel.Name)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}

// Resolve replaces AutoName with a generated channel name.
func (c *Config) Resolve() {
	if c.Channel.Name == AutoName {
		c.Channel.Name = uuid.NewString()
	}
}

// Timeout returns the queue deadlock timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Queue.TimeoutMs) * time.Millisecond
}

// TaskDelay returns the artificial delay before each task body.
func (c *Config) TaskDelay() time.Duration {
	return time.Duration(c.Queue.TaskDelayMs) * time.Millisecond
}

func defaultDir() string {
	if st, err := os.Stat("/dev/shm"); err == nil && st.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}
