// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Interface exposes read access to the loaded configuration.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Browser() BrowserConfig
	Cursor() CursorConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserEngine(string)

	// Cursor Setters
	SetCursorWander(bool)
	SetCursorSeed(int64)
	SetCursorHoldDurationMs(int)

	// Database Setters
	SetDatabaseRecord(bool)
}

// Config is the root of the ghostcursor configuration tree.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	CursorCfg   CursorConfig   `mapstructure:"cursor" yaml:"cursor"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Cursor() CursorConfig     { return c.CursorCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)      { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserEngine(e string)      { c.BrowserCfg.Engine = e }
func (c *Config) SetCursorWander(b bool)         { c.CursorCfg.Wander = b }
func (c *Config) SetCursorSeed(s int64)          { c.CursorCfg.Seed = s }
func (c *Config) SetCursorHoldDurationMs(ms int) { c.CursorCfg.HoldDurationMs = &ms }
func (c *Config) SetDatabaseRecord(b bool)       { c.DatabaseCfg.Record = b }

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the trajectory store connection details.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Record stores every traced trajectory when set.
	Record bool `mapstructure:"record" yaml:"record"`
}

// Supported browser engines.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// BrowserConfig holds settings for the launched browser.
type BrowserConfig struct {
	Engine     string         `mapstructure:"engine" yaml:"engine"`
	ExecPath   string         `mapstructure:"exec_path" yaml:"exec_path"`
	Headless   bool           `mapstructure:"headless" yaml:"headless"`
	DisableGPU bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	Args       []string       `mapstructure:"args" yaml:"args"`
	Viewport   map[string]int `mapstructure:"viewport" yaml:"viewport"`
	// Timeout bounds navigation and the whole demo interaction.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NewDefaultConfig returns a config populated only from defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always decode; a failure here is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ghostcursor")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Database --
	v.SetDefault("database.url", "")
	v.SetDefault("database.record", false)

	// -- Browser --
	v.SetDefault("browser.engine", EngineChromedp)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.timeout", "60s")
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 720})

	setCursorDefaults(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("database.url", "GHOSTCURSOR_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// DATABASE_URL is the conventional fallback for Postgres tooling.
	if cfg.DatabaseCfg.URL == "" {
		cfg.DatabaseCfg.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.BrowserCfg.Engine {
	case EngineChromedp, EngineRod:
	default:
		return fmt.Errorf("browser.engine must be %q or %q, got %q", EngineChromedp, EngineRod, c.BrowserCfg.Engine)
	}
	if c.BrowserCfg.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive")
	}
	if c.DatabaseCfg.Record && c.DatabaseCfg.URL == "" {
		return fmt.Errorf("database.url is required when database.record is enabled")
	}
	if err := c.CursorCfg.Validate(); err != nil {
		return fmt.Errorf("cursor configuration invalid: %w", err)
	}
	return nil
}
