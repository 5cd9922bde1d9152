// config.go - Service configuration management

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"leverage/internal/utils"
)

const (
	EnvPrefix      = "LEVERAGE"
	ConfigFileName = "leverage"

	StoreDriverLevelDB = "leveldb"
	StoreDriverSQLite  = "sqlite"
)

type ConfigServer struct {
	ListenAddr   string        `json:"listenAddr" mapstructure:"listenAddr" toml:"listenAddr"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"readTimeout" toml:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"writeTimeout" toml:"writeTimeout"`
	RateLimit    float64       `json:"rateLimit" mapstructure:"rateLimit" toml:"rateLimit"` // 每秒请求数，<=0 关闭限流
	RateBurst    int           `json:"rateBurst" mapstructure:"rateBurst" toml:"rateBurst"`
}

type ConfigLog struct {
	Level string `json:"level" mapstructure:"level" toml:"level"`
	Dir   string `json:"dir" mapstructure:"dir" toml:"dir"`
}

type ConfigStore struct {
	Driver      string         `json:"driver" mapstructure:"driver" toml:"driver"` // leveldb | sqlite
	DataDir     string         `json:"dataDir" mapstructure:"dataDir" toml:"dataDir"`
	PageSize    int            `json:"pageSize" mapstructure:"pageSize" toml:"pageSize"`
	MaxPageSize int            `json:"maxPageSize" mapstructure:"maxPageSize" toml:"maxPageSize"`
	SQLite      DatabaseConfig `json:"sqlite" mapstructure:"sqlite" toml:"sqlite"`
}

type ConfigFetcher struct {
	APIBaseURL string        `json:"apiBaseURL" mapstructure:"apiBaseURL" toml:"apiBaseURL"`
	Token      string        `json:"token" mapstructure:"token" toml:"token"`
	UserAgent  string        `json:"userAgent" mapstructure:"userAgent" toml:"userAgent"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout" toml:"timeout"`
}

type ConfigAnalysis struct {
	SingleFlight   bool          `json:"singleFlight" mapstructure:"singleFlight" toml:"singleFlight"`
	LeaseTTL       time.Duration `json:"leaseTTL" mapstructure:"leaseTTL" toml:"leaseTTL"`
	StaleAfter     time.Duration `json:"staleAfter" mapstructure:"staleAfter" toml:"staleAfter"`
	IgnorePatterns []string      `json:"ignorePatterns" mapstructure:"ignorePatterns" toml:"ignorePatterns"`
}

type ConfigJobs struct {
	StaleCheckInterval time.Duration `json:"staleCheckInterval" mapstructure:"staleCheckInterval" toml:"staleCheckInterval"`
}

// Config 服务配置文件结构
type Config struct {
	Server   ConfigServer   `json:"server" mapstructure:"server" toml:"server"`
	Log      ConfigLog      `json:"log" mapstructure:"log" toml:"log"`
	Store    ConfigStore    `json:"store" mapstructure:"store" toml:"store"`
	Fetcher  ConfigFetcher  `json:"fetcher" mapstructure:"fetcher" toml:"fetcher"`
	Analysis ConfigAnalysis `json:"analysis" mapstructure:"analysis" toml:"analysis"`
	Jobs     ConfigJobs     `json:"jobs" mapstructure:"jobs" toml:"jobs"`
}

var DefaultIgnorePatterns = []string{
	"node_modules/", "vendor/", ".git/",
}

// DefaultConfig returns the built-in configuration. Paths are resolved
// against utils.AppRootDir at call time.
func DefaultConfig() *Config {
	return &Config{
		Server: ConfigServer{
			ListenAddr:   "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit:    50,
			RateBurst:    100,
		},
		Log: ConfigLog{
			Level: "info",
			Dir:   utils.LogsDir,
		},
		Store: ConfigStore{
			Driver:      StoreDriverLevelDB,
			DataDir:     utils.DataDir,
			PageSize:    50,
			MaxPageSize: 200,
			SQLite:      *DefaultDatabaseConfig(utils.DataDir),
		},
		Fetcher: ConfigFetcher{
			APIBaseURL: "https://api.github.com",
			UserAgent:  "leverage-analyzer",
			Timeout:    20 * time.Second,
		},
		Analysis: ConfigAnalysis{
			SingleFlight:   true,
			LeaseTTL:       2 * time.Minute,
			StaleAfter:     5 * time.Minute,
			IgnorePatterns: DefaultIgnorePatterns,
		},
		Jobs: ConfigJobs{
			StaleCheckInterval: time.Minute,
		},
	}
}

// Load reads configuration from configFile, or from leverage.{toml,yaml,json}
// in the working directory and the app root when configFile is empty. A
// missing file is not an error. LEVERAGE_* environment variables override
// file values, e.g. LEVERAGE_STORE_DRIVER=sqlite.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(".")
		v.AddConfigPath(utils.AppRootDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Store.SQLite.DataDir == "" {
		cfg.Store.SQLite.DataDir = cfg.Store.DataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it on Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.listenAddr", d.Server.ListenAddr)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.rateLimit", d.Server.RateLimit)
	v.SetDefault("server.rateBurst", d.Server.RateBurst)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dataDir", d.Store.DataDir)
	v.SetDefault("store.pageSize", d.Store.PageSize)
	v.SetDefault("store.maxPageSize", d.Store.MaxPageSize)
	v.SetDefault("store.sqlite.dataDir", "")
	v.SetDefault("store.sqlite.databaseName", d.Store.SQLite.DatabaseName)
	v.SetDefault("store.sqlite.maxOpenConns", d.Store.SQLite.MaxOpenConns)
	v.SetDefault("store.sqlite.maxIdleConns", d.Store.SQLite.MaxIdleConns)
	v.SetDefault("store.sqlite.connMaxLifetime", d.Store.SQLite.ConnMaxLifetime)
	v.SetDefault("store.sqlite.connMaxIdleTime", d.Store.SQLite.ConnMaxIdleTime)
	v.SetDefault("store.sqlite.enableWAL", d.Store.SQLite.EnableWAL)
	v.SetDefault("store.sqlite.busyTimeout", d.Store.SQLite.BusyTimeout)

	v.SetDefault("fetcher.apiBaseURL", d.Fetcher.APIBaseURL)
	v.SetDefault("fetcher.token", d.Fetcher.Token)
	v.SetDefault("fetcher.userAgent", d.Fetcher.UserAgent)
	v.SetDefault("fetcher.timeout", d.Fetcher.Timeout)

	v.SetDefault("analysis.singleFlight", d.Analysis.SingleFlight)
	v.SetDefault("analysis.leaseTTL", d.Analysis.LeaseTTL)
	v.SetDefault("analysis.staleAfter", d.Analysis.StaleAfter)
	v.SetDefault("analysis.ignorePatterns", d.Analysis.IgnorePatterns)

	v.SetDefault("jobs.staleCheckInterval", d.Jobs.StaleCheckInterval)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverLevelDB, StoreDriverSQLite:
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.DataDir == "" {
		return errors.New("store.dataDir is required")
	}
	if c.Store.PageSize <= 0 || c.Store.MaxPageSize <= 0 {
		return errors.New("store page sizes must be positive")
	}
	if c.Store.PageSize > c.Store.MaxPageSize {
		return fmt.Errorf("store.pageSize %d exceeds store.maxPageSize %d", c.Store.PageSize, c.Store.MaxPageSize)
	}
	if c.Fetcher.APIBaseURL == "" {
		return errors.New("fetcher.apiBaseURL is required")
	}
	if c.Fetcher.Timeout <= 0 {
		return errors.New("fetcher.timeout must be positive")
	}
	if c.Analysis.SingleFlight && c.Analysis.LeaseTTL <= 0 {
		return errors.New("analysis.leaseTTL must be positive when singleFlight is enabled")
	}
	return nil
}

// TOML renders the effective configuration. The fetcher token is masked.
func (c *Config) TOML() ([]byte, error) {
	masked := *c
	if masked.Fetcher.Token != "" {
		masked.Fetcher.Token = "******"
	}
	return toml.Marshal(masked)
}
