package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures data-unit downloads from OAS.
type FetchConfig struct {
	Manifest      string  `yaml:"manifest" mapstructure:"manifest"`
	DownloadDir   string  `yaml:"download_dir" mapstructure:"download_dir"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	Concurrency   int     `yaml:"concurrency" mapstructure:"concurrency"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// FilterConfig configures the filtering pass.
type FilterConfig struct {
	InputDir  string `yaml:"input_dir" mapstructure:"input_dir"`
	CSVDir    string `yaml:"csv_dir" mapstructure:"csv_dir"`
	FastaDir  string `yaml:"fasta_dir" mapstructure:"fasta_dir"`
	Extension string `yaml:"extension" mapstructure:"extension"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "oas-runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.download_dir", "data/raw")
	v.SetDefault("fetch.user_agent", "oas-cli/1.0")
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.rate_per_second", 2)
	v.SetDefault("filter.input_dir", "data/raw")
	v.SetDefault("filter.csv_dir", "data/filtered/csv")
	v.SetDefault("filter.fasta_dir", "data/filtered/fasta")
	v.SetDefault("filter.extension", ".csv")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
