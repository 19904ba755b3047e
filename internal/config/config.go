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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Parse    ParseConfig    `yaml:"parse" mapstructure:"parse"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ParseConfig configures raw-table parsing.
type ParseConfig struct {
	HeaderKeywords []string `yaml:"header_keywords" mapstructure:"header_keywords"`
	MinFilledCells int      `yaml:"min_filled_cells" mapstructure:"min_filled_cells"`
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
}

// ValidateConfig configures price anomaly detection.
type ValidateConfig struct {
	AbsoluteMin       float64 `yaml:"absolute_min" mapstructure:"absolute_min"`
	AbsoluteMax       float64 `yaml:"absolute_max" mapstructure:"absolute_max"`
	DeviationFraction float64 `yaml:"deviation_fraction" mapstructure:"deviation_fraction"`
	ReportTop         int     `yaml:"report_top" mapstructure:"report_top"`
}

// ServerConfig configures the read-only dataset server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("KOMPAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "kompas.db")
	v.SetDefault("parse.header_keywords", []string{"powiat", "nazwa", "lp."})
	v.SetDefault("parse.min_filled_cells", 2)
	v.SetDefault("parse.concurrency", 4)
	v.SetDefault("validate.absolute_min", 4000.00)
	v.SetDefault("validate.absolute_max", 12000.00)
	v.SetDefault("validate.deviation_fraction", 0.30)
	v.SetDefault("validate.report_top", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
