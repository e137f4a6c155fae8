package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data  DataConfig  `yaml:"data" mapstructure:"data"`
	Tiles TilesConfig `yaml:"tiles" mapstructure:"tiles"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the density GeoJSON.
type DataConfig struct {
	Path    string        `yaml:"path" mapstructure:"path"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TilesConfig configures the basemap tile layer.
type TilesConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	URL               string        `yaml:"url" mapstructure:"url"`
	Subdomains        []string      `yaml:"subdomains" mapstructure:"subdomains"`
	Attribution       string        `yaml:"attribution" mapstructure:"attribution"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	CacheSize         int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	Concurrency       int           `yaml:"concurrency" mapstructure:"concurrency"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig configures logging. The terminal belongs to the UI, so logs go
// to File.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"data":      "data.path",
	"log-file":  "log.file",
	"log-level": "log.level",
}

// Load reads configuration from defaults, an optional config file, the
// environment (DPDMAP_*) and finally the given flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	// Environment
	v.SetEnvPrefix("DPDMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.path", "layers/Dublin_SA1_TOTALPOP_DEN.geojson")
	v.SetDefault("data.timeout", 30*time.Second)
	v.SetDefault("tiles.enabled", true)
	v.SetDefault("tiles.url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("tiles.subdomains", []string{"a", "b", "c"})
	v.SetDefault("tiles.attribution", "© OpenStreetMap contributors")
	v.SetDefault("tiles.user_agent", "dpdmap/1.0 (+terminal density map)")
	v.SetDefault("tiles.cache_size", 256)
	v.SetDefault("tiles.cache_ttl", time.Hour)
	v.SetDefault("tiles.requests_per_second", 8.0)
	v.SetDefault("tiles.burst", 4)
	v.SetDefault("tiles.concurrency", 4)
	v.SetDefault("tiles.timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "dpdmap.log")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, eris.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
	}

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

	if flags != nil {
		if off, err := flags.GetBool("no-tiles"); err == nil && off {
			cfg.Tiles.Enabled = false
		}
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

	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
