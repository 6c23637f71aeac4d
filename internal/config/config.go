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
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	// KeyFields is the ordered list of boundary property names tried when
	// deriving the ZIP key. First present field wins, even when its value
	// is an empty string.
	KeyFields []string     `yaml:"key_fields" mapstructure:"key_fields"`
	Store     StoreConfig  `yaml:"store" mapstructure:"store"`
	Server    ServerConfig `yaml:"server" mapstructure:"server"`
	Log       LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig holds input and output file paths.
type DataConfig struct {
	GeoJSON       string `yaml:"geojson" mapstructure:"geojson"`
	ZORI          string `yaml:"zori" mapstructure:"zori"`
	OutGeoJSON    string `yaml:"out_geojson" mapstructure:"out_geojson"`
	OutTimeseries string `yaml:"out_timeseries" mapstructure:"out_timeseries"`
}

// FilterConfig restricts ZORI rows to a geographic subset.
type FilterConfig struct {
	State       string   `yaml:"state" mapstructure:"state"`
	ZipPrefixes []string `yaml:"zip_prefixes" mapstructure:"zip_prefixes"`
	MinYear     int      `yaml:"min_year" mapstructure:"min_year"`
}

// StoreConfig configures the run-history database. An empty Path
// disables history entirely.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the data API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NYCZipPrefixes are the ZIP prefixes covering the five boroughs.
var NYCZipPrefixes = []string{"100", "101", "102", "103", "104", "110", "111", "112", "113", "114", "116"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RENTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.geojson", "data/raw/nyc_zipcodes.geojson")
	v.SetDefault("data.zori", "data/raw/zillow_zori.csv")
	v.SetDefault("data.out_geojson", "data/processed/nyc_rent_data.geojson")
	v.SetDefault("data.out_timeseries", "data/processed/rent_timeseries.json")
	v.SetDefault("filter.state", "NY")
	v.SetDefault("filter.zip_prefixes", NYCZipPrefixes)
	v.SetDefault("filter.min_year", 2015)
	v.SetDefault("key_fields", []string{"postalCode", "ZIPCODE", "ZCTA5CE10"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
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
