package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/climatenav/navigator/pkg/exposure"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/routing"
)

// Config holds the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Risk   RiskConfig   `yaml:"risk" mapstructure:"risk"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig points at the snapshot inputs.
type DataConfig struct {
	GraphFile     string `yaml:"graph_file" mapstructure:"graph_file"`
	FloodZonesShp string `yaml:"flood_zones_shp" mapstructure:"flood_zones_shp"`
	AlertsFile    string `yaml:"alerts_file" mapstructure:"alerts_file"`
	GaugesFile    string `yaml:"gauges_file" mapstructure:"gauges_file"`
}

// EngineConfig tunes the route engine.
type EngineConfig struct {
	NearestNodeRadiusMeters float64 `yaml:"nearest_node_radius_meters" mapstructure:"nearest_node_radius_meters"`
	SampleStepMeters        float64 `yaml:"sample_step_meters" mapstructure:"sample_step_meters"`
	GaugeBufferMeters       float64 `yaml:"gauge_buffer_meters" mapstructure:"gauge_buffer_meters"`
	UseHeuristic            bool    `yaml:"use_heuristic" mapstructure:"use_heuristic"`
	PrecomputeWorkers       int     `yaml:"precompute_workers" mapstructure:"precompute_workers"`
	RouteTTLMinutes         int     `yaml:"route_ttl_minutes" mapstructure:"route_ttl_minutes"`
}

// RiskConfig holds the per-hazard-type weights and the safest-profile
// risk factor.
type RiskConfig struct {
	Weights      risk.Weights `yaml:"weights" mapstructure:"weights"`
	SafestFactor float64      `yaml:"safest_factor" mapstructure:"safest_factor"`
}

// EngineOptions assembles the routing engine configuration.
func (c *Config) EngineOptions() routing.Config {
	return routing.Config{
		NearestNodeRadiusMeters: c.Engine.NearestNodeRadiusMeters,
		Exposure: exposure.Config{
			SampleStepMeters:  c.Engine.SampleStepMeters,
			GaugeBufferMeters: c.Engine.GaugeBufferMeters,
		},
		Risk: risk.Config{
			Weights:      c.Risk.Weights,
			SafestFactor: c.Risk.SafestFactor,
		},
		UseHeuristic:      c.Engine.UseHeuristic,
		PrecomputeWorkers: c.Engine.PrecomputeWorkers,
		RouteTTL:          time.Duration(c.Engine.RouteTTLMinutes) * time.Minute,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NAVIGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.nearest_node_radius_meters", routing.DefaultNearestNodeRadiusMeters)
	v.SetDefault("engine.sample_step_meters", exposure.DefaultSampleStepMeters)
	v.SetDefault("engine.gauge_buffer_meters", exposure.DefaultGaugeBufferMeters)
	v.SetDefault("engine.use_heuristic", true)
	v.SetDefault("engine.precompute_workers", 4)
	v.SetDefault("engine.route_ttl_minutes", 60)
	v.SetDefault("risk.safest_factor", risk.DefaultSafestFactor)
	v.SetDefault("risk.weights.floodplain", 1.0)
	v.SetDefault("risk.weights.river_forecast", 0.8)
	v.SetDefault("risk.weights.rain_intensity", 0.6)
	v.SetDefault("risk.weights.alert_severity", 0.9)
	v.SetDefault("risk.weights.historic_incident", 0.4)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read")
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
