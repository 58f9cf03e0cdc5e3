package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Recalc   RecalcConfig   `yaml:"recalc"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	DefaultWeights   WeightsConfig `yaml:"default_weights"`
	BatchConcurrency int           `yaml:"batch_concurrency"`
	Geography        GeoPolicy     `yaml:"geography"`
	Service          ServicePolicy `yaml:"service"`
}

// WeightsConfig is the fallback dimension weighting used when a universe
// leaves its weights unset.
type WeightsConfig struct {
	Size       float64 `yaml:"size"`
	Geography  float64 `yaml:"geography"`
	Service    float64 `yaml:"service"`
	OwnerGoals float64 `yaml:"owner_goals"`
}

// GeoPolicy holds the geography scorer's overlap tiers. The exact thresholds
// are policy, not algorithm, so they live in configuration.
type GeoPolicy struct {
	FullScore      float64 `yaml:"full_score"`
	FullMult       float64 `yaml:"full_mult"`
	HighThreshold  float64 `yaml:"high_threshold"`
	HighScore      float64 `yaml:"high_score"`
	HighMult       float64 `yaml:"high_mult"`
	PartThreshold  float64 `yaml:"part_threshold"`
	PartScore      float64 `yaml:"part_score"`
	PartMult       float64 `yaml:"part_mult"`
	LowScore       float64 `yaml:"low_score"`
	LowMult        float64 `yaml:"low_mult"`
	NoneScore      float64 `yaml:"none_score"`
	NoneMult       float64 `yaml:"none_mult"`
	StrictPartScore float64 `yaml:"strict_part_score"`
	StrictPartMult  float64 `yaml:"strict_part_mult"`
	StrictNoneScore float64 `yaml:"strict_none_score"`
	StrictNoneMult  float64 `yaml:"strict_none_mult"`
	NationalScore   float64 `yaml:"national_score"`
}

// ServicePolicy holds the service scorer's overlap tiers. Preferred-only
// matches are capped below the required-list ceiling.
type ServicePolicy struct {
	FullScore         float64 `yaml:"full_score"`
	FullMult          float64 `yaml:"full_mult"`
	HighThreshold     float64 `yaml:"high_threshold"`
	HighScore         float64 `yaml:"high_score"`
	HighMult          float64 `yaml:"high_mult"`
	PartThreshold     float64 `yaml:"part_threshold"`
	PartScore         float64 `yaml:"part_score"`
	PartMult          float64 `yaml:"part_mult"`
	LowScore          float64 `yaml:"low_score"`
	LowMult           float64 `yaml:"low_mult"`
	PreferredCeiling  float64 `yaml:"preferred_ceiling"`
	PreferredMult     float64 `yaml:"preferred_mult"`
	NoneScore         float64 `yaml:"none_score"`
	NoneMult          float64 `yaml:"none_mult"`
}

type RecalcConfig struct {
	Enabled      bool `yaml:"enabled"`
	IntervalMs   int  `yaml:"interval_ms"`
	MinDecisions int  `yaml:"min_decisions"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RecalcInterval() time.Duration {
	return time.Duration(c.Recalc.IntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Scoring: ScoringConfig{
			DefaultWeights: WeightsConfig{
				Size:       25,
				Geography:  25,
				Service:    25,
				OwnerGoals: 25,
			},
			BatchConcurrency: 8,
			Geography:        DefaultGeoPolicy(),
			Service:          DefaultServicePolicy(),
		},
		Recalc: RecalcConfig{
			Enabled:      true,
			IntervalMs:   3600000,
			MinDecisions: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func DefaultGeoPolicy() GeoPolicy {
	return GeoPolicy{
		FullScore:      95,
		FullMult:       1.0,
		HighThreshold:  0.75,
		HighScore:      88,
		HighMult:       0.95,
		PartThreshold:  0.5,
		PartScore:      75,
		PartMult:       0.9,
		LowScore:       60,
		LowMult:        0.8,
		NoneScore:      25,
		NoneMult:       0.4,
		StrictPartScore: 45,
		StrictPartMult:  0.5,
		StrictNoneScore: 10,
		StrictNoneMult:  0.2,
		NationalScore:   85,
	}
}

func DefaultServicePolicy() ServicePolicy {
	return ServicePolicy{
		FullScore:        95,
		FullMult:         1.0,
		HighThreshold:    0.75,
		HighScore:        85,
		HighMult:         0.95,
		PartThreshold:    0.5,
		PartScore:        70,
		PartMult:         0.85,
		LowScore:         50,
		LowMult:          0.6,
		PreferredCeiling: 65,
		PreferredMult:    0.8,
		NoneScore:        20,
		NoneMult:         0.3,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FITSCORE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FITSCORE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FITSCORE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FITSCORE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FITSCORE_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FITSCORE_RECALC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recalc.IntervalMs = n
		}
	}
	if v := os.Getenv("FITSCORE_RECALC_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Recalc.Enabled = b
		}
	}
	if v := os.Getenv("FITSCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
