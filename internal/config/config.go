package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	PipelineEnabled  bool
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Bulletin archive.
	ArchivePath      string
	ArchiveCacheSize int

	// Heat model.
	Thresholds            domain.Thresholds
	UVBump                domain.UVBump
	SafeCeiling           domain.RiskCategory
	HorizonHours          int
	DefaultSessionMinutes int
	DefaultRole           domain.Role
	ScheduleTablePath     string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	pipelineEnabled, err := parseBool("PIPELINE_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("ARCHIVE_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	thresholds, err := parseThresholds()
	if err != nil {
		return nil, err
	}

	uv, err := parseUVBump()
	if err != nil {
		return nil, err
	}

	ceiling, err := domain.ParseRiskCategory(sharedcfg.EnvOrDefault("HEATGUARD_SAFE_CEILING", domain.DefaultSafeCeiling.Key()))
	if err != nil {
		return nil, fmt.Errorf("invalid HEATGUARD_SAFE_CEILING: %w", err)
	}

	horizon, err := parsePositiveInt("HEATGUARD_HORIZON_HOURS", domain.DefaultHorizonHours)
	if err != nil {
		return nil, err
	}

	session, err := parsePositiveInt("HEATGUARD_SESSION_MINUTES", domain.DefaultSessionMinutes)
	if err != nil {
		return nil, err
	}
	if session > domain.MaxSessionMinutes {
		return nil, fmt.Errorf("invalid HEATGUARD_SESSION_MINUTES: must be at most %d", domain.MaxSessionMinutes)
	}

	role, err := domain.ParseRole(sharedcfg.EnvOrDefault("HEATGUARD_DEFAULT_ROLE", domain.RoleOutdoorWorker.Key()))
	if err != nil {
		return nil, fmt.Errorf("invalid HEATGUARD_DEFAULT_ROLE: %w", err)
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "hourly-forecasts"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "heat-bulletins"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "heatguard"),
		PipelineEnabled:    pipelineEnabled,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ArchivePath:      sharedcfg.EnvOrDefault("ARCHIVE_PATH", "data/heatguard.db"),
		ArchiveCacheSize: cacheSize,

		Thresholds:            thresholds,
		UVBump:                uv,
		SafeCeiling:           ceiling,
		HorizonHours:          horizon,
		DefaultSessionMinutes: session,
		DefaultRole:           role,
		ScheduleTablePath:     os.Getenv("SCHEDULE_TABLE_PATH"),
	}

	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.ArchivePath == "" {
		return nil, errors.New("ARCHIVE_PATH is required")
	}

	return cfg, nil
}

func parseThresholds() (domain.Thresholds, error) {
	def := domain.DefaultThresholds()
	var t domain.Thresholds
	var err error
	if t.RegressionFloorF, err = parseFloat("HEATGUARD_REGRESSION_FLOOR_F", def.RegressionFloorF); err != nil {
		return t, err
	}
	if t.ModerateF, err = parseFloat("HEATGUARD_MODERATE_F", def.ModerateF); err != nil {
		return t, err
	}
	if t.HighF, err = parseFloat("HEATGUARD_HIGH_F", def.HighF); err != nil {
		return t, err
	}
	if t.ExtremeF, err = parseFloat("HEATGUARD_EXTREME_F", def.ExtremeF); err != nil {
		return t, err
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid HEATGUARD thresholds: %w", err)
	}
	return t, nil
}

func parseUVBump() (domain.UVBump, error) {
	def := domain.DefaultUVBump()
	trigger, err := parseFloat("HEATGUARD_UV_TRIGGER", def.TriggerIndex)
	if err != nil {
		return domain.UVBump{}, err
	}
	if trigger < 0 {
		return domain.UVBump{}, errors.New("invalid HEATGUARD_UV_TRIGGER: must be >= 0")
	}
	bump, err := parseFloat("HEATGUARD_UV_BUMP_F", def.MagnitudeF)
	if err != nil {
		return domain.UVBump{}, err
	}
	if bump < 0 {
		return domain.UVBump{}, errors.New("invalid HEATGUARD_UV_BUMP_F: must be >= 0")
	}
	return domain.UVBump{TriggerIndex: trigger, MagnitudeF: bump}, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
