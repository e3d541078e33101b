package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type GlobalConfig struct {
	LogLevel string

	Host string
	Port string

	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	DBStatementTimeoutMS int
	DBLockTimeoutMS      int

	RabbitHost string
	RabbitPort int
	RabbitUser string
	RabbitPass string

	MirrorExchange string
	AlertExchange  string

	SnapshotDir     string
	ImportInterval  time.Duration
	AlertInterval   time.Duration
	GraceWindow     time.Duration
	StaleAfter      time.Duration
	MirrorQueueSize int

	Location *time.Location
}

func NewConfig() (GlobalConfig, error) {
	cfg := GlobalConfig{}

	var err error
	if cfg.LogLevel, err = requireEnv("LOG_LEVEL"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.Host, err = requireEnv("HOST"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.Port, err = requireEnv("PORT"); err != nil {
		return GlobalConfig{}, err
	}

	if cfg.DBHost, err = requireEnv("DB_HOST"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.DBPort, err = requireIntEnv("DB_PORT"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.DBUser, err = requireEnv("DB_USER"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.DBPass, err = requireEnv("DB_PASS"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.DBName, err = requireEnv("DB_NAME"); err != nil {
		return GlobalConfig{}, err
	}

	if cfg.RabbitHost, err = requireEnv("RABBITMQ_HOST"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.RabbitPort, err = requireIntEnv("RABBITMQ_PORT"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.RabbitUser, err = requireEnv("RABBITMQ_USER"); err != nil {
		return GlobalConfig{}, err
	}
	if cfg.RabbitPass, err = requireEnv("RABBITMQ_PASS"); err != nil {
		return GlobalConfig{}, err
	}

	cfg.DBStatementTimeoutMS = intOrDefault("DB_STATEMENT_TIMEOUT_MS", 5000)
	cfg.DBLockTimeoutMS = intOrDefault("DB_LOCK_TIMEOUT_MS", 2000)

	cfg.MirrorExchange = envOrDefault("MIRROR_EXCHANGE", "breaktime.mirror")
	cfg.AlertExchange = envOrDefault("ALERT_EXCHANGE", "breaktime.alerts")
	cfg.SnapshotDir = envOrDefault("SNAPSHOT_DIR", "data/snapshots")

	cfg.ImportInterval = time.Duration(intOrDefault("IMPORT_INTERVAL_SECONDS", 30)) * time.Second
	cfg.AlertInterval = time.Duration(intOrDefault("ALERT_INTERVAL_SECONDS", 30)) * time.Second
	cfg.GraceWindow = time.Duration(intOrDefault("GRACE_WINDOW_MINUTES", 3)) * time.Minute
	cfg.StaleAfter = time.Duration(intOrDefault("STALE_AFTER_MINUTES", 120)) * time.Minute
	cfg.MirrorQueueSize = intOrDefault("MIRROR_QUEUE_SIZE", 256)

	tz := envOrDefault("TIMEZONE", "Asia/Manila")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return GlobalConfig{}, fmt.Errorf("TIMEZONE %q is not a valid location: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// AMQPURL builds the broker URL from the Rabbit fields.
func (c *GlobalConfig) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.RabbitUser, c.RabbitPass, c.RabbitHost, c.RabbitPort)
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return v, nil
}

func requireIntEnv(key string) (int, error) {
	s, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOrDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
