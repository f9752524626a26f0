// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"POSAUDIT_DB_PATH" envDefault:"./data/posaudit.db"`
	ServerHost string `env:"POSAUDIT_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"POSAUDIT_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"POSAUDIT_ENV" envDefault:"development"`
	LogLevel   string `env:"POSAUDIT_LOG_LEVEL" envDefault:"info"`
	CompanyID  string `env:"POSAUDIT_COMPANY_ID" envDefault:"default"`

	// Writer pipeline configuration
	AuditFlushSeconds    int `env:"POSAUDIT_AUDIT_FLUSH_SECONDS" envDefault:"5"`
	AuditBatchSize       int `env:"POSAUDIT_AUDIT_BATCH_SIZE" envDefault:"10"`
	ActivityFlushSeconds int `env:"POSAUDIT_ACTIVITY_FLUSH_SECONDS" envDefault:"3"`
	ActivityBatchSize    int `env:"POSAUDIT_ACTIVITY_BATCH_SIZE" envDefault:"20"`
	QueueCapacity        int `env:"POSAUDIT_QUEUE_CAPACITY" envDefault:"10000"`

	// Retention configuration, in days
	ActivityRetentionDays int `env:"POSAUDIT_ACTIVITY_RETENTION_DAYS" envDefault:"90"`
	AuditRetentionDays    int `env:"POSAUDIT_AUDIT_RETENTION_DAYS" envDefault:"365"`
	AlertRetentionDays    int `env:"POSAUDIT_ALERT_RETENTION_DAYS" envDefault:"30"`

	// Cache and realtime configuration. RedisURL is optional; when empty the
	// report cache falls back to memory and the change feed stays off.
	RedisURL         string `env:"POSAUDIT_REDIS_URL"`
	CachePrefix      string `env:"POSAUDIT_CACHE_PREFIX" envDefault:"posaudit:"`
	CacheTTLSeconds  int    `env:"POSAUDIT_CACHE_TTL" envDefault:"60"`
	InventoryChannel string `env:"POSAUDIT_INVENTORY_CHANNEL" envDefault:"inventory_changes"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if Redis is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// AuditFlushInterval returns the audit pipeline flush cadence.
func (c Config) AuditFlushInterval() time.Duration {
	return time.Duration(c.AuditFlushSeconds) * time.Second
}

// ActivityFlushInterval returns the activity pipeline flush cadence.
func (c Config) ActivityFlushInterval() time.Duration {
	return time.Duration(c.ActivityFlushSeconds) * time.Second
}

// CacheTTL returns the default cache entry lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.AuditFlushSeconds <= 0 || cfg.ActivityFlushSeconds <= 0 {
		return nil, fmt.Errorf("flush intervals must be positive")
	}
	if cfg.AuditBatchSize <= 0 || cfg.ActivityBatchSize <= 0 {
		return nil, fmt.Errorf("batch sizes must be positive")
	}
	if cfg.QueueCapacity <= 0 {
		return nil, fmt.Errorf("POSAUDIT_QUEUE_CAPACITY must be positive")
	}
	if cfg.ActivityRetentionDays <= 0 || cfg.AuditRetentionDays <= 0 || cfg.AlertRetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive")
	}

	return cfg, nil
}
