package config

import (
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/infra/ai"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/playbook"
	redisclient "github.com/Balaji2106/demo-autoremediation/internal/infra/redis"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig       `yaml:"server"`
	Database    postgres.Config    `yaml:"database"`
	Redis       redisclient.Config `yaml:"redis"`
	Logging     LoggingConfig      `yaml:"logging"`
	AI          ai.Config          `yaml:"ai"`
	Playbooks   playbook.Config    `yaml:"playbooks"`
	Remediation RemediationConfig  `yaml:"remediation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RemediationConfig gates remediation dispatch and tunes deduplication.
type RemediationConfig struct {
	Enabled     bool          `yaml:"enabled"`
	DedupWindow time.Duration `yaml:"dedup_window"`
}
