package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically. Credentials
// are checked separately by DatabaseConfig.CheckCredentials because dry runs
// never connect.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, d.Driver)
	}
	if d.MaxConns < 1 {
		return fmt.Errorf("max_conns must be >= 1 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns must be between 0 and max_conns (got %d)", d.MinConns)
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "warning", "error", "critical":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text (got %q)", l.Format)
	}
	if l.File != "" && l.MaxSizeMB <= 0 {
		return fmt.Errorf("max_size_mb must be > 0 (got %d)", l.MaxSizeMB)
	}
	return nil
}
