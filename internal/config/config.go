package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
}

// DatabaseConfig holds store connection settings. DSN wins over the
// individual connection fields when set.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	Host            string        `yaml:"host"               env:"DATABASE_HOST"               env-default:"localhost"`
	Port            int           `yaml:"port"               env:"DATABASE_PORT"               env-default:"5432"`
	Name            string        `yaml:"name"               env:"DATABASE_NAME"               env-default:"dictdb"`
	User            string        `yaml:"user"               env:"DATABASE_USER"`
	Password        string        `yaml:"password"           env:"DATABASE_PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode"           env:"DATABASE_SSL_MODE"           env-default:"disable"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"text"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"100"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
	Compress   bool   `yaml:"compress"     env:"LOG_COMPRESS"`
}

// StorageConfig holds S3-compatible object storage settings used for
// s3:// input paths.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"   env-default:"s3.amazonaws.com"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Region    string `yaml:"region"     env:"S3_REGION"`
	UseSSL    bool   `yaml:"use_ssl"    env:"S3_USE_SSL"    env-default:"true"`
}

// ConnString returns the DSN, or builds one from the connection fields.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}

	if c.Driver == DriverSQLite {
		return "file:" + c.Name + ".db?_foreign_keys=on"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// CheckCredentials reports whether enough is configured to open a live
// store. SQLite needs no credentials.
func (c DatabaseConfig) CheckCredentials() error {
	if c.Driver == DriverSQLite || c.DSN != "" {
		return nil
	}
	if c.Host == "" || c.User == "" {
		return fmt.Errorf("database credentials missing: set database.dsn or database.host and database.user (--db-host, --db-user, --db-password)")
	}
	return nil
}
