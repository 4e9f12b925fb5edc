package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Session SessionConfig `mapstructure:"session"`
	Poll    PollConfig    `mapstructure:"poll"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
}

type SessionConfig struct {
	// ID scopes every record this process touches. Shared across all
	// terminals of one simulation run.
	ID     string `mapstructure:"id"`
	TeamID int    `mapstructure:"team_id"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	// PauseAfterEdit keeps the edit flow's confirmation on screen before
	// the refresh loop repaints.
	PauseAfterEdit time.Duration `mapstructure:"pause_after_edit"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
	Caller      bool   `mapstructure:"caller"`
	Stacktrace  bool   `mapstructure:"stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectRetries  int           `mapstructure:"connect_retries"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

// Load reads the optional YAML config at path and applies DR_* environment
// overrides (DR_SESSION_ID, DR_DB_DSN, ...). A missing file is not an
// error; defaults plus environment are enough for classroom use.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("session.id", "default_session")
	v.SetDefault("session.team_id", 1)
	v.SetDefault("poll.interval", "1500ms")
	v.SetDefault("poll.pause_after_edit", "500ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.caller", false)
	v.SetDefault("log.stacktrace", false)
	v.SetDefault("db.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=postgres sslmode=disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.connect_retries", 5)
	v.SetDefault("db.connect_backoff", "5s")
	v.SetDefault("server.http_addr", ":8080")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
