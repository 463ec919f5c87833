package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken          string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath            string        `envconfig:"DB_PATH" default:"./data/reminders.db"`
	TZName            string        `envconfig:"TZ_NAME" default:"Europe/Moscow"` // wall clock alerts fire in
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`        // debug|info|warn|error
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"json"`       // json|console
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"`
	TickInterval      time.Duration `envconfig:"TICK_INTERVAL" default:"30s"`
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"15m"` // 0 disables
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves TZName.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TZName)
}

// Fields describes the resolved configuration for the startup log. The bot token is left out.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("db_path", c.DBPath),
		zap.String("tz", c.TZName),
		zap.String("http_addr", c.HTTPAddr),
		zap.String("log_format", c.LogFormat),
		zap.Duration("tick_interval", c.TickInterval),
		zap.Duration("reconcile_interval", c.ReconcileInterval),
	}
}
