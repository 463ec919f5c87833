package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/app"
	"github.com/ykvlv/health-reminders/internal/config"
	"github.com/ykvlv/health-reminders/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	// An unknown zone would shift every reminder; refuse to start instead.
	if _, err := cfg.Location(); err != nil {
		log.Fatal("unknown time zone", zap.String("tz", cfg.TZName), zap.Error(err))
	}
	log.Info("reminderd configured", cfg.Fields()...)

	reminders, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}
	if err := reminders.Run(context.Background()); err != nil {
		log.Fatal("reminders stopped with error", zap.Error(err))
	}
}
