package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/assets"
	"github.com/ykvlv/health-reminders/internal/config"
	"github.com/ykvlv/health-reminders/internal/engine"
	"github.com/ykvlv/health-reminders/internal/scheduler"
	"github.com/ykvlv/health-reminders/internal/store"
	"github.com/ykvlv/health-reminders/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	loc     *time.Location
	httpSrv *http.Server
	repo    store.Repo
	gw      *scheduler.Gateway
	engine  *engine.Engine
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot, loc: loc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting health-reminders",
		zap.String("tz", a.loc.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	defer func() { _ = a.repo.Close() }()
	a.log.Info("sqlite ready")

	displays, err := assets.DisplayChannels()
	if err != nil {
		return err
	}

	a.gw = scheduler.New(a.log.Named("scheduler"), telegram.NewNotifier(a.bot), a.loc, a.cfg.TickInterval)
	binding := &chatBinding{repo: repo, gw: a.gw}
	a.engine = engine.New(repo, a.gw, a.log.Named("engine"), displays)
	a.router = telegram.NewRouter(a.bot, a.log.Named("telegram"), a.engine, binding)

	if chatID, err := binding.restore(ctx); err != nil {
		a.log.Warn("restore chat binding failed", zap.Error(err))
	} else if chatID != 0 {
		a.log.Info("chat binding restored", zap.Int64("chatID", chatID))
	}
	if err := a.engine.Load(ctx); err != nil {
		return err
	}

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      newHTTPHandler(a.engine, a.log.Named("http")),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.gw.Run(ctx)
	go a.reconcileLoop(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// reconcileLoop re-runs the full reconcile periodically so any drift between stored
// preferences and the alert queue heals on its own.
func (a *App) reconcileLoop(ctx context.Context) {
	if a.cfg.ReconcileInterval <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.engine.Reconcile(ctx); err != nil {
				a.log.Warn("periodic reconcile failed", zap.Error(err))
			}
		}
	}
}
