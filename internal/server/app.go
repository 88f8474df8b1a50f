// Package server initializes and runs the Daybook server. It opens the
// database, runs migrations, wires the services and the HTTP API, and
// schedules the background calendar sweep.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/parse"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/gcal"
	"github.com/dmitrijs2005/daybook/internal/server/httpapi"
	"github.com/dmitrijs2005/daybook/internal/server/ical"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"github.com/robfig/cron/v3"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *http.Server
	cron        *cron.Cron
	syncService *services.SyncService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.DisplayTimezone, err)
	}

	classifier := classify.New(parse.DefaultLexicon())

	userService := services.NewUserService(db, m, cfg)
	recordService := services.NewRecordService(db, m, classifier, loc)

	provider := gcal.NewProvider(db, m, cfg)
	syncService, err := services.NewSyncService(db, m, provider, classifier, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("sync init error: %w", err)
	}

	feed := ical.NewFeed(classifier, loc, cfg.ExportEventDuration)

	api := httpapi.NewServer(logger, userService, recordService, syncService,
		provider, feed, []byte(cfg.SecretKey))

	httpServer := &http.Server{
		Addr:    cfg.EndpointAddrHTTP,
		Handler: api.Router(),
	}

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repomanager: m,
		httpServer:  httpServer,
		cron:        cron.New(),
		syncService: syncService,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// initSweep schedules the periodic calendar sweep if a cron spec is
// configured. Runs are skipped while a previous one is still going.
func (app *App) initSweep(ctx context.Context) error {
	if app.config.SyncCron == "" {
		return nil
	}

	running := make(chan struct{}, 1)
	_, err := app.cron.AddFunc(app.config.SyncCron, func() {
		select {
		case running <- struct{}{}:
		default:
			app.logger.Warn(ctx, "sync sweep still running, skipping")
			return
		}
		defer func() { <-running }()
		app.syncService.AutoSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sync cron spec %q: %w", app.config.SyncCron, err)
	}

	app.cron.Start()
	return nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if err := app.initSweep(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if app.config.SyncCron != "" {
		<-app.cron.Stop().Done()
	}
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}
