// Package server wires the points ledger together: store, migrations,
// services, confirmation gate, authorization, and the operator console.
// It owns startup, the gate sweeper, and signal-driven shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/clubops/pointsledger/internal/logging"
	"github.com/clubops/pointsledger/internal/server/authz"
	"github.com/clubops/pointsledger/internal/server/config"
	"github.com/clubops/pointsledger/internal/server/confirm"
	"github.com/clubops/pointsledger/internal/server/console"
	"github.com/clubops/pointsledger/internal/server/dispatch"
	"github.com/clubops/pointsledger/internal/server/objectstore"
	"github.com/clubops/pointsledger/internal/server/repositories/repomanager"
	"github.com/clubops/pointsledger/internal/server/roles"
	"github.com/clubops/pointsledger/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	dispatcher *dispatch.Dispatcher
	gate       *confirm.Gate
	console    *console.Console
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store := objectstore.NewStore(c)
	ledger := services.NewLedgerService(db, rm, logger)
	importer := services.NewImportService(db, rm, store, logger)
	gate := confirm.NewGate(ledger, c.ConfirmTTL, logger)

	dispatcher := dispatch.NewDispatcher(dispatch.Options{
		Ledger:       ledger,
		Importer:     importer,
		Gate:         gate,
		Guard:        authz.NewGuard(c.PrivilegedMarker),
		Toggler:      roles.NewToggler(roles.NewInMemoryManager()),
		Stager:       store,
		TokenSecret:  []byte(c.TokenSecret),
		SuggestLimit: c.SuggestLimit,
		PurgeEnabled: c.EnablePurge,
		Logger:       logger,
	})

	return &App{
		config:     c,
		logger:     logger,
		dispatcher: dispatcher,
		gate:       gate,
		console:    console.New(dispatcher, c.PrivilegedMarker),
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

// Run starts the gate sweeper and the operator console and blocks until
// the console exits or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting points ledger")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.gate.RunSweeper(ctx)
	}()

	if err := app.console.Login(ctx); err != nil {
		cancelFunc()
		wg.Wait()
		return fmt.Errorf("operator login error: %w", err)
	}

	app.console.Run(ctx)

	cancelFunc()
	wg.Wait()

	app.logger.Info(ctx, "stopped")
	return nil
}
