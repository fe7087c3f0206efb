// Package server wires the authentication service together and runs the
// HTTP server: configuration, logging, the lazily bootstrapped Postgres
// store and graceful shutdown on OS signals.
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

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/llave/internal/logging"
	"github.com/dmitrijs2005/llave/internal/server/bootstrap"
	"github.com/dmitrijs2005/llave/internal/server/config"
	"github.com/dmitrijs2005/llave/internal/server/httpapi"
	"github.com/dmitrijs2005/llave/internal/server/services"
	"github.com/dmitrijs2005/llave/internal/server/session"
	"github.com/dmitrijs2005/llave/internal/server/users"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *echo.Echo
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	init := bootstrap.NewInitializer(cfg, db, logger)
	repo := users.NewPostgresRepository(db)
	svc := services.NewAuthService(repo, init, cfg, logger)

	transport := session.NewTransport(session.Options{
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
		Domain:   cfg.CookieDomain,
	}, cfg.TokenValidity)

	router := httpapi.NewRouter(svc, transport, logger)

	return &App{config: cfg, logger: logger, db: db, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	go func() {
		err := app.router.Start(app.config.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
		}
		cancelFunc()
	}()

	<-ctx.Done()

	app.logger.Info(context.Background(), "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.router.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}
}
