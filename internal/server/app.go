// Package server initializes and runs the auth server: configuration,
// storage, services, the HTTP endpoint and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/server/config"
	"github.com/lulemo/habitlock/internal/server/httpapi"
	"github.com/lulemo/habitlock/internal/server/mail"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
	"github.com/lulemo/habitlock/internal/server/services"
	"github.com/lulemo/habitlock/internal/server/token"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *sql.DB
	auth   *services.CredentialAuthService
	tokens *token.Service
}

// NewApp wires the whole server. DatabaseDSN "memory" runs everything on
// in-memory repositories with no persistence.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON()

	var (
		pool  *sql.DB
		repos repomanager.RepositoryManager
	)
	if cfg.DatabaseDSN == "memory" {
		repos = repomanager.NewMemoryManager()
		logger.Warn(ctx, "running on in-memory storage, state is lost on restart")
	} else {
		var err error
		pool, err = repomanager.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repos = repomanager.NewPostgresManager()
		if err := repos.RunMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("db migration error: %w", err)
		}
	}

	tokens := token.NewService(pool, repos, []byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	verification := services.NewEmailVerificationService(pool, repos, sender,
		cfg.EmailCodeValidityDuration, cfg.DevBypassEmail, logger)
	auth := services.NewCredentialAuthService(pool, repos, tokens, verification, cfg.AdminEmails, logger)

	return &App{config: cfg, logger: logger, pool: pool, auth: auth, tokens: tokens}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.auth, app.tokens, app.logger)
	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.pool != nil {
		if err := app.pool.Close(); err != nil {
			app.logger.Error(ctx, "closing db pool", "error", err)
		}
	}
}
