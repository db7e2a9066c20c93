// Package server initializes and runs the stockkeeper backend.
// It opens the database, applies migrations, builds the session
// authenticator and the services, and runs the HTTP API and the gRPC
// endpoint until a shutdown signal arrives.
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

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/stockkeeper/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	manager        *repomanager.PostgresRepositoryManager
	authenticator  *auth.Authenticator
	transport      *auth.Transport
	userService    *services.UserService
	productService *services.ProductService
	imageService   *services.ImageService
}

// NewSessionAuth builds the authenticator and its HTTP transport from c.
func NewSessionAuth(c *config.Config) (*auth.Authenticator, *auth.Transport, error) {
	a, err := auth.New([]byte(c.SecretKey), auth.WithTTL(c.TokenValidityDuration))
	if err != nil {
		return nil, nil, err
	}

	t, err := auth.NewTransport(auth.TransportConfig{
		Mode:       auth.Mode(c.TokenTransport),
		CookieName: c.CookieName,
		CrossSite:  c.CookieCrossSite,
		Secure:     c.CookieSecure,
		Domain:     c.CookieDomain,
	})
	if err != nil {
		return nil, nil, err
	}

	return a, t, nil
}

// OpenDB opens the pgx-backed pool for dsn and checks that it answers.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	a, t, err := NewSessionAuth(c)
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	app := &App{
		config:         c,
		logger:         logger,
		db:             db,
		manager:        m,
		authenticator:  a,
		transport:      t,
		userService:    services.NewUserService(db, m, a, c.BcryptCost),
		productService: services.NewProductService(db, m),
	}

	if c.S3Bucket != "" {
		app.imageService = services.NewImageService(c)
	}

	return app, nil
}

// initSignalHandler cancels on the first shutdown signal. The handler is
// unregistered once ctx ends; the returned channel closes at that point.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) <-chan struct{} {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signal.Stop(sigs)

		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
	return done
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authenticator)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) handler() http.Handler {
	opts := []httpapi.Option{
		httpapi.WithLogger(app.logger.With("module", "httpapi")),
		httpapi.WithCORS(httpapi.CORSConfig{
			Origins:      app.config.Origins(),
			HostSuffixes: app.config.AllowedOriginSuffixes,
		}),
	}
	if app.imageService != nil {
		opts = append(opts, httpapi.WithImages(app.imageService))
	}

	return httpapi.New(app.userService, app.productService, app.authenticator, app.transport, opts...).Router()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := serveHTTP(ctx, app.config.EndpointAddrHTTP, app.handler(), app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// serveHTTP runs h on addr until ctx is cancelled, then drains open
// requests for up to shutdownTimeout.
func serveHTTP(ctx context.Context, addr string, h http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting HTTP server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
