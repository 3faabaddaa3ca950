// Package server wires the upload store, the optional S3 mirror and the
// HTTP endpoint together and runs them until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/privscan/internal/logging"
	"github.com/dmitrijs2005/privscan/internal/server/config"
	"github.com/dmitrijs2005/privscan/internal/server/httpserver"
	"github.com/dmitrijs2005/privscan/internal/server/mirror"
	"github.com/dmitrijs2005/privscan/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(c.LogFile, slog.LevelInfo)

	store, err := storage.NewDiskStore(c.UploadRoot)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	var m mirror.Mirror
	if c.MirrorEnabled() {
		s3m, err := mirror.NewS3Mirror(context.Background(), c, store)
		if err != nil {
			return nil, fmt.Errorf("mirror init error: %w", err)
		}
		m = s3m
		logger.Info(context.Background(), "S3 mirror enabled", "bucket", c.S3Bucket, "prefix", c.S3Prefix)
	}

	upload := httpserver.NewUploadHandler(store, c.MaxRequestBytes, logger, m)
	logger.Info(context.Background(), "upload root ready", "root", store.Root())

	return &App{config: c, logger: logger, handler: httpserver.NewRouter(c.EndpointPath, upload)}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {

	s, err := httpserver.NewHTTPServer(app.config.EndpointAddr, app.handler, app.logger,
		app.config.ReadHeaderTimeout, app.config.ShutdownTimeout)
	if err != nil {
		cancelFunc()
		return err
	}

	if err := s.Run(ctx); err != nil {
		cancelFunc()
		return err
	}
	return nil
}

// Run blocks until ctx is cancelled, a signal arrives or the listener fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.EndpointAddr, "path", app.config.EndpointPath)

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.startHTTPServer(ctx, cancelFunc); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
		}
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}
