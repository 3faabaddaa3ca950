package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/privscan/internal/logging"
)

// HTTPServer serves one handler on a TCP address until its context ends.
type HTTPServer struct {
	address           string
	handler           http.Handler
	logger            logging.Logger
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

// NewHTTPServer returns a server for h; it does not listen until Run.
func NewHTTPServer(a string, h http.Handler, l logging.Logger, readHeaderTimeout, shutdownTimeout time.Duration) (*HTTPServer, error) {
	return &HTTPServer{
		address:           a,
		handler:           h,
		logger:            l.With("module", "http_server"),
		readHeaderTimeout: readHeaderTimeout,
		shutdownTimeout:   shutdownTimeout,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight uploads for at
// most shutdownTimeout. Each request runs on its own goroutine.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	stopped := make(chan struct{})
	serveDone := make(chan struct{})
	defer close(serveDone)

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}

		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "graceful shutdown incomplete", "error", err.Error())
			_ = srv.Close()
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Serve returns as soon as Shutdown starts; wait for the drain
	<-stopped
	return nil
}
