package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return s.serve(ctx, httpServer, listener)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() (*http.Server, error) {
	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return nil, err
	}

	handler := s.Observability.HTTPMiddleware()(s.setupRoutes())

	return &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      handler,
		TLSConfig:    tlsConfig,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}, nil
}

// serve runs the listener and the certificate watcher until ctx ends or either fails
func (s *Server) serve(ctx context.Context, httpServer *http.Server, listener net.Listener) error {
	s.displayServerInfo(listener.Addr().String(), httpServer.TLSConfig != nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("Starting HTTP server",
			"address", listener.Addr().String(),
			"tls_enabled", httpServer.TLSConfig != nil)

		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ServeTLS(listener, "", "")
		} else {
			err = httpServer.Serve(listener)
		}
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if s.certWatchEnabled() {
		watcher := NewCertWatcher(s.Certs,
			s.TLSConfig.AutoReload.FileWatcher.DebounceDelay,
			s.Logger,
			s.TLSConfig.CertFile, s.TLSConfig.KeyFile, s.TLSConfig.CAFile)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.performGracefulShutdown(httpServer)
	})

	return g.Wait()
}

func (s *Server) certWatchEnabled() bool {
	return s.Certs != nil &&
		s.TLSConfig.AutoReload.Enabled &&
		s.TLSConfig.AutoReload.FileWatcher.Enabled &&
		s.TLSConfig.HasFileCertificates()
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(httpServer *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Close()

	s.Logger.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return httpServer.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
