package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/log"
	"phonecleaner/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultShutdownTimeout = 10 * time.Second
)

// ChannelServer exposes a messenger's channels over HTTP and WebSocket.
type ChannelServer struct {
	echo            *echo.Echo
	messenger       *channel.Messenger
	version         string
	webDir          string
	registry        *prometheus.Registry
	sockets         *socketHub
	shutdownTimeout time.Duration
}

// Option configures a ChannelServer.
type Option func(*ChannelServer)

// WithWebDir serves swagger assets from dir instead of the embedded copies.
func WithWebDir(dir string) Option {
	return func(cs *ChannelServer) {
		cs.webDir = dir
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(cs *ChannelServer) {
		if timeout > 0 {
			cs.shutdownTimeout = timeout
		}
	}
}

func NewChannelServer(messenger *channel.Messenger, version string, opts ...Option) *ChannelServer {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	cs := &ChannelServer{
		echo:            echo.New(),
		messenger:       messenger,
		version:         version,
		registry:        registry,
		sockets:         newSocketHub(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cs)
	}

	cs.setupRoutes()
	return cs
}

// Handler returns the HTTP handler serving every route.
func (cs *ChannelServer) Handler() http.Handler {
	return cs.echo
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (cs *ChannelServer) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", cs.version).
			Strs("channels", cs.messenger.Channels()).
			Msg("Starting channel server")

		if err := cs.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error().Err(err).Msg("Server startup failed")
			return err
		}
		return nil
	case <-ctx.Done():
		return cs.Shutdown()
	}
}

func (cs *ChannelServer) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cs.shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by http.Server.
	cs.sockets.closeAll()

	if err := cs.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (cs *ChannelServer) setupRoutes() {
	cs.echo.HideBanner = true
	cs.echo.HidePort = true

	cs.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	cs.echo.Use(accessLog())
	cs.echo.Use(middleware.Recover())
	cs.echo.Use(requestMetrics())

	cs.echo.GET("/", cs.serveSwaggerUI)
	cs.echo.GET("/swagger.yml", cs.serveSwaggerSpec)
	cs.echo.GET("/healthz", cs.health)
	cs.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cs.registry, promhttp.HandlerOpts{})))
	cs.echo.GET("/channels", cs.listChannels)
	cs.echo.GET("/channels/ws", cs.serveWebSocket)
	cs.echo.POST("/channels/*", cs.invokeChannel)
}

func (cs *ChannelServer) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": cs.version,
	})
}

func (cs *ChannelServer) listChannels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string][]string{
		"channels": cs.messenger.Channels(),
	})
}
