// Package app is the application initialisation step. Launch attaches the
// storage channel and runs the generic plugin registration before the
// transports start accepting requests.
package app

import (
	"context"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/config"
	"phonecleaner/pkg/diskspace"
	"phonecleaner/pkg/log"
	"phonecleaner/pkg/plugin"
	"phonecleaner/pkg/server"
	"phonecleaner/pkg/storage"
)

// Transport serves a messenger's channels until ctx is cancelled.
type Transport interface {
	Serve(ctx context.Context, addr string) error
}

// Application owns the messenger and its startup sequence.
type Application struct {
	cfg        *config.Config
	version    string
	messenger  *channel.Messenger
	disk       storage.DiskSpaceQuerier
	registrant *plugin.Registrant
	transport  func(*channel.Messenger) Transport
}

// Option customises an Application, mostly for tests.
type Option func(*Application)

// WithDiskSpaceQuerier replaces the platform disk querier.
func WithDiskSpaceQuerier(q storage.DiskSpaceQuerier) Option {
	return func(a *Application) {
		a.disk = q
	}
}

// WithPlugins replaces the process-wide plugin catalogue.
func WithPlugins(plugins []plugin.Plugin) Option {
	return func(a *Application) {
		a.registrant = plugin.NewRegistrant(plugins, a.cfg.Plugins.Disabled)
	}
}

// WithTransport replaces the HTTP channel server.
func WithTransport(fn func(*channel.Messenger) Transport) Option {
	return func(a *Application) {
		a.transport = fn
	}
}

// New builds an application from cfg.
func New(cfg *config.Config, version string, opts ...Option) *Application {
	a := &Application{
		cfg:        cfg,
		version:    version,
		messenger:  channel.NewMessenger(),
		disk:       diskspace.New(diskspace.WithPath(cfg.HomeDir)),
		registrant: plugin.NewRegistrant(nil, cfg.Plugins.Disabled),
	}
	a.transport = func(m *channel.Messenger) Transport {
		return server.NewChannelServer(m, a.version, server.WithShutdownTimeout(a.cfg.ShutdownTimeout))
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Messenger returns the messenger for in-process calls.
func (a *Application) Messenger() *channel.Messenger {
	return a.messenger
}

// Initialize attaches the storage channel and registers every other plugin.
func (a *Application) Initialize() {
	storage.NewHandler(a.disk).Attach(a.messenger)
	a.registrant.RegisterAll(a.messenger)
}

// Launch initialises the application, then serves until ctx is cancelled.
func (a *Application) Launch(ctx context.Context) error {
	a.Initialize()

	log.Info().
		Str("version", a.version).
		Strs("channels", a.messenger.Channels()).
		Msg("Application initialized")

	return a.transport(a.messenger).Serve(ctx, a.cfg.Listen)
}
