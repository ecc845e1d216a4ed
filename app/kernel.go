package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-envguard/framework/config"
	"github.com/km-arc/go-envguard/framework/container"
	"github.com/km-arc/go-envguard/framework/env"
	"github.com/km-arc/go-envguard/framework/metrics"
	"github.com/km-arc/go-envguard/framework/providers"
	"github.com/km-arc/go-envguard/framework/routing"
	"github.com/km-arc/go-envguard/framework/schema"
)

// Version is the envguard release, overridden at build time with
// -ldflags "-X github.com/km-arc/go-envguard/app.Version=...".
var Version = "0.1.0"

// Options configures New.
type Options struct {
	EnvFiles   []string
	SchemaPath string
	Strict     bool
	// Config skips loading envguard's own configuration when set.
	Config *config.Config
	// Loader resolves custom types in schema documents.
	Loader *schema.Loader
	// LogOutput defaults to Stderr.
	LogOutput io.Writer
}

// Application embeds the IoC Container and ProviderRegistry so callers can
// use app.Singleton() and app.Register() directly, like $app in Laravel's
// bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	loader   *schema.Loader
	bootOnce sync.Once
	bootErr  error
}

// New creates the application and registers the framework providers.
// Nothing is loaded until Boot.
func New(opts Options) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	loader := opts.Loader
	if loader == nil {
		loader = schema.NewLoader()
	}
	a := &Application{Container: c, Providers: registry, loader: loader}

	// Registering on an unbooted registry never fails.
	_ = registry.Register(&providers.ConfigServiceProvider{EnvFiles: opts.EnvFiles, Config: opts.Config})
	_ = registry.Register(&providers.LogServiceProvider{Out: opts.LogOutput})
	_ = registry.Register(&providers.EnvServiceProvider{SchemaPath: opts.SchemaPath, Strict: opts.Strict, Loader: loader})
	_ = registry.Register(&providers.MetricsServiceProvider{})
	_ = registry.Register(&providers.RoutingServiceProvider{})
	return a
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers and mounts the routes. Later
// calls return the first outcome.
func (a *Application) Boot() error {
	a.bootOnce.Do(func() {
		if a.bootErr = a.Providers.Boot(); a.bootErr == nil {
			a.routes()
		}
	})
	return a.bootErr
}

// ── Accessors ────────────────────────────────────────────────────────────────

func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, container.Config)
}

func (a *Application) Log() *logrus.Logger {
	return container.Resolve[*logrus.Logger](a.Container, container.Log)
}

func (a *Application) Validator() *env.Validator {
	return container.Resolve[*env.Validator](a.Container, container.Validator)
}

func (a *Application) Schema() *env.Schema {
	return container.Resolve[*env.Schema](a.Container, container.Schema)
}

func (a *Application) Metrics() *metrics.Collector {
	return container.Resolve[*metrics.Collector](a.Container, container.Metrics)
}

func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, container.Router)
}

// Handler boots the application if needed and returns the router.
func (a *Application) Handler() (http.Handler, error) {
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a.Router(), nil
}

// ── Serve ────────────────────────────────────────────────────────────────────

// Run serves HTTP on addr (":APP_PORT" when empty) until ctx is cancelled,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context, addr string) error {
	h, err := a.Handler()
	if err != nil {
		return err
	}
	cfg := a.Config()
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.App.Port)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	a.Log().WithFields(logrus.Fields{
		"addr": addr,
		"app":  cfg.App.Name,
		"env":  cfg.App.Env,
	}).Info("envguard listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Log().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
