package providers

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-envguard/framework/config"
	"github.com/km-arc/go-envguard/framework/container"
	"github.com/km-arc/go-envguard/framework/env"
	"github.com/km-arc/go-envguard/framework/logging"
	"github.com/km-arc/go-envguard/framework/metrics"
	"github.com/km-arc/go-envguard/framework/routing"
	"github.com/km-arc/go-envguard/framework/schema"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads envguard's own configuration from .env files
// and the process environment.
//
// Bound abstracts:
//   - "config"  → *config.Config
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	EnvFiles []string
	// Config skips loading when set.
	Config *config.Config

	err error
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance(container.Config, p.Config)
		return
	}
	app.Singleton(container.Config, func(*container.Container) any {
		cfg, err := config.Load(p.EnvFiles...)
		p.err = err
		return cfg
	})
}

// Boot fails when the configuration does not validate.
func (p *ConfigServiceProvider) Boot(app *container.Container) error {
	if container.Resolve[*config.Config](app, container.Config) == nil {
		return fmt.Errorf("config: %w", p.err)
	}
	return nil
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the logrus logger configured by LOG_LEVEL and
// LOG_FORMAT.
//
// Bound abstracts:
//   - "log"  → *logrus.Logger
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
type LogServiceProvider struct {
	container.BaseProvider
	// Out defaults to Stderr.
	Out io.Writer
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton(container.Log, func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, container.Config)
		return logging.New(cfg.Log.Level, cfg.Log.Format, p.Out)
	})
}

// ── EnvServiceProvider ────────────────────────────────────────────────────────

// EnvServiceProvider binds the validator and the schema it checks the
// environment against.
//
// Bound abstracts:
//   - "env"     → *env.Validator
//   - "schema"  → *env.Schema (empty when SchemaPath is "")
//
// .env files are already applied by ConfigServiceProvider, so the validator
// reads the process environment as is.
type EnvServiceProvider struct {
	SchemaPath string
	Strict     bool
	// Loader resolves custom types in the schema document. Defaults to
	// schema.NewLoader().
	Loader *schema.Loader

	err error
}

func (p *EnvServiceProvider) Register(app *container.Container) {
	app.Singleton(container.Validator, func(c *container.Container) any {
		log := container.Resolve[*logrus.Logger](c, container.Log)
		v, err := env.New(env.WithoutDotenv(), env.Strict(p.Strict), env.WithLogger(log))
		if err != nil {
			p.err = err
		}
		return v
	})
	app.Singleton(container.Schema, func(*container.Container) any {
		if p.SchemaPath == "" {
			return env.NewSchema()
		}
		loader := p.Loader
		if loader == nil {
			loader = schema.NewLoader()
		}
		s, err := loader.LoadFile(p.SchemaPath)
		if err != nil {
			p.err = err
		}
		return s
	})
}

// Boot resolves both bindings so a broken schema file stops start-up.
func (p *EnvServiceProvider) Boot(app *container.Container) error {
	v := container.Resolve[*env.Validator](app, container.Validator)
	s := container.Resolve[*env.Schema](app, container.Schema)
	if v == nil || s == nil {
		return p.err
	}
	container.Resolve[*logrus.Logger](app, container.Log).WithFields(logrus.Fields{
		"schema": p.SchemaPath,
		"fields": s.Len(),
		"strict": v.IsStrict(),
	}).Info("schema loaded")
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus collector.
//
// Bound abstracts:
//   - "metrics"  → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.Singleton(container.Metrics, func(*container.Container) any {
		return metrics.New()
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton(container.Router, func(c *container.Container) any {
		return routing.New(container.Resolve[*logrus.Logger](c, container.Log))
	})
}
