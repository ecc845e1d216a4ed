package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-envguard/framework/env"
	gohttp "github.com/km-arc/go-envguard/framework/http"
	"github.com/km-arc/go-envguard/framework/metrics"
	"github.com/km-arc/go-envguard/framework/routing"
	"github.com/km-arc/go-envguard/framework/schema"
)

// routes mounts the service endpoints. Laravel: routes/api.php
func (a *Application) routes() {
	ctl := &EnvController{
		validator: a.Validator(),
		schema:    a.Schema(),
		loader:    a.loader,
		metrics:   a.Metrics(),
		log:       a.Log(),
	}

	r := a.Router()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).NotFound()
	})
	r.Get("/health", ctl.Health)
	r.Prefix("/api/v1", func(api *routing.Router) {
		// responses carry environment values
		api.Middleware(middleware.NoCache)
		api.Get("/env", ctl.Current)
		api.Post("/validate", ctl.Validate)
	})
	if a.Config().Metrics.Enabled {
		r.Handle("/metrics", ctl.metrics.Handler())
	}
}

// ── Controller base ──────────────────────────────────────────────────────────

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}

// ── EnvController ────────────────────────────────────────────────────────────

// EnvController validates environments over HTTP.
type EnvController struct {
	Controller

	validator *env.Validator
	schema    *env.Schema
	loader    *schema.Loader
	metrics   *metrics.Collector
	log       logrus.FieldLogger
}

// validateRequest is the body of POST /api/v1/validate. JSON and YAML are
// both accepted; Schema keeps document order.
type validateRequest struct {
	Schema yaml.Node         `yaml:"schema"`
	Env    map[string]string `yaml:"env"`
	Strict *bool             `yaml:"strict"`
}

// Health handles GET /health.
func (ctl *EnvController) Health(w http.ResponseWriter, r *http.Request) {
	ctl.Response(w).Success(map[string]any{"status": "ok"})
}

// Current handles GET /api/v1/env: the process environment against the
// loaded schema. ?strict=true|false overrides the configured mode.
func (ctl *EnvController) Current(w http.ResponseWriter, r *http.Request) {
	strict, err := queryStrict(ctl.Request(r))
	if err != nil {
		ctl.Response(w).Error(http.StatusBadRequest, err.Error())
		return
	}
	v, err := ctl.validatorFor(strict)
	if err != nil {
		ctl.Response(w).ServerError(err.Error())
		return
	}

	res, err := ctl.run(v, ctl.schema, env.Environ())
	if isSchemaError(err) {
		ctl.log.WithError(err).Error("loaded schema is misconfigured")
		ctl.Response(w).ServerError(err.Error())
		return
	}
	ctl.respond(w, ctl.schema, res, err)
}

// Validate handles POST /api/v1/validate. "strict" in the body wins over
// ?strict=, which wins over the configured mode.
func (ctl *EnvController) Validate(w http.ResponseWriter, r *http.Request) {
	req, res := ctl.Request(r), ctl.Response(w)

	if !req.AcceptsDocument() {
		res.Error(http.StatusUnsupportedMediaType, "body must be JSON or YAML, got "+req.MediaType())
		return
	}
	strict, err := queryStrict(req)
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	var body validateRequest
	if err := req.BindYAML(&body); err != nil {
		res.Error(http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}
	if body.Schema.Kind == 0 {
		res.Error(http.StatusBadRequest, "schema is required")
		return
	}

	s, err := ctl.loader.FromNode(&body.Schema)
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	if body.Strict != nil {
		strict = body.Strict
	}
	v, err := ctl.validatorFor(strict)
	if err != nil {
		res.ServerError(err.Error())
		return
	}

	result, err := ctl.run(v, s, env.Source(body.Env))
	if isSchemaError(err) {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	ctl.respond(w, s, result, err)
}

// validatorFor returns the configured validator, or a fresh one when strict
// asks for the other mode.
func (ctl *EnvController) validatorFor(strict *bool) (*env.Validator, error) {
	if strict == nil || *strict == ctl.validator.IsStrict() {
		return ctl.validator, nil
	}
	return env.New(env.WithoutDotenv(), env.Strict(*strict), env.WithLogger(ctl.log))
}

// queryStrict reads ?strict= with the boolean coercer. nil means unset.
func queryStrict(req *gohttp.Request) (*bool, error) {
	q := req.Query("strict")
	if q == "" {
		return nil, nil
	}
	v, err := env.Coerce("strict", q, env.Boolean)
	if err != nil {
		return nil, err
	}
	strict := v.(bool)
	return &strict, nil
}

// run validates src and records the outcome.
func (ctl *EnvController) run(v *env.Validator, s *env.Schema, src env.Source) (*env.Result, error) {
	start := time.Now()
	res, err := v.Validate(s, src)
	ctl.metrics.Observe(res, err, time.Since(start))
	return res, err
}

// respond writes 200 with redacted values, or 422 with the error bag. A
// strict-mode error arrives as err with a nil result.
func (ctl *EnvController) respond(w http.ResponseWriter, s *env.Schema, result *env.Result, err error) {
	res := ctl.Response(w)

	if err != nil {
		var fe *env.Error
		if !errors.As(err, &fe) {
			res.ServerError(err.Error())
			return
		}
		res.ValidationError(env.Errors{fe}, nil)
		return
	}

	values := result.Redacted(s)
	if !result.Valid() {
		res.ValidationError(result.Errors, values)
		return
	}
	res.Success(map[string]any{"valid": true, "values": values})
}

func isSchemaError(err error) bool {
	return errors.Is(err, env.ErrSchemaConfiguration)
}
