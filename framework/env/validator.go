package env

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/km-arc/go-envguard/framework/logging"
)

// ── Validator ────────────────────────────────────────────────────────────────

// Validator validates a Source against a Schema.
// It is immutable after New, so one instance can serve concurrent calls.
type Validator struct {
	strict         bool
	loadDotenv     bool
	dotenvPaths    []string
	explicitDotenv bool
	log            logrus.FieldLogger
}

// Option configures a Validator.
type Option func(*Validator)

// Strict selects fail-fast mode: the first field error aborts Validate.
func Strict(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// WithDotenv sets the dotenv files loaded by New. Without paths the default
// ".env" is kept.
func WithDotenv(paths ...string) Option {
	return func(v *Validator) {
		v.loadDotenv = true
		if len(paths) > 0 {
			v.dotenvPaths = paths
			v.explicitDotenv = true
		}
	}
}

// WithoutDotenv skips the dotenv load.
func WithoutDotenv() Option {
	return func(v *Validator) { v.loadDotenv = false }
}

// WithLogger sets the logger used for per-field debug output.
// Raw values are never logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(v *Validator) { v.log = l }
}

// New builds a Validator and, unless WithoutDotenv is given, loads the dotenv
// files into the process environment. Variables already set are not
// overridden. A missing default .env is skipped; a missing file named through
// WithDotenv, or a malformed one, is an error.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		loadDotenv:  true,
		dotenvPaths: []string{".env"},
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.loadDotenv {
		for _, p := range v.dotenvPaths {
			if err := godotenv.Load(p); err != nil {
				if !v.explicitDotenv && errors.Is(err, fs.ErrNotExist) {
					v.log.WithField("path", p).Debug("dotenv file not found, skipping")
					continue
				}
				return nil, fmt.Errorf("env: load %s: %w", p, err)
			}
			v.log.WithField("path", p).Info("dotenv file loaded")
		}
	}
	return v, nil
}

// IsStrict reports whether the Validator runs in fail-fast mode.
func (v *Validator) IsStrict() bool { return v.strict }

// Validate coerces every schema field from src, in schema order.
//
// In strict mode the first error is returned and no Result is produced.
// Otherwise field errors are collected in the Result and the returned error
// is nil. SchemaConfiguration errors are returned immediately in both modes.
func (v *Validator) Validate(schema *Schema, src Source) (*Result, error) {
	res := &Result{Values: make(Values, schema.Len())}

	for _, f := range schema.Fields() {
		value, err := v.field(f, src)
		if err == nil {
			res.Values[f.Name] = value
			continue
		}

		res.Values[f.Name] = nil
		if v.strict || err.Kind == SchemaConfiguration {
			return nil, err
		}
		res.Errors = append(res.Errors, err)
	}

	v.log.WithFields(logrus.Fields{
		"fields": schema.Len(),
		"errors": len(res.Errors),
	}).Debug("schema validated")
	return res, nil
}

// ValidateEnv validates the process environment.
func (v *Validator) ValidateEnv(schema *Schema) (*Result, error) {
	return v.Validate(schema, Environ())
}

// field runs one schema entry through absence handling and coercion.
// A nil value with a nil error is the explicit-absence marker.
func (v *Validator) field(f Field, src Source) (any, *Error) {
	spec := f.Spec
	log := v.log.WithFields(logrus.Fields{"field": f.Name, "type": spec.Type.Name()})

	raw, ok := src[f.Name]
	if !ok || raw == "" {
		switch {
		case spec.Required:
			log.Debug("required field missing")
			return nil, newError(f.Name, MissingRequired, "Missing required environment variable: %s", f.Name)
		case spec.Default != nil:
			s, err := stringify(spec.Default, spec.separator())
			if err != nil {
				return nil, &Error{Kind: SchemaConfiguration, Message: fmt.Sprintf("default for %s: %v", f.Name, err), Err: err}
			}
			raw = s
			log = log.WithField("default", true)
		default:
			log.Debug("optional field unset")
			return nil, nil
		}
	}

	value, err := coerce(f.Name, raw, spec)
	if err != nil {
		log.WithField("kind", err.Kind.String()).Debug("field rejected")
		return nil, err
	}
	log.Debug("field coerced")
	return value, nil
}

// stringify renders a default the way it would appear in the environment.
// Slices are joined with the field separator.
func stringify(d any, sep string) (string, error) {
	switch d.(type) {
	case []string, []any:
		items, err := cast.ToStringSliceE(d)
		if err != nil {
			return "", err
		}
		return strings.Join(items, sep), nil
	}
	return cast.ToStringE(d)
}

// ── Convenience ──────────────────────────────────────────────────────────────

// Load validates the process environment and returns the values, or the first
// recorded error when the result is invalid.
//
//	values, err := env.Load(schema, env.WithDotenv(".env.local"))
func Load(schema *Schema, opts ...Option) (Values, error) {
	v, err := New(opts...)
	if err != nil {
		return nil, err
	}
	res, err := v.ValidateEnv(schema)
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		if len(res.Errors) > 0 {
			return nil, res.Errors[0]
		}
		return nil, ErrValidation
	}
	return res.Values, nil
}

// MustLoad is like Load but panics on error. Meant for main().
func MustLoad(schema *Schema, opts ...Option) Values {
	values, err := Load(schema, opts...)
	if err != nil {
		panic(err)
	}
	return values
}
