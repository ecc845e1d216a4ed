package config

import (
	"os"

	"github.com/km-arc/go-envguard/framework/env"
)

// Config is the runtime configuration of envguard itself.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  int
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

type MetricsConfig struct {
	Enabled bool
}

// Schema declares the variables Load reads. It is validated with the same
// engine envguard offers to everyone else.
func Schema() *env.Schema {
	return env.NewSchema().
		Add("APP_NAME", env.FieldSpec{Default: "envguard", MinLength: env.Int(1)}).
		Add("APP_ENV", env.FieldSpec{Type: env.Enum, Values: []string{"local", "production", "testing"}, Default: "local"}).
		Add("APP_DEBUG", env.FieldSpec{Type: env.Boolean, Default: false}).
		Add("APP_PORT", env.FieldSpec{Type: env.Number, Integer: true, Min: env.Float(1), Max: env.Float(65535), Default: 8000}).
		Add("LOG_LEVEL", env.FieldSpec{Type: env.Enum, Values: []string{"debug", "info", "warn", "error"}, Default: "info"}).
		Add("LOG_FORMAT", env.FieldSpec{Type: env.Enum, Values: []string{"text", "json"}, Default: "text"}).
		Add("METRICS_ENABLED", env.FieldSpec{Type: env.Boolean, Default: true})
}

// Load reads envFiles, or .env when present, and validates the configuration
// variables. A named file that does not exist is an error.
// Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	v, err := env.New(env.WithDotenv(envFiles...))
	if err != nil {
		return nil, err
	}
	res, err := v.ValidateEnv(Schema())
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return FromValues(res.Values), nil
}

// FromValues maps validated values onto a Config.
func FromValues(vals env.Values) *Config {
	return &Config{
		App: AppConfig{
			Name:  vals.String("APP_NAME"),
			Env:   vals.String("APP_ENV"),
			Debug: vals.Bool("APP_DEBUG"),
			Port:  vals.Int("APP_PORT"),
		},
		Log: LogConfig{
			Level:  vals.String("LOG_LEVEL"),
			Format: vals.String("LOG_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: vals.Bool("METRICS_ENABLED"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an integer env value, or defaultVal when unset or invalid.
func GetInt(key string, defaultVal int) int {
	v, ok := coerce(key, env.FieldSpec{Type: env.Number, Integer: true})
	if !ok {
		return defaultVal
	}
	return int(v.(float64))
}

// GetBool returns a boolean env value (true/1/yes, false/0/no), or defaultVal
// when unset or invalid.
func GetBool(key string, defaultVal bool) bool {
	v, ok := coerce(key, env.Boolean)
	if !ok {
		return defaultVal
	}
	return v.(bool)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func coerce(key string, spec env.Spec) (any, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, false
	}
	v, err := env.Coerce(key, raw, spec)
	if err != nil {
		return nil, false
	}
	return v, true
}
