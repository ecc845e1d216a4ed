package env_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-envguard/framework/env"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newValidator(t *testing.T, opts ...env.Option) *env.Validator {
	t.Helper()
	v, err := env.New(append([]env.Option{env.WithoutDotenv()}, opts...)...)
	require.NoError(t, err)
	return v
}

func validate(t *testing.T, schema *env.Schema, src env.Source) *env.Result {
	t.Helper()
	res, err := newValidator(t).Validate(schema, src)
	require.NoError(t, err)
	return res
}

// counting returns a custom type that records each field it is invoked for.
func counting(calls *[]string, fail bool) env.Type {
	return env.Func(func(raw, field string, _ env.FieldSpec) (any, error) {
		*calls = append(*calls, field)
		if fail {
			return nil, errors.New(field + " rejected")
		}
		return raw, nil
	})
}

// ── Absence handling ─────────────────────────────────────────────────────────

func TestValidate_EverySchemaKeyPresent(t *testing.T) {
	schema := env.NewSchema().
		Add("SET", env.String).
		Add("UNSET", env.String).
		Add("REQUIRED", env.FieldSpec{Required: true}).
		Add("BAD", env.Number)

	res := validate(t, schema, env.Source{"SET": "x", "BAD": "nope"})

	for _, name := range []string{"SET", "UNSET", "REQUIRED", "BAD"} {
		assert.Contains(t, res.Values, name)
	}
	assert.Len(t, res.Values, 4)
}

func TestValidate_RequiredMissing(t *testing.T) {
	schema := env.NewSchema().Add("DATABASE_URL", env.FieldSpec{Type: env.URL, Required: true})

	for label, src := range map[string]env.Source{
		"absent": {},
		"empty":  {"DATABASE_URL": ""},
	} {
		t.Run(label, func(t *testing.T) {
			res := validate(t, schema, src)

			require.Len(t, res.Errors, 1)
			assert.Equal(t, "DATABASE_URL", res.Errors[0].Field)
			assert.Equal(t, env.MissingRequired, res.Errors[0].Kind)
			assert.Equal(t, "Missing required environment variable: DATABASE_URL", res.Errors[0].Message)
			assert.Nil(t, res.Values["DATABASE_URL"])
			assert.False(t, res.Valid())
		})
	}
}

func TestValidate_RequiredBeatsDefault(t *testing.T) {
	schema := env.NewSchema().Add("KEY", env.FieldSpec{Required: true, Default: "fallback"})
	res := validate(t, schema, env.Source{})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, env.MissingRequired, res.Errors[0].Kind)
}

func TestValidate_OptionalUnset(t *testing.T) {
	calls := []string{}
	schema := env.NewSchema().
		Add("NAME", env.String).
		Add("HOOK", counting(&calls, false))

	res := validate(t, schema, env.Source{"NAME": ""})

	assert.True(t, res.Valid())
	assert.Nil(t, res.Values["NAME"])
	assert.Nil(t, res.Values["HOOK"])
	assert.False(t, res.Values.Has("NAME"))
	assert.Empty(t, calls, "no coercion for unset optional fields")
}

func TestValidate_DefaultGoesThroughPipeline(t *testing.T) {
	schema := env.NewSchema().
		Add("PORT", env.FieldSpec{Type: env.Number, Integer: true, Default: 8080}).
		Add("RATIO", env.FieldSpec{Type: env.Number, Default: 0.25}).
		Add("DEBUG", env.FieldSpec{Type: env.Boolean, Default: true}).
		Add("HOSTS", env.FieldSpec{Type: env.Array, Default: []string{"a", " b"}}).
		Add("MODE", env.FieldSpec{Type: env.Enum, Values: []string{"dev", "prod"}, Default: "dev"})

	res := validate(t, schema, env.Source{})

	require.True(t, res.Valid(), "errors: %v", res.Errors)
	assert.Equal(t, 8080.0, res.Values["PORT"])
	assert.Equal(t, 0.25, res.Values["RATIO"])
	assert.Equal(t, true, res.Values["DEBUG"])
	assert.Equal(t, []string{"a", "b"}, res.Values["HOSTS"])
	assert.Equal(t, "dev", res.Values["MODE"])
}

func TestValidate_DefaultArrayUsesSeparator(t *testing.T) {
	schema := env.NewSchema().Add("HOSTS", env.FieldSpec{Type: env.Array, Separator: ";", Default: []any{"a", "b"}})
	res := validate(t, schema, env.Source{})
	assert.Equal(t, []string{"a", "b"}, res.Values.Strings("HOSTS"))
}

func TestValidate_DefaultViolatingConstraintsIsAnError(t *testing.T) {
	schema := env.NewSchema().Add("PORT", env.FieldSpec{Type: env.Number, Max: env.Float(100), Default: 8080})
	res := validate(t, schema, env.Source{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, env.ConstraintViolation, res.Errors[0].Kind)
	assert.Nil(t, res.Values["PORT"])
}

func TestValidate_EnvironmentBeatsDefault(t *testing.T) {
	schema := env.NewSchema().Add("PORT", env.FieldSpec{Type: env.Number, Default: 8080})
	res := validate(t, schema, env.Source{"PORT": "9000"})
	assert.Equal(t, 9000, res.Values.Int("PORT"))
}

// ── Modes ────────────────────────────────────────────────────────────────────

func TestValidate_CollectAllProcessesEveryFieldInOrder(t *testing.T) {
	calls := []string{}
	schema := env.NewSchema().
		Add("A", counting(&calls, true)).
		Add("B", env.Number).
		Add("C", counting(&calls, false)).
		Add("D", env.FieldSpec{Required: true}).
		Add("E", counting(&calls, true))

	res := validate(t, schema, env.Source{"A": "1", "B": "x", "C": "3", "E": "5"})

	assert.Equal(t, []string{"A", "C", "E"}, calls)
	require.Len(t, res.Errors, 4)
	fields := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"A", "B", "D", "E"}, fields)
	assert.Equal(t, "3", res.Values["C"])
	assert.Nil(t, res.Values["A"])
}

func TestValidate_StrictStopsAtFirstError(t *testing.T) {
	calls := []string{}
	schema := env.NewSchema().
		Add("A", counting(&calls, false)).
		Add("B", env.Number).
		Add("C", counting(&calls, false))

	res, err := newValidator(t, env.Strict(true)).Validate(schema, env.Source{"A": "1", "B": "x", "C": "3"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, env.ErrTypeMismatch)
	assert.Equal(t, []string{"A"}, calls, "C must never be processed")

	var e *env.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "B", e.Field)
}

func TestValidate_StrictMissingRequired(t *testing.T) {
	schema := env.NewSchema().Add("KEY", env.FieldSpec{Required: true})
	_, err := newValidator(t, env.Strict(true)).Validate(schema, env.Source{})
	assert.ErrorIs(t, err, env.ErrMissingRequired)
}

func TestValidate_StrictValid(t *testing.T) {
	schema := env.NewSchema().Add("KEY", env.String)
	res, err := newValidator(t, env.Strict(true)).Validate(schema, env.Source{"KEY": "v"})
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestValidate_SchemaConfigurationRaisedInCollectMode(t *testing.T) {
	calls := []string{}
	schema := env.NewSchema().
		Add("MODE", env.Enum).
		Add("LATER", counting(&calls, false))

	res, err := newValidator(t).Validate(schema, env.Source{"MODE": "a", "LATER": "x"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, env.ErrSchemaConfiguration)
	assert.Empty(t, calls)
}

func TestValidate_EnumWithoutValuesIgnoredWhenUnset(t *testing.T) {
	schema := env.NewSchema().Add("MODE", env.Enum)
	res := validate(t, schema, env.Source{})
	assert.True(t, res.Valid())
}

// ── Result ───────────────────────────────────────────────────────────────────

func TestValidate_ErrIsSummary(t *testing.T) {
	schema := env.NewSchema().
		Add("A", env.FieldSpec{Required: true}).
		Add("B", env.Boolean)

	res := validate(t, schema, env.Source{"B": "maybe"})

	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, env.ErrMissingRequired)
	assert.ErrorIs(t, err, env.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "2 validation errors")

	ok := validate(t, schema, env.Source{"A": "x", "B": "yes"})
	assert.NoError(t, ok.Err())
}

func TestValidate_RoundTrip(t *testing.T) {
	schema := env.NewSchema().
		Add("NAME", env.FieldSpec{MinLength: env.Int(1)}).
		Add("COUNT", env.FieldSpec{Type: env.Number, Min: env.Float(1), Max: env.Float(100)}).
		Add("FLAG", env.Boolean).
		Add("LIST", env.Array)

	first := validate(t, schema, env.Source{"NAME": "svc", "COUNT": "42", "FLAG": "Yes", "LIST": "a, b ,c"})
	require.True(t, first.Valid())

	src := env.Source{}
	for name, v := range first.Values {
		src[name] = render(v)
	}
	assert.Equal(t, env.Source{"NAME": "svc", "COUNT": "42", "FLAG": "true", "LIST": "a,b,c"}, src)

	again := validate(t, schema, src)
	require.True(t, again.Valid())
	assert.Equal(t, first.Values, again.Values)
}

// render writes a coerced value back in the form the coercers accept.
func render(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func TestValidate_SecretErrorsHideRawValue(t *testing.T) {
	schema := env.NewSchema().
		Add("PIN", env.FieldSpec{Type: env.Number, Secret: true}).
		Add("PORT", env.Number)

	res := validate(t, schema, env.Source{"PIN": "hunter2", "PORT": "eighty"})
	require.Len(t, res.Errors, 2)

	bag := res.Errors.Bag()
	assert.Equal(t, []string{"PIN must be a number"}, bag["PIN"])
	assert.Equal(t, []string{`PORT must be a number, got "eighty"`}, bag["PORT"])
	assert.NotContains(t, res.Errors.Error(), "hunter2")
	assert.Nil(t, res.Redacted(schema)["PIN"])
}

func TestValidate_NilSchema(t *testing.T) {
	res := validate(t, nil, env.Source{"X": "1"})
	assert.True(t, res.Valid())
	assert.Empty(t, res.Values)
}

// ── New / dotenv ─────────────────────────────────────────────────────────────

func TestNew_LoadsDotenvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVGUARD_FROM_FILE=file\nENVGUARD_OVERRIDE=file\n"), 0o600))
	t.Setenv("ENVGUARD_OVERRIDE", "process")
	t.Cleanup(func() { os.Unsetenv("ENVGUARD_FROM_FILE") })

	v, err := env.New(env.WithDotenv(path))
	require.NoError(t, err)

	schema := env.NewSchema().
		Add("ENVGUARD_FROM_FILE", env.String).
		Add("ENVGUARD_OVERRIDE", env.String)
	res, err := v.ValidateEnv(schema)
	require.NoError(t, err)

	assert.Equal(t, "file", res.Values["ENVGUARD_FROM_FILE"])
	assert.Equal(t, "process", res.Values["ENVGUARD_OVERRIDE"])
}

func TestNew_MissingDefaultDotenvIsSkipped(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	_, err = env.New()
	assert.NoError(t, err)
	_, err = env.New(env.WithDotenv())
	assert.NoError(t, err)
}

func TestNew_MissingNamedDotenvIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.env")
	_, err := env.New(env.WithDotenv(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "absent.env")
}

func TestNew_Defaults(t *testing.T) {
	v := newValidator(t)
	assert.False(t, v.IsStrict())
	assert.True(t, newValidator(t, env.Strict(true)).IsStrict())
}

// ── Load / MustLoad ──────────────────────────────────────────────────────────

func TestLoad_ReturnsValues(t *testing.T) {
	t.Setenv("ENVGUARD_PORT", "8080")
	values, err := env.Load(env.NewSchema().Add("ENVGUARD_PORT", env.Number), env.WithoutDotenv())
	require.NoError(t, err)
	assert.Equal(t, 8080, values.Int("ENVGUARD_PORT"))
}

func TestLoad_ReturnsFirstError(t *testing.T) {
	t.Setenv("ENVGUARD_FLAG", "maybe")
	schema := env.NewSchema().
		Add("ENVGUARD_MISSING", env.FieldSpec{Required: true}).
		Add("ENVGUARD_FLAG", env.Boolean)

	_, err := env.Load(schema, env.WithoutDotenv())

	var e *env.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "ENVGUARD_MISSING", e.Field)
}

func TestMustLoad_Panics(t *testing.T) {
	schema := env.NewSchema().Add("ENVGUARD_NOT_SET_ANYWHERE", env.FieldSpec{Required: true})
	assert.Panics(t, func() { env.MustLoad(schema, env.WithoutDotenv()) })
}
