// Package env validates and coerces environment variables against a
// declarative schema, the typed counterpart of Laravel's env() helper.
//
// # Basic Usage
//
//	schema := env.NewSchema().
//	    Add("APP_PORT", env.FieldSpec{Type: env.Number, Integer: true, Min: env.Float(1), Max: env.Float(65535), Default: 8000}).
//	    Add("APP_DEBUG", env.Boolean).
//	    Add("DATABASE_URL", env.FieldSpec{Type: env.URL, Required: true, Protocols: []string{"postgres"}, Secret: true}).
//	    Add("LOG_LEVEL", env.FieldSpec{Type: env.Enum, Values: []string{"debug", "info", "warn"}, Default: "info"})
//
//	v, err := env.New()              // loads .env into the process environment
//	res, err := v.ValidateEnv(schema)
//	if !res.Valid() {
//	    // res.Errors.Bag() → {"DATABASE_URL": ["Missing required environment variable: DATABASE_URL"]}
//	}
//	port := res.Values.Int("APP_PORT")
//
// Or, failing on the first problem:
//
//	values := env.MustLoad(schema)
//
// # Types
//
//   - String: identity; MinLength, MaxLength (runes), Pattern
//   - Number: float64 from a decimal literal (no underscores or hex); Min, Max, Integer.
//     Inf is rejected unless Max (+Inf) or Min (-Inf) is itself infinite
//   - Boolean: true/1/yes, false/0/no (case-insensitive)
//   - Array: []string split on Separator (default ","), items trimmed; MinLength, MaxLength (items)
//   - URL: string; Protocols
//   - Email: string
//   - Enum: string; Values (required)
//   - Func / Custom: any CoerceFunc
//
// # Absence
//
// An empty variable counts as absent. Absent + Required is an error; absent
// with a Default coerces the stringified default through the same pipeline;
// otherwise the value is nil.
//
// # Modes
//
// By default every field is processed and failures are collected in
// Result.Errors. With Strict(true) the first failure is returned from
// Validate. Schema mistakes (an enum without values, a bad pattern) are
// always returned immediately.
package env
