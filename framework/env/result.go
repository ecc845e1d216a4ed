package env

import "net/url"

// RedactedValue replaces secret values in reports.
const RedactedValue = "******"

// Result is the outcome of one Validate pass.
type Result struct {
	// Values holds every schema field. nil marks a field that is unset
	// (optional without default) or that failed.
	Values Values
	Errors Errors
}

// Valid reports whether no error was collected.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

// Err folds the collected errors into one error, nil when valid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r.Errors
}

// Redacted returns a copy of Values with Secret fields of schema masked.
// Unset values stay nil.
func (r *Result) Redacted(schema *Schema) Values {
	out := make(Values, len(r.Values))
	for k, v := range r.Values {
		if spec, ok := schema.Lookup(k); ok && spec.Secret && v != nil {
			v = RedactedValue
		}
		out[k] = v
	}
	return out
}

// ── Values ───────────────────────────────────────────────────────────────────

// Values maps field names to coerced values: string for string/url/email/enum,
// float64 for number, bool for boolean, []string for array, anything for
// custom types.
type Values map[string]any

// Has reports whether name holds a non-nil value.
func (v Values) Has(name string) bool { return v[name] != nil }

// String returns a string value, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Float returns a number value, or 0.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Int returns a number value truncated to int, or 0.
func (v Values) Int(name string) int {
	return int(v.Float(name))
}

// Bool returns a boolean value, or false.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Strings returns an array value, or nil.
func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

// URL parses a url value. It returns nil when the field is unset.
func (v Values) URL(name string) *url.URL {
	s := v.String(name)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}
