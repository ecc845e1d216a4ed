package env

// ── Types ────────────────────────────────────────────────────────────────────

type kind uint8

const (
	kindString kind = iota // zero value: an unset Type coerces as a string
	kindNumber
	kindBoolean
	kindArray
	kindURL
	kindEmail
	kindEnum
	kindCustom
)

// CoerceFunc converts a raw value into a typed value. It receives the field
// name and the full FieldSpec so it can read any constraint it cares about.
type CoerceFunc func(raw, field string, spec FieldSpec) (any, error)

// Type selects the coercer for a field: one of the built-in types below, or
// a custom function created with Func / Custom.
type Type struct {
	kind kind
	name string
	fn   CoerceFunc
}

// Built-in types.
var (
	String  = Type{kind: kindString, name: "string"}
	Number  = Type{kind: kindNumber, name: "number"}
	Boolean = Type{kind: kindBoolean, name: "boolean"}
	Array   = Type{kind: kindArray, name: "array"}
	URL     = Type{kind: kindURL, name: "url"}
	Email   = Type{kind: kindEmail, name: "email"}
	Enum    = Type{kind: kindEnum, name: "enum"}
)

// Func wraps fn as an anonymous custom Type.
func Func(fn CoerceFunc) Type { return Custom("custom", fn) }

// Custom wraps fn as a named custom Type. The name only shows up in logs and
// reports.
func Custom(name string, fn CoerceFunc) Type {
	return Type{kind: kindCustom, name: name, fn: fn}
}

// Name returns the type tag ("string", "number", ...) or the custom name.
func (t Type) Name() string {
	if t.name == "" {
		return String.name
	}
	return t.name
}

// IsCustom reports whether t wraps a user function.
func (t Type) IsCustom() bool { return t.kind == kindCustom }

// TypeByName returns the built-in Type for a tag such as "number".
func TypeByName(name string) (Type, bool) {
	for _, t := range builtins {
		if t.name == name {
			return t, true
		}
	}
	return Type{}, false
}

var builtins = []Type{String, Number, Boolean, Array, URL, Email, Enum}

// ── FieldSpec ────────────────────────────────────────────────────────────────

// FieldSpec describes how one environment variable is read.
//
// Pointer constraints are "unset" when nil so that zero bounds stay
// expressible (MinLength: env.Int(0) is a real constraint).
type FieldSpec struct {
	Type     Type
	Required bool
	// Default is stringified and pushed through the same coercion pipeline as
	// a real value when the variable is absent or empty.
	Default any

	// string, array
	MinLength *int
	MaxLength *int
	Pattern   string // string only

	// number
	Min     *float64
	Max     *float64
	Integer bool

	// array
	Separator string

	// url
	Protocols []string

	// enum
	Values []string

	// Secret masks the value in reports and API responses.
	Secret      bool
	Description string
}

// Spec is anything that can describe a field: a FieldSpec, or a bare Type as
// shorthand for FieldSpec{Type: t}.
type Spec interface {
	fieldSpec() FieldSpec
}

func (s FieldSpec) fieldSpec() FieldSpec { return s }
func (t Type) fieldSpec() FieldSpec      { return FieldSpec{Type: t} }

// separator returns the array separator, defaulting to ",".
func (s FieldSpec) separator() string {
	if s.Separator == "" {
		return ","
	}
	return s.Separator
}

// Int returns a pointer to n, for MinLength / MaxLength.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for Min / Max.
func Float(f float64) *float64 { return &f }

// ── Schema ───────────────────────────────────────────────────────────────────

// Field is one named entry of a Schema.
type Field struct {
	Name string
	Spec FieldSpec
}

// Schema is an ordered set of fields. Iteration order is insertion order and
// decides the order errors are collected in.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema returns an empty schema.
//
//	schema := env.NewSchema().
//	    Add("PORT", env.FieldSpec{Type: env.Number, Integer: true, Default: 8080}).
//	    Add("DEBUG", env.Boolean)
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Add appends a field. Adding a name twice replaces the earlier spec in place,
// keeping its original position.
func (s *Schema) Add(name string, spec Spec) *Schema {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	f := Field{Name: name, Spec: spec.fieldSpec()}
	if i, ok := s.index[name]; ok {
		s.fields[i] = f
		return s
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, f)
	return s
}

// Fields returns the fields in schema order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return s.fields
}

// Lookup returns the field spec registered under name.
func (s *Schema) Lookup(name string) (FieldSpec, bool) {
	if s == nil {
		return FieldSpec{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i].Spec, true
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}
