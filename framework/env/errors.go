package env

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a validation failure.
type ErrorKind uint8

const (
	// MissingRequired: a required variable is absent or empty.
	MissingRequired ErrorKind = iota + 1
	// TypeMismatch: the raw value cannot be read as the declared type.
	TypeMismatch
	// ConstraintViolation: the value parsed but breaks a bound, pattern,
	// protocol or enum membership.
	ConstraintViolation
	// SchemaConfiguration: the schema itself is malformed. Always returned
	// immediately, whatever the mode.
	SchemaConfiguration
	// CustomValidator: a custom CoerceFunc rejected the value.
	CustomValidator
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrMissingRequired     = errors.New("missing required variable")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrSchemaConfiguration = errors.New("schema configuration error")
	ErrCustomValidator     = errors.New("custom validator error")

	// ErrValidation is returned by Load when a result is invalid but carries
	// no error to report.
	ErrValidation = errors.New("env: validation failed")
)

func (k ErrorKind) String() string {
	switch k {
	case MissingRequired:
		return "missing_required"
	case TypeMismatch:
		return "type_mismatch"
	case ConstraintViolation:
		return "constraint_violation"
	case SchemaConfiguration:
		return "schema_configuration"
	case CustomValidator:
		return "custom_validator"
	}
	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case MissingRequired:
		return ErrMissingRequired
	case TypeMismatch:
		return ErrTypeMismatch
	case ConstraintViolation:
		return ErrConstraintViolation
	case SchemaConfiguration:
		return ErrSchemaConfiguration
	case CustomValidator:
		return ErrCustomValidator
	}
	return nil
}

// ── Error ────────────────────────────────────────────────────────────────────

// Error is a single validation failure. Field is empty for schema-level
// errors that are not tied to one input value.
type Error struct {
	Field   string
	Kind    ErrorKind
	Message string
	Err     error // cause, set when a custom coercer returned a plain error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(field string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapCustom turns whatever a custom coercer returned into a field-scoped
// *Error. Typed errors keep their kind; plain errors become CustomValidator.
// A typed nil *Error is no error at all and yields nil.
func wrapCustom(field string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e == nil {
			return nil
		}
		out := *e
		if out.Field == "" && out.Kind != SchemaConfiguration {
			out.Field = field
		}
		return &out
	}
	return &Error{Field: field, Kind: CustomValidator, Message: err.Error(), Err: err}
}

// ── Errors ───────────────────────────────────────────────────────────────────

// Errors is the ordered list of failures collected by a non-strict pass.
type Errors []*Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "env: no errors"
	case 1:
		return "env: 1 validation error: " + es[0].Message
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return fmt.Sprintf("env: %d validation errors: %s", len(es), strings.Join(msgs, "; "))
}

// Unwrap exposes every collected error to errors.Is / errors.As.
func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Has reports whether field has at least one error.
func (es Errors) Has(field string) bool {
	for _, e := range es {
		if e.Field == field {
			return true
		}
	}
	return false
}

// First returns the first message recorded for field, or "".
func (es Errors) First(field string) string {
	for _, e := range es {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Bag groups messages by field, the {"field": ["msg"]} shape the HTTP layer
// serves with 422 responses.
func (es Errors) Bag() map[string][]string {
	bag := make(map[string][]string, len(es))
	for _, e := range es {
		bag[e.Field] = append(bag[e.Field], e.Message)
	}
	return bag
}
