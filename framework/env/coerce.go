package env

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Schemes that are meaningless without a host.
var hostSchemes = map[string]bool{"http": true, "https": true, "ws": true, "wss": true, "ftp": true}

// Coerce runs a single raw value through the coercer and constraints of
// spec. Absence handling (Required / Default) is not applied here.
//
//	port, err := env.Coerce("PORT", "8080", env.FieldSpec{Type: env.Number, Integer: true})
func Coerce(field, raw string, spec Spec) (any, error) {
	v, err := coerce(field, raw, spec.fieldSpec())
	if err != nil {
		return nil, err
	}
	return v, nil
}

// coerce dispatches to the coercer for spec.Type.
func coerce(field, raw string, spec FieldSpec) (any, *Error) {
	switch spec.Type.kind {
	case kindString:
		return coerceString(field, raw, spec)
	case kindNumber:
		return coerceNumber(field, raw, spec)
	case kindBoolean:
		return coerceBoolean(field, raw, spec)
	case kindArray:
		return coerceArray(field, raw, spec)
	case kindURL:
		return coerceURL(field, raw, spec)
	case kindEmail:
		return coerceEmail(field, raw)
	case kindEnum:
		return coerceEnum(field, raw, spec)
	case kindCustom:
		if spec.Type.fn == nil {
			return nil, newError("", SchemaConfiguration, "custom type %q for %s has no function", spec.Type.Name(), field)
		}
		v, err := spec.Type.fn(raw, field, spec)
		if err != nil {
			if e := wrapCustom(field, err); e != nil {
				if spec.Secret {
					e.Message = scrub(e.Message, raw)
				}
				return nil, e
			}
		}
		return v, nil
	}
	return nil, newError("", SchemaConfiguration, "unknown type for %s", field)
}

// ── Coercers ─────────────────────────────────────────────────────────────────

func coerceString(field, raw string, spec FieldSpec) (any, *Error) {
	n := utf8.RuneCountInString(raw)
	if spec.MinLength != nil && n < *spec.MinLength {
		return nil, newError(field, ConstraintViolation, "%s must be at least %d characters long", field, *spec.MinLength)
	}
	if spec.MaxLength != nil && n > *spec.MaxLength {
		return nil, newError(field, ConstraintViolation, "%s must be at most %d characters long", field, *spec.MaxLength)
	}
	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, &Error{Kind: SchemaConfiguration, Message: "invalid pattern for " + field + ": " + err.Error(), Err: err}
		}
		if !re.MatchString(raw) {
			return nil, newError(field, ConstraintViolation, "%s does not match pattern %s", field, spec.Pattern)
		}
	}
	return raw, nil
}

func coerceNumber(field, raw string, spec FieldSpec) (any, *Error) {
	s := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || strings.ContainsAny(s, "_xX") {
		return nil, newError(field, TypeMismatch, "%s must be a number%s", field, got(raw, spec))
	}
	if math.IsInf(f, 0) && !boundedInf(f, spec) {
		return nil, newError(field, TypeMismatch, "%s must be a finite number%s", field, got(raw, spec))
	}
	if spec.Min != nil && f < *spec.Min {
		return nil, newError(field, ConstraintViolation, "%s must be at least %s", field, formatNumber(*spec.Min))
	}
	if spec.Max != nil && f > *spec.Max {
		return nil, newError(field, ConstraintViolation, "%s must be at most %s", field, formatNumber(*spec.Max))
	}
	if spec.Integer && (math.IsInf(f, 0) || math.Trunc(f) != f) {
		return nil, newError(field, ConstraintViolation, "%s must be an integer", field)
	}
	return f, nil
}

func coerceBoolean(field, raw string, spec FieldSpec) (any, *Error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return nil, newError(field, TypeMismatch, "%s must be a boolean (true/false, 1/0, yes/no)%s", field, got(raw, spec))
}

func coerceArray(field, raw string, spec FieldSpec) (any, *Error) {
	items := strings.Split(raw, spec.separator())
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	if spec.MinLength != nil && len(items) < *spec.MinLength {
		return nil, newError(field, ConstraintViolation, "%s must have at least %d items", field, *spec.MinLength)
	}
	if spec.MaxLength != nil && len(items) > *spec.MaxLength {
		return nil, newError(field, ConstraintViolation, "%s must have at most %d items", field, *spec.MaxLength)
	}
	return items, nil
}

func coerceURL(field, raw string, spec FieldSpec) (any, *Error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || (hostSchemes[u.Scheme] && u.Host == "") {
		return nil, newError(field, TypeMismatch, "%s must be a valid URL", field)
	}
	if len(spec.Protocols) > 0 {
		allowed := false
		for _, p := range spec.Protocols {
			if strings.EqualFold(strings.TrimSuffix(p, ":"), u.Scheme) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, newError(field, ConstraintViolation, "%s must use one of the protocols: %s", field, strings.Join(spec.Protocols, ", "))
		}
	}
	return raw, nil
}

func coerceEmail(field, raw string) (any, *Error) {
	if !emailPattern.MatchString(raw) {
		return nil, newError(field, TypeMismatch, "%s must be a valid email address", field)
	}
	return raw, nil
}

func coerceEnum(field, raw string, spec FieldSpec) (any, *Error) {
	if len(spec.Values) == 0 {
		return nil, newError("", SchemaConfiguration, "enum field %s requires a non-empty values list", field)
	}
	for _, v := range spec.Values {
		if v == raw {
			return raw, nil
		}
	}
	return nil, newError(field, ConstraintViolation, "%s must be one of: %s", field, strings.Join(spec.Values, ", "))
}

// ── helpers ──────────────────────────────────────────────────────────────────

// got quotes raw for an error message, or nothing for Secret fields.
func got(raw string, spec FieldSpec) string {
	if spec.Secret {
		return ""
	}
	return ", got " + strconv.Quote(raw)
}

// scrub masks raw inside a message produced by a custom coercer.
func scrub(msg, raw string) string {
	if raw == "" {
		return msg
	}
	return strings.ReplaceAll(msg, raw, RedactedValue)
}

// boundedInf reports whether an infinite f was opted into by an infinite
// bound on the same side.
func boundedInf(f float64, spec FieldSpec) bool {
	if f > 0 {
		return spec.Max != nil && math.IsInf(*spec.Max, 1)
	}
	return spec.Min != nil && math.IsInf(*spec.Min, -1)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
