package schema

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-envguard/framework/env"
)

// fieldDoc is the object form of a field in a schema document.
type fieldDoc struct {
	Type        string   `mapstructure:"type" validate:"omitempty,envtype"`
	Required    bool     `mapstructure:"required"`
	Default     any      `mapstructure:"default"`
	MinLength   *int     `mapstructure:"minLength" validate:"omitempty,min=0"`
	MaxLength   *int     `mapstructure:"maxLength" validate:"omitempty,min=0"`
	Pattern     string   `mapstructure:"pattern"`
	Min         *float64 `mapstructure:"min"`
	Max         *float64 `mapstructure:"max"`
	Integer     bool     `mapstructure:"integer"`
	Separator   string   `mapstructure:"separator"`
	Protocols   []string `mapstructure:"protocols" validate:"dive,required"`
	Values      []string `mapstructure:"values"`
	Secret      bool     `mapstructure:"secret"`
	Description string   `mapstructure:"description"`
}

// Loader turns YAML or JSON schema documents into an env.Schema.
// Register custom types before loading; a Loader is not safe for concurrent
// Register calls.
type Loader struct {
	custom   map[string]env.CoerceFunc
	validate *validator.Validate
}

// NewLoader returns a Loader that knows the built-in types.
func NewLoader() *Loader {
	l := &Loader{custom: make(map[string]env.CoerceFunc)}

	l.validate = validator.New(validator.WithRequiredStructEnabled())
	l.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	_ = l.validate.RegisterValidation("envtype", func(fl validator.FieldLevel) bool {
		_, ok := l.lookup(fl.Field().String())
		return ok
	})
	return l
}

// Register makes fn available as `type: <name>` in documents.
//
//	loader.Register("port", func(raw, field string, _ env.FieldSpec) (any, error) { ... })
func (l *Loader) Register(name string, fn env.CoerceFunc) *Loader {
	l.custom[name] = fn
	return l
}

func (l *Loader) lookup(name string) (env.Type, bool) {
	if name == "" {
		return env.String, true
	}
	if t, ok := env.TypeByName(name); ok {
		return t, true
	}
	if fn, ok := l.custom[name]; ok {
		return env.Custom(name, fn), true
	}
	return env.Type{}, false
}

// ── Loading ──────────────────────────────────────────────────────────────────

// LoadFile reads and parses a schema document.
func (l *Loader) LoadFile(path string) (*env.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	s, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse parses a YAML or JSON document. An empty document is an empty schema.
func (l *Loader) Parse(data []byte) (*env.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if len(root.Content) == 0 {
		return env.NewSchema(), nil
	}
	return l.FromNode(root.Content[0])
}

// FromNode builds a schema from a mapping node. Field order follows the
// document.
func (l *Loader) FromNode(node *yaml.Node) (*env.Schema, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return env.NewSchema(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema: line %d: document must be a mapping of variable names", node.Line)
	}

	s := env.NewSchema()
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Tag == "!!merge" {
			return nil, fmt.Errorf("schema: line %d: merge keys are not supported at the top level", key.Line)
		}
		name := key.Value
		if seen[name] {
			return nil, fmt.Errorf("schema: line %d: duplicate field %s", key.Line, name)
		}
		seen[name] = true

		spec, err := l.field(name, val)
		if err != nil {
			return nil, fmt.Errorf("schema: line %d: %s: %w", val.Line, name, err)
		}
		s.Add(name, spec)
	}
	return s, nil
}

// field decodes one value node: a bare type tag, null, or a field object.
func (l *Loader) field(name string, node *yaml.Node) (env.FieldSpec, error) {
	var doc fieldDoc

	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			doc.Type = node.Value
		}
	case yaml.MappingNode:
		var raw map[string]any
		if err := node.Decode(&raw); err != nil {
			return env.FieldSpec{}, err
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &doc,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return env.FieldSpec{}, err
		}
		if err := dec.Decode(raw); err != nil {
			return env.FieldSpec{}, err
		}
	default:
		return env.FieldSpec{}, errors.New("expected a type name or a field object")
	}

	if err := l.validate.Struct(doc); err != nil {
		return env.FieldSpec{}, describe(err)
	}
	return l.spec(doc)
}

func (l *Loader) spec(doc fieldDoc) (env.FieldSpec, error) {
	if doc.MinLength != nil && doc.MaxLength != nil && *doc.MaxLength < *doc.MinLength {
		return env.FieldSpec{}, errors.New("maxLength is below minLength")
	}
	if doc.Min != nil && doc.Max != nil && *doc.Max < *doc.Min {
		return env.FieldSpec{}, errors.New("max is below min")
	}

	typ, _ := l.lookup(doc.Type)
	return env.FieldSpec{
		Type:        typ,
		Required:    doc.Required,
		Default:     doc.Default,
		MinLength:   doc.MinLength,
		MaxLength:   doc.MaxLength,
		Pattern:     doc.Pattern,
		Min:         doc.Min,
		Max:         doc.Max,
		Integer:     doc.Integer,
		Separator:   doc.Separator,
		Protocols:   doc.Protocols,
		Values:      doc.Values,
		Secret:      doc.Secret,
		Description: doc.Description,
	}, nil
}

// describe turns validator errors into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "envtype":
			msgs = append(msgs, fmt.Sprintf("unknown type %q", fe.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ── Package shortcuts ────────────────────────────────────────────────────────

// LoadFile parses a schema file with a Loader that knows only built-in types.
func LoadFile(path string) (*env.Schema, error) {
	return NewLoader().LoadFile(path)
}

// Parse parses a schema document with a Loader that knows only built-in types.
func Parse(data []byte) (*env.Schema, error) {
	return NewLoader().Parse(data)
}
