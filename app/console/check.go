package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-envguard/framework/env"
	"github.com/km-arc/go-envguard/framework/schema"
)

type checkOptions struct {
	schema   string
	envFiles []string
	noDotenv bool
	strict   bool
	format   string
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the environment against a schema",
		Long: `Reads the schema, layers .env files under the process environment and reports every field.
Exits with status 1 when the environment is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.schema, "schema", "s", "", "Schema document (YAML or JSON)")
	f.StringArrayVarP(&opts.envFiles, "env-file", "e", nil, "Dotenv file to read, repeatable (default .env when present)")
	f.BoolVar(&opts.noDotenv, "no-dotenv", false, "Only read the process environment")
	f.BoolVar(&opts.strict, "strict", false, "Stop at the first invalid field")
	f.StringVarP(&opts.format, "format", "f", "text", "Report format (text, json)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	s, err := schema.LoadFile(opts.schema)
	if err != nil {
		return err
	}
	src, err := source(opts)
	if err != nil {
		return err
	}

	v, err := env.New(env.WithoutDotenv(), env.Strict(opts.strict), env.WithLogger(logger(cmd)))
	if err != nil {
		return err
	}

	res, err := v.Validate(s, src)
	if errors.Is(err, env.ErrSchemaConfiguration) {
		return err
	}

	r := newReport(s, res, err)
	if opts.format == "json" {
		err = r.writeJSON(cmd.OutOrStdout())
	} else {
		r.writeText(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	if !r.Valid {
		return ErrInvalid
	}
	return nil
}

// source layers the dotenv files under the process environment. Earlier
// files win over later ones. A missing default .env is skipped.
func source(opts *checkOptions) (env.Source, error) {
	src := env.Environ()
	if opts.noDotenv {
		return src, nil
	}

	files, explicit := opts.envFiles, len(opts.envFiles) > 0
	if !explicit {
		files = []string{".env"}
	}
	for _, f := range files {
		fileSrc, err := env.ReadFiles(f)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		src = env.Merge(fileSrc, src)
	}
	return src, nil
}

// ── Report ───────────────────────────────────────────────────────────────────

type report struct {
	Valid  bool                `json:"valid"`
	Values env.Values          `json:"values,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`

	schema *env.Schema
}

// newReport normalises both modes: in strict mode err carries the only error
// and res is nil.
func newReport(s *env.Schema, res *env.Result, err error) *report {
	r := &report{schema: s}
	if err != nil {
		var fe *env.Error
		if errors.As(err, &fe) {
			r.Errors = env.Errors{fe}.Bag()
		}
		return r
	}
	r.Valid = res.Valid()
	r.Values = res.Redacted(s)
	if !r.Valid {
		r.Errors = res.Errors.Bag()
	}
	return r
}

func (r *report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *report) writeText(w io.Writer) {
	out := termenv.NewOutput(w)
	ok := out.String("✓").Foreground(out.Color("2"))
	bad := out.String("✗").Foreground(out.Color("1")).Bold()
	unset := out.String("-").Faint()

	width := 0
	for _, f := range r.schema.Fields() {
		width = max(width, len(f.Name))
	}

	for _, f := range r.schema.Fields() {
		name := fmt.Sprintf("%-*s", width, f.Name)
		switch {
		case len(r.Errors[f.Name]) > 0:
			fmt.Fprintf(w, "%s %s  %s\n", bad, name, strings.Join(r.Errors[f.Name], "; "))
		case r.Values == nil:
			// strict mode stopped before this field
		case r.Values[f.Name] == nil:
			fmt.Fprintf(w, "%s %s  %s\n", unset, name, out.String("(unset)").Faint())
		default:
			fmt.Fprintf(w, "%s %s  %s\n", ok, name, display(r.Values[f.Name]))
		}
	}

	n := len(r.Errors)
	switch {
	case r.Valid:
		fmt.Fprintln(w, out.String(fmt.Sprintf("%d fields valid", r.schema.Len())).Foreground(out.Color("2")))
	case n == 1:
		fmt.Fprintln(w, out.String("1 invalid field").Foreground(out.Color("1")))
	default:
		fmt.Fprintln(w, out.String(fmt.Sprintf("%d invalid fields", n)).Foreground(out.Color("1")))
	}
}

func display(v any) string {
	if items, ok := v.([]string); ok {
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprint(v)
}
