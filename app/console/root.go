// Package console holds the envguard command line. Laravel: app/Console.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-envguard/framework/logging"
)

// ErrInvalid is returned by check when the environment does not validate.
// The report has already been printed, so Run only sets the exit status.
var ErrInvalid = errors.New("environment is invalid")

// NewRootCommand builds the envguard command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "envguard",
		Short:         "Validate environment variables against a typed schema",
		Long:          `envguard checks the process environment and .env files against a YAML or JSON schema, from the command line or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newCheckCommand(), newServeCommand(), newVersionCommand())
	return root
}

// Run executes the command line and returns the process exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, ErrInvalid) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// Execute runs the command line with the process arguments.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// logger builds the CLI logger from --log-level. Logs go to stderr so
// reports on stdout stay machine readable.
func logger(cmd *cobra.Command) *logrus.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(level, "text", cmd.ErrOrStderr())
}
