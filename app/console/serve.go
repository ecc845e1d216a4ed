package console

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-envguard/app"
)

func newServeCommand() *cobra.Command {
	var opts app.Options
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation HTTP API",
		Long:  `Starts the HTTP service: /health, /api/v1/env, /api/v1/validate and /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts.LogOutput = cmd.ErrOrStderr()
			return app.New(opts).Run(ctx, addr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.SchemaPath, "schema", "s", "", "Schema document checked by GET /api/v1/env")
	f.StringArrayVarP(&opts.EnvFiles, "env-file", "e", nil, "Dotenv file to load, repeatable (default .env)")
	f.BoolVar(&opts.Strict, "strict", false, "Default to fail-fast validation")
	f.StringVar(&addr, "addr", "", "Listen address (default :APP_PORT)")
	return cmd
}
