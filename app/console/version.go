package console

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-envguard/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of envguard",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "envguard version %s\n", app.Version)
		},
	}
}
