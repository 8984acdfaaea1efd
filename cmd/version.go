package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(map[string]string{
			"version": version.Version,
			"commit":  version.Commit,
			"built":   version.BuildDate,
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
