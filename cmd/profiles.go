package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/timing"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Print the timing profiles",
	Long: `Print every built-in timing profile. With --timing or --timing-file only
the resolved profile is printed.`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	override, err := profileOverride()
	if err != nil {
		return err
	}
	if override != nil {
		return output.Print(override)
	}
	profiles := make([]timing.Profile, 0, len(timing.Modes()))
	for _, mode := range timing.Modes() {
		p, err := timing.ForMode(mode)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}
	return output.Print(profiles)
}
