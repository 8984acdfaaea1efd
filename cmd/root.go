package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/timing"
	"github.com/mj1618/desktop-harness/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "desktop-harness",
	Short: "Drive GUI scenes with synthetic input and check the results",
	Long: `A test harness that runs scripted scenarios against a UI toolkit: it
builds a scene, injects mouse and keyboard input on the UI goroutine,
waits for the toolkit to settle and checks node state.`,
	SilenceUsage: true,
}

// logger is built from --log-level before any command runs.
var logger = slog.New(slog.DiscardHandler)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("timing", "", "Timing profile: default, aggressive, debug (overrides "+timing.EnvMode+")")
	rootCmd.PersistentFlags().String("timing-file", "", "YAML file of timing profile fields to override")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		l, err := newLogger(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("unsupported log level: %s (use debug, info, warn or error)", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// profileOverride resolves --timing and --timing-file. It returns nil
// when neither is set, leaving the choice to the scenario or environment.
func profileOverride() (*timing.Profile, error) {
	mode, _ := rootCmd.PersistentFlags().GetString("timing")
	file, _ := rootCmd.PersistentFlags().GetString("timing-file")
	if mode == "" && file == "" {
		return nil, nil
	}
	var (
		p   timing.Profile
		err error
	)
	if mode != "" {
		p, err = timing.ForMode(mode)
	} else {
		p, err = timing.FromEnv()
	}
	if err != nil {
		return nil, err
	}
	if file != "" {
		if p, err = timing.LoadOverrides(p, file); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
