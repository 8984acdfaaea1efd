package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-harness/internal/output"
	"github.com/mj1618/desktop-harness/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario and print the step results",
	Long: `Build the scenario's scene, run its steps in order and print one result
per step. The run stops at the first failing step and exits non-zero.

Examples:
  desktop-harness run login.yaml
  desktop-harness run login.yaml --timing aggressive --screenshots out/`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// RunResult is printed by the run command.
type RunResult struct {
	Scenario  string                `yaml:"scenario"        json:"scenario"`
	OK        bool                  `yaml:"ok"              json:"ok"`
	Steps     int                   `yaml:"steps"           json:"steps"`
	Completed int                   `yaml:"completed"       json:"completed"`
	Results   []scenario.StepResult `yaml:"results"         json:"results"`
	Error     string                `yaml:"error,omitempty" json:"error,omitempty"`
}

var errScenarioFailed = errors.New("scenario failed")

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("screenshots", "", "Directory for annotated screenshots of failing steps")
}

func runRun(cmd *cobra.Command, args []string) error {
	script, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	env, tk, err := newEnv()
	if err != nil {
		return err
	}
	defer tk.Stop()
	env.ScreenshotDir, _ = cmd.Flags().GetString("screenshots")

	results, runErr := scenario.Run(cmd.Context(), env, script)
	res := RunResult{
		Scenario: script.Name,
		OK:       runErr == nil,
		Steps:    len(script.Steps),
		Results:  results,
	}
	for _, r := range results {
		if r.OK {
			res.Completed++
		}
	}
	if runErr != nil {
		res.Error = runErr.Error()
	}
	if err := output.Print(res); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%w: %s", errScenarioFailed, script.Name)
	}
	return nil
}
