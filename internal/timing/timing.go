// Package timing defines the pacing and timeout constants used by the
// bridge, the event-drain synchronizer and the input robots.
//
// A Profile is a plain value passed to each component. The named
// profiles are "default", "aggressive" and "debug"; the process-wide choice
// comes from the HARNESS_TIMING_MODE environment variable.
package timing

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// EnvMode is the environment variable that selects the process default profile.
const EnvMode = "HARNESS_TIMING_MODE"

// Mode names.
const (
	ModeDefault    = "default"
	ModeAggressive = "aggressive"
	ModeDebug      = "debug"
)

// Profile is a named bundle of sleeps and timeouts.
type Profile struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	// Event drain: markers posted per WaitForEvents call and the pause
	// after each one.
	DrainAttempts int           `yaml:"drain_attempts" json:"drain_attempts" mapstructure:"drain_attempts"`
	DrainSleep    time.Duration `yaml:"drain_sleep"    json:"drain_sleep"    mapstructure:"drain_sleep"`

	// Per-primitive timeouts.
	MouseTimeout    time.Duration `yaml:"mouse_timeout"    json:"mouse_timeout"    mapstructure:"mouse_timeout"`
	KeyboardTimeout time.Duration `yaml:"keyboard_timeout" json:"keyboard_timeout" mapstructure:"keyboard_timeout"`
	ClickTimeout    time.Duration `yaml:"click_timeout"    json:"click_timeout"    mapstructure:"click_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    json:"write_timeout"    mapstructure:"write_timeout"`

	// StrictTimeouts makes primitive timeouts returned errors instead of
	// logged-and-swallowed.
	StrictTimeouts bool `yaml:"strict_timeouts" json:"strict_timeouts" mapstructure:"strict_timeouts"`

	DoubleClickSleep   time.Duration `yaml:"double_click_sleep"   json:"double_click_sleep"   mapstructure:"double_click_sleep"`
	DoubleClickTimeout time.Duration `yaml:"double_click_timeout" json:"double_click_timeout" mapstructure:"double_click_timeout"`

	// WriteSleep is the pause after each injected character.
	WriteSleep time.Duration `yaml:"write_sleep" json:"write_sleep" mapstructure:"write_sleep"`

	// Pointer paths are split into clamp(distance, MinMoveSteps,
	// MaxMoveSteps) steps with MoveStepSleep after each.
	MoveStepSleep time.Duration `yaml:"move_step_sleep" json:"move_step_sleep" mapstructure:"move_step_sleep"`
	MinMoveSteps  int           `yaml:"min_move_steps"  json:"min_move_steps"  mapstructure:"min_move_steps"`
	MaxMoveSteps  int           `yaml:"max_move_steps"  json:"max_move_steps"  mapstructure:"max_move_steps"`

	// Lifecycle budgets; failures here are fatal to a run.
	LaunchTimeout time.Duration `yaml:"launch_timeout" json:"launch_timeout" mapstructure:"launch_timeout"`
	SetupTimeout  time.Duration `yaml:"setup_timeout"  json:"setup_timeout"  mapstructure:"setup_timeout"`

	// Condition waits.
	PollInterval  time.Duration `yaml:"poll_interval"  json:"poll_interval"  mapstructure:"poll_interval"`
	ConditionWait time.Duration `yaml:"condition_wait" json:"condition_wait" mapstructure:"condition_wait"`
	RenderPulses  int           `yaml:"render_pulses"  json:"render_pulses"  mapstructure:"render_pulses"`
}

// Default returns the profile used when nothing else is selected.
func Default() Profile {
	return Profile{
		Name:               ModeDefault,
		DrainAttempts:      5,
		DrainSleep:         10 * time.Millisecond,
		MouseTimeout:       5 * time.Second,
		KeyboardTimeout:    5 * time.Second,
		ClickTimeout:       5 * time.Second,
		WriteTimeout:       5 * time.Second,
		DoubleClickSleep:   50 * time.Millisecond,
		DoubleClickTimeout: 10 * time.Second,
		WriteSleep:         25 * time.Millisecond,
		MoveStepSleep:      time.Millisecond,
		MinMoveSteps:       1,
		MaxMoveSteps:       200,
		LaunchTimeout:      60 * time.Second,
		SetupTimeout:       30 * time.Second,
		PollInterval:       10 * time.Millisecond,
		ConditionWait:      5 * time.Second,
		RenderPulses:       2,
	}
}

// Aggressive trades realism for speed: shorter sleeps, fewer move steps.
func Aggressive() Profile {
	p := Default()
	p.Name = ModeAggressive
	p.DrainAttempts = 3
	p.DrainSleep = 2 * time.Millisecond
	p.DoubleClickSleep = 20 * time.Millisecond
	p.WriteSleep = 0
	p.MoveStepSleep = 0
	p.MaxMoveSteps = 20
	p.PollInterval = 5 * time.Millisecond
	return p
}

// Debug slows everything down so a human can follow the input on screen.
func Debug() Profile {
	p := Default()
	p.Name = ModeDebug
	p.DrainAttempts = 8
	p.DrainSleep = 50 * time.Millisecond
	p.MouseTimeout = 30 * time.Second
	p.KeyboardTimeout = 30 * time.Second
	p.ClickTimeout = 30 * time.Second
	p.WriteTimeout = 30 * time.Second
	p.DoubleClickSleep = 200 * time.Millisecond
	p.DoubleClickTimeout = 60 * time.Second
	p.WriteSleep = 100 * time.Millisecond
	p.MoveStepSleep = 5 * time.Millisecond
	p.PollInterval = 50 * time.Millisecond
	p.ConditionWait = 30 * time.Second
	return p
}

var profiles = map[string]func() Profile{
	ModeDefault:    Default,
	ModeAggressive: Aggressive,
	ModeDebug:      Debug,
}

// Modes returns the recognised profile names in sorted order.
func Modes() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForMode returns the named profile. The empty string selects default.
func ForMode(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default(), nil
	}
	ctor, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown timing mode: %q (expected %s)", name, strings.Join(Modes(), ", "))
	}
	return ctor(), nil
}

// FromEnv returns the profile selected by HARNESS_TIMING_MODE.
func FromEnv() (Profile, error) {
	return ForMode(os.Getenv(EnvMode))
}

// Validate reports the first setting that would make a component misbehave.
func (p Profile) Validate() error {
	switch {
	case p.DrainAttempts < 1:
		return fmt.Errorf("timing %s: drain_attempts must be at least 1, got %d", p.Name, p.DrainAttempts)
	case p.MinMoveSteps < 1:
		return fmt.Errorf("timing %s: min_move_steps must be at least 1, got %d", p.Name, p.MinMoveSteps)
	case p.MaxMoveSteps < p.MinMoveSteps:
		return fmt.Errorf("timing %s: max_move_steps (%d) below min_move_steps (%d)", p.Name, p.MaxMoveSteps, p.MinMoveSteps)
	case p.LaunchTimeout <= 0 || p.SetupTimeout <= 0:
		return fmt.Errorf("timing %s: launch_timeout and setup_timeout must be positive", p.Name)
	case p.PollInterval <= 0:
		return fmt.Errorf("timing %s: poll_interval must be positive", p.Name)
	}
	return nil
}
