package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/diag"
	"github.com/mj1618/desktop-harness/internal/lifecycle"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/robot"
	"github.com/mj1618/desktop-harness/internal/timing"
)

// Metrics is what a session reports to; metrics.Exporter implements it.
type Metrics interface {
	async.Metrics
	robot.Metrics
}

// Env is what a scenario runs against.
type Env struct {
	Toolkit  platform.Toolkit
	Injector platform.Injector
	Actions  ActionBinder // optional; without it on_click is ignored

	// Profile overrides the script's timing mode when set.
	Profile *timing.Profile

	Logger        *slog.Logger
	Metrics       Metrics
	ScreenshotDir string // failure screenshots are skipped when empty
	BridgeOptions []async.Option
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int           `yaml:"index"           json:"index"`
	Step     string        `yaml:"step"            json:"step"`
	OK       bool          `yaml:"ok"              json:"ok"`
	Error    string        `yaml:"error,omitempty" json:"error,omitempty"`
	Duration time.Duration `yaml:"duration"        json:"duration"`
}

// Session is a set-up scene with a robot driving it.
type Session struct {
	Script     *Script
	Bridge     *async.Bridge
	Controller *lifecycle.Controller
	Robot      *robot.Robot
	Recorder   *diag.Recorder
	Enricher   *diag.Enricher
	Window     *model.Window

	env    Env
	logger *slog.Logger
}

// Profile resolves the timing profile for script: env override first,
// then the script's mode (or HARNESS_TIMING_MODE), then its overrides.
func Profile(env Env, script *Script) (timing.Profile, error) {
	var (
		p   timing.Profile
		err error
	)
	switch {
	case env.Profile != nil:
		p = *env.Profile
	case script.Timing != "":
		p, err = timing.ForMode(script.Timing)
	default:
		p, err = timing.FromEnv()
	}
	if err != nil {
		return p, err
	}
	if len(script.TimingOverride) > 0 {
		data, err := yaml.Marshal(script.TimingOverride)
		if err != nil {
			return p, fmt.Errorf("timing overrides: %w", err)
		}
		return timing.ApplyOverrides(p, data)
	}
	return p, nil
}

// Setup starts the toolkit, builds the scene and returns a session ready
// to run steps.
func Setup(ctx context.Context, env Env, script *Script) (*Session, error) {
	profile, err := Profile(env, script)
	if err != nil {
		return nil, err
	}
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("scenario", script.Name)

	aggOpts := []async.AggregatorOption{async.WithAggregatorLogger(logger)}
	opts := append(async.EnvOptions(), async.WithLogger(logger))
	if env.Metrics != nil {
		aggOpts = append(aggOpts, async.WithAggregatorMetrics(env.Metrics))
		opts = append(opts, async.WithMetrics(env.Metrics))
	}
	opts = append(opts, async.WithAggregator(async.AggregatorFromEnv(aggOpts...)))
	opts = append(opts, env.BridgeOptions...)
	bridge := async.NewBridge(env.Toolkit, profile, opts...)

	bounds, err := toBounds(script.Window.Bounds)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	if bounds.Empty() {
		bounds = platform.Bounds{Width: 800, Height: 600}
	}
	ctrl := lifecycle.New(env.Toolkit, bridge,
		lifecycle.WithLogger(logger),
		lifecycle.WithPrimaryWindow(script.Window.Title, bounds))
	rec := diag.NewRecorder(bridge, env.Toolkit, 64)
	rec.Attach(ctrl)

	robotOpts := []robot.Option{robot.WithLogger(logger)}
	if env.Metrics != nil {
		robotOpts = append(robotOpts, robot.WithMetrics(env.Metrics))
	}
	r := robot.New(bridge, env.Injector, env.Toolkit, robotOpts...)

	fragments := []diag.Fragment{
		diag.HeldInputs(r),
		diag.RecordedEvents(rec, 20),
		diag.SceneDump(bridge, env.Toolkit),
	}
	if env.ScreenshotDir != "" {
		fragments = append(fragments, diag.Screenshot(r, env.ScreenshotDir))
	}

	s := &Session{
		Script:     script,
		Bridge:     bridge,
		Controller: ctrl,
		Robot:      r,
		Recorder:   rec,
		Enricher:   diag.NewEnricher(fragments...),
		env:        env,
		logger:     logger,
	}

	w, err := ctrl.RegisterPrimary(ctx)
	if err != nil {
		return nil, err
	}
	s.Window = w
	err = ctrl.SetupRoot(func() (*model.Node, error) {
		children, err := buildNodes(script.Scene, bounds)
		if err != nil {
			return nil, err
		}
		root := model.NewNode(model.RoleGroup, "root")
		root.Bounds = bounds.Array()
		root.Add(children...)
		if env.Actions != nil {
			if err := bindActions(env.Actions, root, script.Scene, env.Toolkit.Post); err != nil {
				return nil, err
			}
		}
		return root, nil
	})
	if err != nil {
		return nil, fmt.Errorf("setup scene: %w", err)
	}
	logger.Info("scenario ready", "window", w.Title, "steps", len(script.Steps), "timing", profile.Name)
	return s, nil
}

// Run executes the script's steps, stopping at the first failure.
func (s *Session) Run(ctx context.Context) ([]StepResult, error) {
	results := make([]StepResult, 0, len(s.Script.Steps))
	for i, step := range s.Script.Steps {
		res, err := s.Do(ctx, step)
		res.Index = i + 1
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	if err := s.Bridge.CheckException(); err != nil {
		return results, s.Enricher.Enrich(err)
	}
	return results, nil
}

// Do runs a single step. A failure is enriched with diagnostics.
func (s *Session) Do(ctx context.Context, step Step) (StepResult, error) {
	start := time.Now()
	err := s.exec(ctx, step)
	res := StepResult{Step: step.String(), OK: err == nil, Duration: time.Since(start)}
	if err != nil {
		err = s.Enricher.Enrich(err)
		res.Error = err.Error()
		s.logger.Warn("step failed", "step", res.Step, "error", errors.Unwrap(err))
		return res, err
	}
	s.logger.Debug("step done", "step", res.Step, "duration", res.Duration)
	return res, nil
}

// Close releases held input and hides the windows. The toolkit keeps
// running; stopping it is up to the caller.
func (s *Session) Close() error {
	return errors.Join(s.Robot.ReleaseAll(), s.Recorder.Close(), s.Controller.Cleanup())
}

// Run sets script up in env, runs it and cleans up.
func Run(ctx context.Context, env Env, script *Script) ([]StepResult, error) {
	s, err := Setup(ctx, env, script)
	if err != nil {
		return nil, err
	}
	results, err := s.Run(ctx)
	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return results, err
}
