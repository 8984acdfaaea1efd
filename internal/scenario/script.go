// Package scenario runs scripted gestures and expectations against a
// scene described in YAML.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrUnknownStep is returned for a step whose kind is not recognised.
var ErrUnknownStep = errors.New("unknown step kind")

// Step kinds.
const (
	KindClick       = "click"
	KindDoubleClick = "double_click"
	KindMove        = "move"
	KindDrag        = "drag"
	KindType        = "type"
	KindPush        = "push"
	KindWrite       = "write"
	KindScroll      = "scroll"
	KindSleep       = "sleep"
	KindWait        = "wait"
	KindExpect      = "expect"
)

var stepKinds = map[string]bool{
	KindClick: true, KindDoubleClick: true, KindMove: true, KindDrag: true,
	KindType: true, KindPush: true, KindWrite: true, KindScroll: true,
	KindSleep: true, KindWait: true, KindExpect: true,
}

// Script is a parsed scenario file.
type Script struct {
	Name           string                 `yaml:"name"`
	Timing         string                 `yaml:"timing,omitempty"`
	TimingOverride map[string]interface{} `yaml:"timing_overrides,omitempty"`
	Window         WindowSpec             `yaml:"window"`
	Scene          []NodeSpec             `yaml:"scene"`
	Steps          []Step                 `yaml:"-"`
}

// WindowSpec describes the primary window.
type WindowSpec struct {
	Title  string `yaml:"title"  mapstructure:"title"`
	Bounds []int  `yaml:"bounds" mapstructure:"bounds"`
}

// NodeSpec describes one node of the scene and its children.
type NodeSpec struct {
	Role     string     `yaml:"role"               mapstructure:"role"`
	ID       string     `yaml:"id,omitempty"       mapstructure:"id"`
	Text     string     `yaml:"text,omitempty"     mapstructure:"text"`
	Classes  []string   `yaml:"classes,omitempty"  mapstructure:"classes"`
	Bounds   []int      `yaml:"bounds"             mapstructure:"bounds"`
	Hidden   bool       `yaml:"hidden,omitempty"   mapstructure:"hidden"`
	Disabled bool       `yaml:"disabled,omitempty" mapstructure:"disabled"`
	OnClick  *Action    `yaml:"on_click,omitempty" mapstructure:"on_click"`
	Children []NodeSpec `yaml:"children,omitempty" mapstructure:"children"`
}

// Action changes another node when a button fires.
type Action struct {
	Target  string        `yaml:"target"             mapstructure:"target"`
	SetText *string       `yaml:"set_text,omitempty" mapstructure:"set_text"`
	Hide    bool          `yaml:"hide,omitempty"     mapstructure:"hide"`
	Show    bool          `yaml:"show,omitempty"     mapstructure:"show"`
	Delay   time.Duration `yaml:"delay,omitempty"    mapstructure:"delay"`
}

// Step is one scripted action. Which fields apply depends on Kind.
type Step struct {
	Kind string `mapstructure:"-"`

	Target    string        `mapstructure:"target"`
	To        string        `mapstructure:"to"`
	Pos       string        `mapstructure:"pos"`
	Offset    []float64     `mapstructure:"offset"`
	Motion    string        `mapstructure:"motion"`
	Button    string        `mapstructure:"button"`
	Keys      []string      `mapstructure:"keys"`
	Combo     string        `mapstructure:"combo"`
	Times     int           `mapstructure:"times"`
	Text      string        `mapstructure:"text"`
	Amount    int           `mapstructure:"amount"`
	Direction string        `mapstructure:"direction"`
	Duration  time.Duration `mapstructure:"duration"`
	Timeout   time.Duration `mapstructure:"timeout"`

	Expectation `mapstructure:",squash"`
}

// Expectation is checked by wait and expect steps. Unset fields are not
// checked; with nothing set the target only has to be visible.
type Expectation struct {
	HasText  *string `mapstructure:"has_text"`
	Contains *string `mapstructure:"contains"`
	Visible  *bool   `mapstructure:"visible"`
	Enabled  *bool   `mapstructure:"enabled"`
	Focused  *bool   `mapstructure:"focused"`
	Children *int    `mapstructure:"children"`
	Role     string  `mapstructure:"role"`
	Class    string  `mapstructure:"class"`
}

func (s Step) String() string {
	parts := []string{s.Kind}
	for _, v := range []string{s.Target, s.To, s.Combo, s.Text} {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%q", v))
		}
	}
	if len(s.Keys) > 0 {
		parts = append(parts, strings.Join(s.Keys, " "))
	}
	if s.Duration > 0 {
		parts = append(parts, s.Duration.String())
	}
	return strings.Join(parts, " ")
}

// rawScript mirrors Script with steps left undecoded.
type rawScript struct {
	Name           string                   `yaml:"name"`
	Timing         string                   `yaml:"timing"`
	TimingOverride map[string]interface{}   `yaml:"timing_overrides"`
	Window         WindowSpec               `yaml:"window"`
	Scene          []NodeSpec               `yaml:"scene"`
	Steps          []map[string]interface{} `yaml:"steps"`
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Script, error) {
	var raw rawScript
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	s := &Script{
		Name:           raw.Name,
		Timing:         raw.Timing,
		TimingOverride: raw.TimingOverride,
		Window:         raw.Window,
		Scene:          raw.Scene,
	}
	if s.Window.Title == "" {
		s.Window.Title = s.Name
	}
	for i, m := range raw.Steps {
		step, err := decodeStep(m)
		if err != nil {
			return nil, fmt.Errorf("parse scenario: step %d: %w", i+1, err)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// ParseStep decodes a single step given as {kind: value}.
func ParseStep(data []byte) (Step, error) {
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Step{}, fmt.Errorf("parse step: %w", err)
	}
	return decodeStep(m)
}

func decodeStep(m map[string]interface{}) (Step, error) {
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Step{}, fmt.Errorf("a step has exactly one kind, got %v", keys)
	}
	var kind string
	var value interface{}
	for k, v := range m {
		kind, value = k, v
	}
	if !stepKinds[kind] {
		return Step{}, fmt.Errorf("%w: %q", ErrUnknownStep, kind)
	}

	step := Step{Kind: kind}
	switch v := value.(type) {
	case nil:
	case string:
		if err := step.shorthand(v); err != nil {
			return Step{}, err
		}
	case map[string]interface{}:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &step,
		})
		if err != nil {
			return Step{}, err
		}
		if err := dec.Decode(v); err != nil {
			return Step{}, fmt.Errorf("%s: %w", kind, err)
		}
	default:
		return Step{}, fmt.Errorf("%s: unsupported value %v", kind, value)
	}
	if err := step.validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}

// shorthand fills the step's main field from a plain string value.
func (s *Step) shorthand(v string) error {
	switch s.Kind {
	case KindPush:
		s.Combo = v
	case KindType:
		s.Keys = strings.Fields(v)
	case KindWrite:
		s.Text = v
	case KindSleep:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("sleep: %w", err)
		}
		s.Duration = d
	case KindScroll:
		s.Direction = v
	default:
		s.Target = v
	}
	return nil
}

func (s Step) validate() error {
	switch s.Kind {
	case KindDrag:
		if s.Target == "" || (s.To == "" && len(s.Offset) == 0) {
			return fmt.Errorf("drag needs target and either to or offset")
		}
	case KindType:
		if len(s.Keys) == 0 {
			return fmt.Errorf("type needs keys")
		}
	case KindPush:
		if s.Combo == "" && len(s.Keys) == 0 {
			return fmt.Errorf("push needs combo or keys")
		}
	case KindWait, KindExpect:
		if s.Target == "" {
			return fmt.Errorf("%s needs a target", s.Kind)
		}
	case KindMove:
		if s.Target == "" && len(s.Offset) == 0 {
			return fmt.Errorf("move needs target or offset")
		}
	}
	if len(s.Offset) != 0 && len(s.Offset) != 2 {
		return fmt.Errorf("%s: offset must be [dx, dy]", s.Kind)
	}
	return nil
}
