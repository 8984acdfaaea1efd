package timing

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ApplyOverrides decodes a YAML document of profile fields over p.
// Durations may be written as strings ("15ms") or integer nanoseconds.
// Fields not named in the document keep their current values.
func ApplyOverrides(p Profile, data []byte) (Profile, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return p, fmt.Errorf("timing overrides: %w", err)
	}
	if len(raw) == 0 {
		return p, nil
	}

	out := p
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return p, fmt.Errorf("timing overrides: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("timing overrides: %w", err)
	}
	if err := out.Validate(); err != nil {
		return p, err
	}
	return out, nil
}

// LoadOverrides reads a YAML override file and applies it to p.
func LoadOverrides(p Profile, path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read timing overrides: %w", err)
	}
	return ApplyOverrides(p, data)
}
