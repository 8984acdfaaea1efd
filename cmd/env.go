package cmd

import (
	"fmt"

	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/scenario"
)

// newEnv creates a toolkit from the registered backend and wraps it in a
// scenario environment. The caller stops the returned toolkit.
func newEnv() (scenario.Env, platform.Toolkit, error) {
	profile, err := profileOverride()
	if err != nil {
		return scenario.Env{}, nil, err
	}
	provider, err := platform.NewProvider(platform.ProviderOptions{Logger: logger})
	if err != nil {
		return scenario.Env{}, nil, fmt.Errorf("failed to create toolkit: %w", err)
	}
	env := scenario.Env{
		Toolkit:  provider.Toolkit,
		Injector: provider.Injector,
		Profile:  profile,
		Logger:   logger,
	}
	if binder, ok := provider.Toolkit.(scenario.ActionBinder); ok {
		env.Actions = binder
	}
	return env, provider.Toolkit, nil
}
