package sim

import "github.com/mj1618/desktop-harness/internal/platform"

func init() {
	platform.NewProviderFunc = func(opts platform.ProviderOptions) (*platform.Provider, error) {
		tk := New(
			WithLogger(opts.Logger),
			WithPulseInterval(opts.PulseInterval),
			WithLaunchDelay(opts.LaunchDelay),
		)
		return &platform.Provider{Toolkit: tk, Injector: tk}, nil
	}
}
