package platform

import (
	"errors"
	"log/slog"
	"time"
)

// Provider bundles the backends of one toolkit.
type Provider struct {
	Toolkit  Toolkit
	Injector Injector
}

// ProviderOptions are passed through to the registered backend.
type ProviderOptions struct {
	Logger        *slog.Logger
	PulseInterval time.Duration
	LaunchDelay   time.Duration
}

// ErrUnsupported is returned when no toolkit backend has been linked in.
var ErrUnsupported = errors.New("no toolkit backend registered; import internal/platform/sim")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/sim/init.go for the simulated toolkit.
var NewProviderFunc func(opts ProviderOptions) (*Provider, error)

// NewProvider returns a Provider from the registered backend.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
