package generative

import (
	"fmt"

	"github.com/rs/zerolog"

	"medreport/internal/config"
	"medreport/internal/port"
)

// ProviderFactory creates a Completer from a provider config.
type ProviderFactory func(cfg *config.GenerativeProviderConfig) (port.Completer, error)

// registry of provider factories, populated explicitly via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a Completer from a provider config using the registered factory.
func NewCompleter(cfg *config.GenerativeProviderConfig) (port.Completer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generative provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the provider chain described by cfg. A single provider is returned
// as is, several are wrapped in a ProviderChain. It returns nil, nil when no provider
// is configured.
func NewFromConfig(cfg *config.GenerativeConfig, logger zerolog.Logger) (port.Completer, error) {
	configs := cfg.ProviderConfigs()
	if len(configs) == 0 {
		return nil, nil
	}

	chain := make([]NamedCompleter, 0, len(configs))
	for _, pc := range configs {
		c, err := NewCompleter(pc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, NamedCompleter{Name: pc.Provider, Completer: c})
	}
	if len(chain) == 1 {
		return chain[0].Completer, nil
	}
	return NewProviderChain(chain, logger), nil
}
