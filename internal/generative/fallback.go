package generative

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medreport/internal/port"
)

var errAllRateLimited = errors.New("all providers rate limited")

// NamedCompleter pairs a provider with the name used in logs.
type NamedCompleter struct {
	Name      string
	Completer port.Completer
}

// ProviderChain implements port.Completer over an ordered list of providers. The first
// provider that answers wins. A provider that answers with a RateLimitError is paused
// until its retry time and skipped while paused. Providers sharing a name share a pause.
type ProviderChain struct {
	providers []NamedCompleter
	logger    zerolog.Logger

	mu          sync.Mutex
	pausedUntil map[string]time.Time
}

// NewProviderChain creates a chain trying providers in order.
func NewProviderChain(providers []NamedCompleter, logger zerolog.Logger) *ProviderChain {
	return &ProviderChain{
		providers:   providers,
		logger:      logger.With().Str("component", "generative.chain").Logger(),
		pausedUntil: make(map[string]time.Time),
	}
}

// Complete asks each available provider in turn. When every provider is rate limited or
// paused the error is a RateLimitError for "all" carrying the shortest remaining wait.
func (c *ProviderChain) Complete(ctx context.Context, req port.CompletionRequest) (*port.Completion, error) {
	var (
		resume  time.Time
		hardErr error
	)
	for _, p := range c.providers {
		if until, ok := c.paused(p.Name); ok {
			c.logger.Debug().Str("provider", p.Name).Time("paused_until", until).Msg("provider paused")
			resume = earlier(resume, until)
			continue
		}

		out, err := p.Completer.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("completion aborted at %s: %w", p.Name, ctxErr)
		}
		c.logger.Warn().Err(err).Str("provider", p.Name).Msg("provider failed")

		var rl *RateLimitError
		if errors.As(err, &rl) {
			resume = earlier(resume, c.pause(p.Name, rl.RetryAfter))
			continue
		}
		hardErr = fmt.Errorf("%s: %w", p.Name, err)
	}

	if hardErr != nil {
		return nil, fmt.Errorf("all providers failed: %w", hardErr)
	}
	wait := int(math.Ceil(time.Until(resume).Seconds()))
	if wait < 1 {
		wait = 1
	}
	return nil, NewRateLimitError("all", errAllRateLimited, wait)
}

func (c *ProviderChain) paused(name string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.pausedUntil[name]
	if !ok {
		return time.Time{}, false
	}
	if !time.Now().Before(until) {
		delete(c.pausedUntil, name)
		return time.Time{}, false
	}
	return until, true
}

func (c *ProviderChain) pause(name string, d time.Duration) time.Time {
	until := time.Now().Add(d)
	c.mu.Lock()
	c.pausedUntil[name] = until
	c.mu.Unlock()
	return until
}

// earlier returns the earlier of a and b, treating the zero time as unset.
func earlier(a, b time.Time) time.Time {
	if a.IsZero() || b.Before(a) {
		return b
	}
	return a
}
