package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerProvider wraps an LLMProvider with circuit breaker protection.
// When the wrapped provider fails repeatedly, the circuit opens and subsequent
// calls fail fast without reaching the provider, preventing retry storms.
type CircuitBreakerProvider struct {
	inner   domain.LLMProvider
	breaker *gobreaker.CircuitBreaker[*domain.ChatResponse]
	logger  *slog.Logger
}

// NewCircuitBreakerProvider wraps inner with a circuit breaker.
// Zero-valued settings fall back to defaults.
func NewCircuitBreakerProvider(inner domain.LLMProvider, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	name := inner.Name()
	cb := gobreaker.NewCircuitBreaker[*domain.ChatResponse](gobreaker.Settings{
		Name:        "llm:" + name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &CircuitBreakerProvider{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// Chat implements domain.LLMProvider. Calls are routed through the circuit breaker.
func (p *CircuitBreakerProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	resp, err := p.breaker.Execute(func() (*domain.ChatResponse, error) {
		return p.inner.Chat(ctx, req)
	})
	if err != nil {
		// Wrap circuit breaker errors with provider context.
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("provider %q circuit open: %w", p.inner.Name(), err)
		}
		return nil, err
	}
	return resp, nil
}

// Name implements domain.LLMProvider.
func (p *CircuitBreakerProvider) Name() string { return p.inner.Name() }

// State returns the current circuit breaker state for monitoring.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.breaker.State()
}

// Counts returns the current circuit breaker failure/success counts.
func (p *CircuitBreakerProvider) Counts() gobreaker.Counts {
	return p.breaker.Counts()
}

// Compile-time interface check.
var _ domain.LLMProvider = (*CircuitBreakerProvider)(nil)
