package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sms-relay/pkg/circuitbreaker"
	"sms-relay/pkg/metrics"
)

// Sender delivers one text message to one destination number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Func adapts a plain function to a Sender.
type Func func(ctx context.Context, to, body string) error

func (f Func) Send(ctx context.Context, to, body string) error {
	return f(ctx, to, body)
}

// Dispatcher wraps a provider Sender with a per-call timeout, retry with
// exponential backoff, a circuit breaker, and send metrics. It is itself a
// Sender, so the services never see the provider directly.
type Dispatcher struct {
	provider Sender
	name     string
	breaker  *circuitbreaker.Breaker
	logger   *slog.Logger

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

type DispatcherConfig struct {
	Name       string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func NewDispatcher(provider Sender, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Name == "" {
		cfg.Name = "provider"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}

	return &Dispatcher{
		provider: provider,
		name:     cfg.Name,
		logger:   logger,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 3,
			SuccessThreshold: 2,
			OpenTimeout:      5 * time.Second,
		}),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
}

func (d *Dispatcher) Send(ctx context.Context, to, body string) error {
	if err := d.breaker.Allow(); err != nil {
		return fmt.Errorf("%s: %w", d.name, err)
	}

	var lastErr error
	backoff := d.backoff

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := metrics.SendObserver(d.name, func(c context.Context) error {
			return d.provider.Send(c, to, body)
		})(sendCtx)
		cancel()

		if err == nil {
			d.breaker.MarkSuccess()
			return nil
		}

		lastErr = err
		d.breaker.MarkFailure()
		d.logger.Warn("send attempt failed", "provider", d.name, "attempt", attempt, "err", err)

		if attempt == d.maxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
