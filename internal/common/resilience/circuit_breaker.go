package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/clock"
	commonerrors "github.com/AlibekovAA/smalltalk-feed/internal/common/errors"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/observability/metrics"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker fails fast after Threshold consecutive failures. Once
// ResetAfter has elapsed a single trial call is let through; its outcome
// closes or reopens the circuit.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	trialActive bool

	name       string
	threshold  int
	timeout    time.Duration
	resetAfter time.Duration
	clock      clock.Clock
	log        *logger.Logger
}

type CircuitBreakerConfig struct {
	Name       string
	Threshold  int
	Timeout    time.Duration
	ResetAfter time.Duration
	Clock      clock.Clock
	Logger     *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Threshold <= 0 {
		config.Threshold = 1
	}
	if config.Clock == nil {
		config.Clock = clock.NewRealClock()
	}
	cb := &CircuitBreaker{
		name:       config.Name,
		threshold:  config.Threshold,
		timeout:    config.Timeout,
		resetAfter: config.ResetAfter,
		clock:      config.Clock,
		log:        config.Logger,
	}
	cb.publishState(StateClosed)
	return cb
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allow() {
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	// A caller giving up says nothing about the dependency's health.
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		cb.release()
		return err
	}
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.clock.Now().Sub(cb.openedAt) < cb.resetAfter {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.trialActive = true
		return true
	default:
		if cb.trialActive {
			return false
		}
		cb.trialActive = true
		return true
	}
}

func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	cb.trialActive = false
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trialActive = false
	if err == nil {
		cb.failures = 0
		if cb.state != StateClosed {
			cb.setState(StateClosed)
		}
		return
	}

	cb.failures++
	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}

	if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
		if cb.state != StateOpen && cb.log != nil {
			cb.log.Warnf("circuit breaker [%s]: opening after %d failures: %v", cb.name, cb.failures, err)
		}
		cb.openedAt = cb.clock.Now()
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) setState(s State) {
	cb.state = s
	cb.publishState(s)
}

func (cb *CircuitBreaker) publishState(s State) {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(float64(s))
	}
}
