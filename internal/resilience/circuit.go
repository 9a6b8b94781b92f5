package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state. The numeric value is what the
// breaker_state gauge reports.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen lets a single probe through to decide recovery.
	HalfOpen
)

var stateNames = [...]string{Closed: "closed", Open: "open", HalfOpen: "half_open"}

func (s State) String() string { return stateNames[s] }

// BreakerConfig configures a Breaker guarding one upstream.
type BreakerConfig struct {
	// Target labels metrics and logs, e.g. "razorpay".
	Target       string
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
	// Healthy decides whether a call outcome counts towards recovery. An
	// upstream that answered with a client error is healthy even though the
	// call failed. Defaults to err == nil.
	Healthy func(error) bool
	Logger  *zerolog.Logger
}

// Breaker opens when the failure ratio over at least MinRequests calls
// reaches FailureRatio, rejects calls for OpenFor and then admits one probe.
type Breaker struct {
	cfg BreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

// NewBreaker builds a closed breaker, filling zero config fields with defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg.Target = strings.TrimSpace(cfg.Target)
	if cfg.Target == "" {
		cfg.Target = "default"
	}
	if cfg.MinRequests <= 0 {
		cfg.MinRequests = 1
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.5
	}
	cfg.FailureRatio = math.Min(cfg.FailureRatio, 1)
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}
	if cfg.Healthy == nil {
		cfg.Healthy = func(err error) bool { return err == nil }
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	b := &Breaker{cfg: cfg, state: Closed}
	b.recordState()
	return b
}

// Target returns the upstream label.
func (b *Breaker) Target() string { return b.cfg.Target }

// Allow reports whether a call may proceed. Once the cool-off has elapsed the
// breaker moves to half-open and admits exactly one probe until it reports.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Since(b.openedAt) < b.cfg.OpenFor {
			return false
		}
		b.transition(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// State returns the effective state without transitioning. An open breaker
// whose cool-off has elapsed reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && time.Since(b.openedAt) >= b.cfg.OpenFor {
		return HalfOpen
	}
	return b.state
}

// Record classifies err with the configured Healthy func and reports it.
func (b *Breaker) Record(ctx context.Context, err error) {
	b.Report(ctx, b.cfg.Healthy(err))
}

// Report records the outcome of an admitted call.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.transition(ctx, Closed)
		} else {
			b.transition(ctx, Open)
		}
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	if total < b.cfg.MinRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.cfg.FailureRatio {
		b.transition(ctx, Open)
		return
	}
	if total > b.cfg.MinRequests*2 {
		// halve the sample so old outcomes fade
		b.successes = (b.successes + 1) / 2
		b.failures = (b.failures + 1) / 2
	}
}

func (b *Breaker) transition(ctx context.Context, next State) {
	prev := b.state
	b.state = next
	b.failures, b.successes = 0, 0
	switch next {
	case Open:
		b.openedAt = time.Now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.recordState()

	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(b.cfg.Target, prev.String(), next.String()).Inc()
	}
	if next == Open && BreakerOpenedTotal != nil {
		BreakerOpenedTotal.WithLabelValues(b.cfg.Target).Inc()
	}

	evt := b.cfg.Logger.Warn()
	if next == Closed {
		evt = b.cfg.Logger.Info()
	}
	evt.Ctx(ctx).
		Str("target", b.cfg.Target).
		Str("from_state", prev.String()).
		Str("to_state", next.String()).
		Msg("breaker_transition")
}

func (b *Breaker) recordState() {
	if BreakerState == nil {
		return
	}
	BreakerState.WithLabelValues(b.cfg.Target).Set(float64(b.state))
}

// Backoff returns an exponential backoff duration for the provided attempt.
// Jitter is expressed as a fraction (e.g. 0.2 == 20%).
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitterPct <= 0 {
		return d
	}
	jitter := float64(d) * jitterPct
	delta := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(delta)
}
