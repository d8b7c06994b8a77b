package platform

import (
	"errors"
	"sync"
	"time"
)

// breakerState is the state of a connection breaker.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = 30 * time.Second
)

// errBreakerOpen is returned instead of running a command while the
// breaker is open.
var errBreakerOpen = errors.New("remote host unreachable, not retrying yet")

// breaker stops sending commands to a remote host after consecutive
// transport failures. With a dead link, one fact pays the command timeout
// and the rest fail at once. After the cooldown a single trial command is
// let through; its outcome closes or reopens the breaker.
type breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	trial    bool
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// allow reports whether a command may run now.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
		b.trial = true
		return true
	case breakerHalfOpen:
		// Only the one trial command runs until it reports back.
		if b.trial {
			return false
		}
		b.trial = true
		return true
	default:
		return true
	}
}

// record reports the outcome of a command that allow let through.
// transportFailed is true when the link itself failed, as opposed to the
// command exiting non-zero.
func (b *breaker) record(transportFailed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !transportFailed {
		b.state = breakerClosed
		b.failures = 0
		b.trial = false
		return
	}

	b.failures++
	if b.state == breakerHalfOpen || b.failures >= b.threshold {
		b.state = breakerOpen
		b.openedAt = b.now()
		b.trial = false
	}
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
