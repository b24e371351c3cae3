package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the breaker rejects calls.
var ErrOpen = errors.New("breaker: open")

type state int

const (
	closed state = iota
	open
	halfOpen
)

// Breaker stops calling a failing sink after threshold consecutive failures
// and lets a single probe through once openFor has elapsed.
type Breaker struct {
	mu               sync.Mutex
	st               state
	consecutiveFails int
	failThreshold    int
	openFor          time.Duration
	nextTryAt        time.Time
	probeInFlight    bool
	now              func() time.Time
}

func New(threshold int, openFor time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &Breaker{failThreshold: threshold, openFor: openFor, now: time.Now}
}

// Do runs fn when the breaker allows it and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	if !b.tryAcquire() {
		return ErrOpen
	}
	if err := fn(); err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

// Open reports whether calls are currently rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case open:
		return !b.now().After(b.nextTryAt) || b.probeInFlight
	case halfOpen:
		return b.probeInFlight
	default:
		return false
	}
}

func (b *Breaker) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case open:
		if b.now().After(b.nextTryAt) && !b.probeInFlight {
			b.st = halfOpen
			b.probeInFlight = true
			return true
		}
		return false
	case halfOpen:
		if !b.probeInFlight {
			b.probeInFlight = true
			return true
		}
		return false
	default:
		return true
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	b.consecutiveFails = 0
	b.st = closed
	b.probeInFlight = false
	b.mu.Unlock()
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st == halfOpen {
		b.st = open
		b.nextTryAt = b.now().Add(b.openFor)
		b.probeInFlight = false
		return
	}

	b.consecutiveFails++
	if b.consecutiveFails >= b.failThreshold {
		b.st = open
		b.nextTryAt = b.now().Add(b.openFor)
	}
}
