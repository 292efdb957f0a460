package collab

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"talentloop/internal/logging"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// String returns string representation of CircuitState
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// hostLimiter tracks rate limiting state for one collaborator host
type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	failures int64
}

// circuitBreaker trips a collaborator host after repeated failures
type circuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	failureCount int
	lastFailTime time.Time
	state        CircuitState
}

// Guard protects outbound collaborator calls with per-host rate limiting and
// circuit breaking. Calls are never queued; a denied call fails fast and the
// caller surfaces the error.
type Guard struct {
	ratePerMinute int
	limiters      map[string]*hostLimiter
	breakers      map[string]*circuitBreaker
	mu            sync.Mutex
	logger        logging.Logger
}

// NewGuard creates a new outbound call guard. ratePerMinute applies per host.
func NewGuard(ratePerMinute int) *Guard {
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}
	return &Guard{
		ratePerMinute: ratePerMinute,
		limiters:      make(map[string]*hostLimiter),
		breakers:      make(map[string]*circuitBreaker),
		logger:        logging.GetGlobalLogger().WithField("component", "collab_guard"),
	}
}

// Allow reports whether a request to the given host may proceed
func (g *Guard) Allow(host string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	host = strings.ToLower(host)

	cb := g.getBreaker(host)
	if !g.breakerAllows(cb) {
		g.logger.Debug("Request rejected by circuit breaker", map[string]interface{}{"host": host})
		return fmt.Errorf("circuit breaker open for %s", host)
	}

	hl := g.getLimiter(host)
	if !hl.limiter.Allow() {
		g.logger.Debug("Request rejected by rate limiter", map[string]interface{}{"host": host})
		return fmt.Errorf("rate limit exceeded for %s", host)
	}

	hl.requests++
	hl.lastSeen = time.Now()
	return nil
}

// RecordSuccess records a successful request for the host
func (g *Guard) RecordSuccess(host string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	host = strings.ToLower(host)
	if cb, exists := g.breakers[host]; exists {
		if cb.state == CircuitHalfOpen {
			cb.state = CircuitClosed
			cb.failureCount = 0
			g.logger.Info("Circuit breaker closed after successful request", map[string]interface{}{"host": host})
		}
	}
}

// RecordFailure records a failed request for the host
func (g *Guard) RecordFailure(host string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	host = strings.ToLower(host)
	if hl, exists := g.limiters[host]; exists {
		hl.failures++
	}

	cb := g.getBreaker(host)
	cb.failureCount++
	cb.lastFailTime = time.Now()

	if cb.failureCount >= cb.maxFailures && cb.state == CircuitClosed {
		cb.state = CircuitOpen
		g.logger.Warn("Circuit breaker opened due to failures", map[string]interface{}{
			"host":     host,
			"failures": cb.failureCount,
			"error":    err.Error(),
		})
	}
}

// Stats returns request/failure counters and breaker state per host
func (g *Guard) Stats() map[string]map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := make(map[string]map[string]interface{})
	for host, hl := range g.limiters {
		stats[host] = map[string]interface{}{
			"requests":  hl.requests,
			"failures":  hl.failures,
			"last_seen": hl.lastSeen,
		}
	}
	for host, cb := range g.breakers {
		if _, ok := stats[host]; !ok {
			stats[host] = make(map[string]interface{})
		}
		stats[host]["circuit_state"] = cb.state.String()
		stats[host]["failure_count"] = cb.failureCount
	}
	return stats
}

// getLimiter gets or creates a rate limiter for a host. Caller holds g.mu.
func (g *Guard) getLimiter(host string) *hostLimiter {
	if hl, exists := g.limiters[host]; exists {
		return hl
	}

	rps := rate.Limit(float64(g.ratePerMinute) / 60.0)
	burst := 5

	hl := &hostLimiter{
		limiter:  rate.NewLimiter(rps, burst),
		lastSeen: time.Now(),
	}
	g.limiters[host] = hl
	return hl
}

// getBreaker gets or creates a circuit breaker for a host. Caller holds g.mu.
func (g *Guard) getBreaker(host string) *circuitBreaker {
	if cb, exists := g.breakers[host]; exists {
		return cb
	}

	cb := &circuitBreaker{
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		state:        CircuitClosed,
	}
	g.breakers[host] = cb
	return cb
}

// breakerAllows checks breaker state, transitioning open -> half-open after the
// reset timeout. Caller holds g.mu.
func (g *Guard) breakerAllows(cb *circuitBreaker) bool {
	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if time.Since(cb.lastFailTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}
