package rbac

import (
	"sync"
	"time"
)

// Decision is the outcome of an access-gate check.
type Decision int

const (
	// Pending means identity or resolver state is still loading. Callers
	// must render a loading affordance and never treat Pending as either
	// outcome.
	Pending Decision = iota
	// Allow means the permission is present in the resolved set.
	Allow
	// Deny means the state is settled and the permission is absent.
	Deny
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "pending"
	}
}

// GateState is the input to a gate check: the last known resolution plus
// whether that resolution is still provisional.
type GateState struct {
	Loading    bool
	Resolution Resolution
}

// Check decides Allow/Deny/Pending for a permission against the given state.
// The gate is stateless per call; caching is the caller's concern.
func Check(permission string, state GateState) Decision {
	if state.Loading {
		return Pending
	}
	if state.Resolution.Has(permission) {
		return Allow
	}
	return Deny
}

// RedirectDelay is how long the access-denied notice stays up before the
// automatic redirect to the home view fires.
const RedirectDelay = 3 * time.Second

// PageGuard drives the page-level deny behavior: after a denied check the
// redirect fires exactly once after RedirectDelay, regardless of how many
// times Deny is reported, and never after Stop.
type PageGuard struct {
	delay    time.Duration
	redirect func()

	mu      sync.Mutex
	once    sync.Once
	timer   *time.Timer
	stopped bool
}

// NewPageGuard builds a guard calling redirect after the standard delay.
func NewPageGuard(redirect func()) *PageGuard {
	return &PageGuard{delay: RedirectDelay, redirect: redirect}
}

// NewPageGuardWithDelay builds a guard with a custom delay, used in tests.
func NewPageGuardWithDelay(delay time.Duration, redirect func()) *PageGuard {
	return &PageGuard{delay: delay, redirect: redirect}
}

// Deny schedules the redirect. Repeated calls (re-renders of the denied
// view) do not reschedule or duplicate it.
func (g *PageGuard) Deny() {
	g.once.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.stopped {
			return
		}
		g.timer = time.AfterFunc(g.delay, g.fire)
	})
}

// Stop cancels a pending redirect when the hosting view is torn down before
// the delay elapses.
func (g *PageGuard) Stop() {
	g.mu.Lock()
	g.stopped = true
	timer := g.timer
	g.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
}

func (g *PageGuard) fire() {
	g.mu.Lock()
	stopped := g.stopped
	g.mu.Unlock()
	if stopped || g.redirect == nil {
		return
	}
	g.redirect()
}
