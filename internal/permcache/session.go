package permcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/labtrack/labtrack/internal/rbac"
)

// DefaultResolveTimeout bounds how long a session waits on the resolver
// before surfacing a retriable error instead of hanging in Pending forever.
const DefaultResolveTimeout = 10 * time.Second

// Resolver answers authoritative permission lookups.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (rbac.Resolution, error)
}

// Options configures a Session.
type Options struct {
	// SlotKey is the persisted-slot name; DefaultSlotKey when empty.
	SlotKey string
	// ResolveTimeout bounds each resolver round trip.
	ResolveTimeout time.Duration
	Logger         *slog.Logger
}

// Session is the single-writer state machine behind the client permission
// cache. Two independent async signals feed it: the identity provider's
// session load and the resolver round trip. An epoch counter keyed to the
// current identity discards stale in-flight results, so a previous user's
// permissions can never be shown to a new session.
type Session struct {
	store    Store
	resolver Resolver
	slotKey  string
	timeout  time.Duration
	logger   *slog.Logger

	mu            sync.Mutex
	epoch         uint64
	handle        string
	loading       bool
	authoritative bool
	res           rbac.Resolution
	err           error
	settled       sync.WaitGroup
}

// NewSession builds a session and synchronously seeds it from the persisted
// slot, avoiding a loading flash on restart. The seed is provisional:
// Loading stays true until the identity provider and resolver have settled.
func NewSession(ctx context.Context, store Store, resolver Resolver, opts Options) *Session {
	if opts.SlotKey == "" {
		opts.SlotKey = DefaultSlotKey
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = DefaultResolveTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Session{
		store:   store,
		resolver: resolver,
		slotKey: opts.SlotKey,
		timeout: opts.ResolveTimeout,
		logger:  opts.Logger,
		loading: true,
		res:     emptyResolution(),
	}
	if store != nil {
		if seed, ok, err := store.Load(ctx, s.slotKey); err != nil {
			s.logger.Warn("permcache seed load", slog.Any("error", err))
		} else if ok {
			s.res = seed
		}
	}
	return s
}

// IdentityLoaded reports the identity provider's answer for this session.
// An empty handle means "no user" and is decisive: state is cleared
// immediately without waiting for any in-flight resolve, whose result will
// be discarded by the epoch guard when it lands.
func (s *Session) IdentityLoaded(ctx context.Context, handle string) {
	s.mu.Lock()
	s.epoch++
	if handle == "" {
		s.handle = ""
		s.loading = false
		s.authoritative = false
		s.res = emptyResolution()
		s.err = nil
		s.mu.Unlock()
		s.clearSlot(ctx)
		return
	}
	s.handle = handle
	s.loading = true
	s.err = nil
	epoch := s.epoch
	s.settled.Add(1)
	s.mu.Unlock()

	go s.resolve(ctx, epoch, handle)
}

// SignOut clears the session and the persisted slot. Equivalent to the
// identity provider reporting "no user".
func (s *Session) SignOut(ctx context.Context) {
	s.IdentityLoaded(ctx, "")
}

// Refresh re-runs the resolver for the current identity, keeping the
// existing state visible while the call is outstanding.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	handle := s.handle
	if handle == "" {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.err = nil
	epoch := s.epoch
	s.settled.Add(1)
	s.mu.Unlock()

	go s.resolve(ctx, epoch, handle)
}

func (s *Session) resolve(ctx context.Context, epoch uint64, handle string) {
	defer s.settled.Done()
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.resolver.Resolve(rctx, handle)

	s.mu.Lock()
	if s.epoch != epoch {
		// A newer identity signal won the race; this result is stale.
		s.mu.Unlock()
		return
	}
	switch {
	case errors.Is(err, rbac.ErrNotFound):
		// The store has no row for this identity yet: treat as signed out.
		s.handle = ""
		s.loading = false
		s.authoritative = false
		s.res = emptyResolution()
		s.err = nil
		s.mu.Unlock()
		s.clearSlot(ctx)
		return
	case err != nil:
		// Timeout or transport failure: settle with a retriable error
		// rather than hanging in Pending; the last state stays visible.
		s.loading = false
		s.err = err
		s.mu.Unlock()
		return
	}
	if res.Permissions == nil {
		res.Permissions = []string{}
	}
	// Authoritative always wins over the optimistic seed, even when equal.
	s.res = res
	s.authoritative = true
	s.loading = false
	s.err = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, s.slotKey, res); err != nil {
			s.logger.Warn("permcache save", slog.Any("error", err))
		}
	}
}

// State snapshots the session for gate checks: Loading is true while the
// identity status is unknown or a resolver call is outstanding.
func (s *Session) State() rbac.GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rbac.GateState{Loading: s.loading, Resolution: s.res}
}

// Authoritative reports whether the current resolution came from the
// resolver rather than the persisted seed.
func (s *Session) Authoritative() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authoritative
}

// Err returns the last resolver failure, nil once a resolve succeeds or the
// session is cleared.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until all in-flight resolver calls have settled. Test helper.
func (s *Session) Wait() {
	s.settled.Wait()
}

func (s *Session) clearSlot(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx, s.slotKey); err != nil {
		s.logger.Warn("permcache clear", slog.Any("error", err))
	}
}

func emptyResolution() rbac.Resolution {
	return rbac.Resolution{Permissions: []string{}}
}
