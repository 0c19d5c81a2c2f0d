package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// TransitionListener is notified after every state change of the store.
// Listeners run outside of the store lock and may read from the store.
type TransitionListener func(ctx context.Context, from, to State)

type Option func(*Store)

func WithTransitionListener(l TransitionListener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// Store is the single owner of the session token.
type Store struct {
	slot      Slot
	validator Validator
	nav       Navigator
	listeners []TransitionListener

	mu      sync.RWMutex
	state   State
	token   string
	gen     uint64 // bumped by Login and Logout to discard stale validation results
	started bool

	ready     chan struct{}
	readyOnce sync.Once
}

type transition struct {
	from, to State
}

// Snapshot is a consistent view of the store at a point in time.
type Snapshot struct {
	State         State
	Ready         bool
	Authenticated bool
}

func NewStore(slot Slot, validator Validator, nav Navigator, opts ...Option) *Store {
	s := &Store{
		slot:      slot,
		validator: validator,
		nav:       nav,
		state:     StateInitializing,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Start restores the persisted token and, if there is one, validates it in the
// background. Only the first call has an effect.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true

	token, err := s.slot.Get(ctx, TokenKey)
	if err != nil && !errors.Is(err, ErrSlotEmpty) {
		slogctx.Warn(ctx, "Could not read the persisted token, continuing unauthenticated", "error", err)
	}

	if err != nil || token == "" {
		t := s.setStateLocked(ctx, StateUnauthenticated)
		s.mu.Unlock()

		s.notify(ctx, t)
		s.markReady()
		slogctx.Info(ctx, "No persisted token found")
		return
	}

	s.token = token
	gen := s.gen
	t := s.setStateLocked(ctx, StateValidating)
	s.mu.Unlock()

	s.notify(ctx, t)

	// The validation is not tied to the caller: a cancelled start context must
	// not be mistaken for a rejected token.
	go s.validate(context.WithoutCancel(ctx), token, gen)
}

func (s *Store) validate(ctx context.Context, token string, gen uint64) {
	slogctx.Debug(ctx, "Validating the persisted token")
	err := s.validator.ValidateToken(ctx, token)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		slogctx.Debug(ctx, "Discarding a stale token validation result")
		s.markReady()
		return
	}

	if err == nil {
		t := s.setStateLocked(ctx, StateAuthenticated)
		s.mu.Unlock()

		s.notify(ctx, t)
		s.markReady()
		slogctx.Info(ctx, "Persisted token is valid")
		return
	}

	slogctx.Warn(ctx, "Token validation failed", "error", err)

	ts := []transition{s.setStateLocked(ctx, StateInvalid)}
	ts = append(ts, s.clearLocked(ctx)...)
	s.mu.Unlock()

	s.notify(ctx, ts...)
	s.nav.GoTo(ctx, LoginPath)
	s.markReady()
}

// Login persists and adopts token and navigates home. The token is trusted as
// issued; it is not validated again.
func (s *Store) Login(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	s.started = true

	if err := s.slot.Set(ctx, TokenKey, token); err != nil {
		slogctx.Warn(ctx, "Could not persist the token, it is kept for this process only", "error", err)
	}

	s.token = token
	s.gen++
	t := s.setStateLocked(ctx, StateAuthenticated)
	s.mu.Unlock()

	s.markReady()
	s.notify(ctx, t)
	s.nav.GoTo(ctx, HomePath)

	return nil
}

// Logout clears the token everywhere and navigates to the login view.
// Calling it while logged out only repeats the navigation.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.started = true
	ts := s.clearLocked(ctx)
	s.mu.Unlock()

	s.markReady()
	s.notify(ctx, ts...)
	s.nav.GoTo(ctx, LoginPath)
}

func (s *Store) clearLocked(ctx context.Context) []transition {
	if err := s.slot.Delete(ctx, TokenKey); err != nil && !errors.Is(err, ErrSlotEmpty) {
		slogctx.Warn(ctx, "Could not delete the persisted token", "error", err)
	}

	s.token = ""
	s.gen++

	return []transition{s.setStateLocked(ctx, StateUnauthenticated)}
}

func (s *Store) setStateLocked(ctx context.Context, to State) transition {
	from := s.state
	if !from.canTransitionTo(to) {
		slogctx.Error(ctx, "Unexpected session state transition", "from", from.String(), "to", to.String())
	}
	s.state = to

	return transition{from: from, to: to}
}

func (s *Store) notify(ctx context.Context, ts ...transition) {
	for _, t := range ts {
		slogctx.Debug(ctx, "Session state changed", "from", t.from.String(), "to", t.to.String())
		for _, l := range s.listeners {
			l(ctx, t.from, t.to)
		}
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Token returns the current credential, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

// Ready reports whether the initial validation cycle has resolved.
func (s *Store) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// ReadyC is closed once the store is ready.
func (s *Store) ReadyC() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until the store is ready or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		State:         s.state,
		Ready:         s.Ready(),
		Authenticated: s.token != "",
	}
}
