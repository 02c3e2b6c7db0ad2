package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrBackendRequired = errors.New("session: auth backend required")

// Identity is the minimal view of the signed-in user that consumers need.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Event names the auth-change notifications pushed from the backend.
type Event string

const (
	SignedIn       Event = "signed_in"
	SignedOut      Event = "signed_out"
	TokenRefreshed Event = "token_refreshed"
)

// Change pairs an auth event with the session user it produced.
type Change struct {
	Event Event
	User  *Identity
}

// Backend is the hosted auth boundary the context restores from and signs
// out against.
type Backend interface {
	Restore(ctx context.Context) (*Identity, error)
	SignOut(ctx context.Context) error
}

// Context owns the process-wide session state: the current user and a
// loading flag that stays true until the backend's session restore has
// resolved. It is an explicit, injected store with subscribe/notify
// semantics rather than ambient global state, so tests can substitute a
// fake. Consumers reading the user while loading must treat it as unknown
// and defer authorization decisions.
type Context struct {
	mu      sync.RWMutex
	user    *Identity
	loading bool
	nextSub int
	subs    map[int]func(Change)
	backend Backend
	logger  *slog.Logger
}

func NewContext(backend Backend, logger *slog.Logger) *Context {
	return &Context{
		loading: true,
		subs:    make(map[int]func(Change)),
		backend: backend,
		logger:  logger,
	}
}

// Restore resolves the initial session from the backend. Both a restored
// session and an absent one end the loading phase; only a transport error
// keeps consumers in the unknown state, and even then loading ends so the
// app is usable signed-out.
func (c *Context) Restore(ctx context.Context) {
	var restored *Identity
	if c.backend != nil {
		user, err := c.backend.Restore(ctx)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("session restore failed", "error", err)
			}
		} else {
			restored = user
		}
	}
	c.mu.Lock()
	c.user = restored
	c.loading = false
	c.mu.Unlock()
	if restored != nil {
		c.notify(Change{Event: SignedIn, User: restored})
	}
}

// Snapshot returns the current user and whether the restore is still
// pending.
func (c *Context) Snapshot() (*Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user, c.loading
}

// Subscribe registers a listener for every subsequent auth change and
// returns its unsubscribe func. Listeners live for the app's lifetime
// unless removed.
func (c *Context) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Apply folds a backend auth event into the session state and fans it out
// to subscribers. Only the Context itself writes the session; consumers
// never mutate it.
func (c *Context) Apply(change Change) {
	c.mu.Lock()
	switch change.Event {
	case SignedOut:
		c.user = nil
	default:
		if change.User != nil {
			c.user = change.User
		}
	}
	c.loading = false
	c.mu.Unlock()
	c.notify(change)
}

// SignOut signs out at the backend, then clears the local user. The local
// clear happens regardless of the backend result so the UI never holds a
// stale user after the call resolves; the backend error is still returned.
func (c *Context) SignOut(ctx context.Context) error {
	var err error
	if c.backend != nil {
		err = c.backend.SignOut(ctx)
	}
	c.Apply(Change{Event: SignedOut})
	return err
}

func (c *Context) notify(change Change) {
	c.mu.RLock()
	listeners := make([]func(Change), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(change)
	}
}
