package flow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	appoutbox "staybeyond/internal/app/outbox"
	"staybeyond/internal/app/payment"
	"staybeyond/internal/app/session"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
)

// RegistryConfig carries the shared collaborators every flow is built from.
// Backend maps one bearer token to the session context's auth boundary.
type RegistryConfig struct {
	Backend  func(token string) session.Backend
	Stays    catalog.StayRepository
	Gateway  payment.Gateway
	Bookings domainbooking.Repository
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	Logger   *slog.Logger
}

type flowKey struct {
	token string
	stay  catalog.StayID
}

// Registry owns the live booking flows, one per bearer session and stay.
// Each session gets its own session.Context, restored from the token on
// first touch, so a flow's auth checks always run against the caller's own
// session rather than a process-wide one. Flows are evicted when their
// attempt completes and when their session signs out.
type Registry struct {
	cfg RegistryConfig

	mu       sync.Mutex
	sessions map[string]*session.Context
	flows    map[flowKey]*Flow
}

func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]*session.Context),
		flows:    make(map[flowKey]*Flow),
	}
}

// Flow returns the live flow for the given bearer session and stay,
// creating and restoring it on first use.
func (r *Registry) Flow(ctx context.Context, token string, stayID catalog.StayID) (*Flow, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrAuthRequired
	}
	stay, err := r.cfg.Stays.ByID(ctx, stayID)
	if err != nil {
		return nil, err
	}

	sess, restore := r.sessionFor(token)
	if restore {
		sess.Restore(ctx)
	}

	key := flowKey{token: token, stay: stayID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if fl, ok := r.flows[key]; ok {
		return fl, nil
	}
	fl, err := New(Config{
		Stay:     stay,
		Sessions: sess,
		Gateway:  r.cfg.Gateway,
		Bookings: r.cfg.Bookings,
		Outbox:   r.cfg.Outbox,
		Encoder:  r.cfg.Encoder,
		Hooks: Hooks{
			Notify:     r.logNotice,
			OnComplete: func() { r.evict(key) },
		},
		Logger: r.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.flows[key] = fl
	return fl, nil
}

func (r *Registry) sessionFor(token string) (*session.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[token]; ok {
		return sess, false
	}
	var backend session.Backend
	if r.cfg.Backend != nil {
		backend = r.cfg.Backend(token)
	}
	sess := session.NewContext(backend, r.cfg.Logger)
	r.sessions[token] = sess
	return sess, true
}

// HandleAuthChange fans a backend auth change into the session contexts it
// concerns, so a sign-out invalidates that user's open flows immediately.
// Changes without an attributable user are dropped.
func (r *Registry) HandleAuthChange(change session.Change) {
	if change.User == nil {
		return
	}
	r.mu.Lock()
	matched := make(map[string]*session.Context)
	for token, sess := range r.sessions {
		user, loading := sess.Snapshot()
		if loading || user == nil || user.ID != change.User.ID {
			continue
		}
		matched[token] = sess
	}
	if change.Event == session.SignedOut {
		for token := range matched {
			delete(r.sessions, token)
			for key := range r.flows {
				if key.token == token {
					delete(r.flows, key)
				}
			}
		}
	}
	r.mu.Unlock()

	for _, sess := range matched {
		sess.Apply(change)
	}
}

func (r *Registry) evict(key flowKey) {
	r.mu.Lock()
	delete(r.flows, key)
	r.mu.Unlock()
}

func (r *Registry) logNotice(n Notice) {
	if r.cfg.Logger == nil {
		return
	}
	switch n.Kind {
	case NoticeError:
		r.cfg.Logger.Warn("booking flow notice", "title", n.Title, "detail", n.Detail)
	default:
		r.cfg.Logger.Info("booking flow notice", "title", n.Title, "detail", n.Detail)
	}
}
