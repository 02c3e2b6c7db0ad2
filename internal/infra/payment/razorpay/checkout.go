package razorpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"staybeyond/internal/app/payment"
)

const (
	// DefaultScriptURL is Razorpay's hosted checkout bundle.
	DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

	defaultLoadTimeout = 10 * time.Second
)

var (
	ErrScriptUnavailable = errors.New("razorpay: checkout script unavailable")
	ErrNoOpenCheckout    = errors.New("razorpay: no open checkout")
)

// ScriptLoader verifies the provider's checkout bundle is reachable.
type ScriptLoader interface {
	Load(ctx context.Context, url string) error
}

type httpScriptLoader struct {
	client *http.Client
}

func (l httpScriptLoader) Load(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrScriptUnavailable, resp.StatusCode)
	}
	return nil
}

// CheckoutSession is one open hosted-checkout attempt awaiting the
// provider's callback.
type checkoutSession struct {
	orderID   string
	onSuccess func(ctx context.Context, paymentID string)
	onDismiss func(ctx context.Context)
	resolved  bool
}

// Gateway implements the hosted-checkout port against Razorpay. The script
// load is memoized: concurrent callers share one in-flight fetch, a success
// is cached for the process lifetime and a failure clears the memo so a
// later call can retry. At most one checkout may be open at a time; it
// stays open until CompletePayment or DismissCheckout resolves it, with no
// timeout of its own.
type Gateway struct {
	keyID     string
	scriptURL string
	loader    ScriptLoader
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	loaded   bool
	inflight chan struct{}
	loadErr  error
	open     *checkoutSession
}

type Option func(*Gateway)

func WithScriptLoader(l ScriptLoader) Option {
	return func(g *Gateway) { g.loader = l }
}

func WithScriptURL(url string) Option {
	return func(g *Gateway) { g.scriptURL = url }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func New(keyID string, opts ...Option) *Gateway {
	g := &Gateway{
		keyID:     keyID,
		scriptURL: DefaultScriptURL,
		loader:    httpScriptLoader{client: &http.Client{Timeout: defaultLoadTimeout}},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureLoaded fetches the checkout bundle once. Callers arriving while a
// load is in flight wait for that load instead of starting another.
func (g *Gateway) EnsureLoaded(ctx context.Context) (bool, error) {
	g.mu.Lock()
	if g.loaded {
		g.mu.Unlock()
		return true, nil
	}
	if g.inflight != nil {
		wait := g.inflight
		g.mu.Unlock()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-wait:
		}
		g.mu.Lock()
		loaded, err := g.loaded, g.loadErr
		g.mu.Unlock()
		return loaded, err
	}
	done := make(chan struct{})
	g.inflight = done
	g.mu.Unlock()

	err := g.loader.Load(ctx, g.scriptURL)

	g.mu.Lock()
	g.inflight = nil
	g.loadErr = err
	g.loaded = err == nil
	loaded := g.loaded
	g.mu.Unlock()
	close(done)

	if err != nil {
		if g.logger != nil {
			g.logger.Warn("checkout script load failed", "url", g.scriptURL, "error", err)
		}
		return false, err
	}
	if g.logger != nil {
		g.logger.Debug("checkout script loaded", "url", g.scriptURL)
	}
	return loaded, nil
}

// OpenCheckout registers the attempt and parks it until a callback arrives.
// The order id is fabricated locally; server-side order creation is a
// separate integration this adapter does not require.
func (g *Gateway) OpenCheckout(ctx context.Context, req payment.CheckoutRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loaded {
		return payment.ErrNotLoaded
	}
	if g.open != nil && !g.open.resolved {
		return payment.ErrCheckoutOpen
	}

	orderID := "order_" + strconv.FormatInt(g.now().UnixMilli(), 10)
	g.open = &checkoutSession{
		orderID:   orderID,
		onSuccess: req.OnSuccess,
		onDismiss: req.OnDismiss,
	}

	if g.logger != nil {
		g.logger.Info("checkout opened",
			"order_id", orderID,
			"key_id", g.keyID,
			"amount_subunits", req.Amount.Subunits(),
			"currency", req.Amount.Currency,
			"theme", req.ThemeColor,
			"escape", req.Modal.Escape,
			"backdrop_close", req.Modal.BackdropClose,
		)
	}
	return nil
}

// CompletePayment resolves the open checkout with the provider's payment
// id. A second callback for the same attempt is ignored.
func (g *Gateway) CompletePayment(ctx context.Context, paymentID string) error {
	g.mu.Lock()
	session := g.open
	if session == nil || session.resolved {
		g.mu.Unlock()
		return ErrNoOpenCheckout
	}
	session.resolved = true
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("checkout completed", "order_id", session.orderID, "payment_id", paymentID)
	}
	if session.onSuccess != nil {
		session.onSuccess(ctx, paymentID)
	}
	return nil
}

// DismissCheckout resolves the open checkout as abandoned.
func (g *Gateway) DismissCheckout(ctx context.Context) error {
	g.mu.Lock()
	session := g.open
	if session == nil || session.resolved {
		g.mu.Unlock()
		return ErrNoOpenCheckout
	}
	session.resolved = true
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("checkout dismissed", "order_id", session.orderID)
	}
	if session.onDismiss != nil {
		session.onDismiss(ctx)
	}
	return nil
}

var _ payment.Gateway = (*Gateway)(nil)
