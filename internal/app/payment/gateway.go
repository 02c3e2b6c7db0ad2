package payment

import (
	"context"
	"errors"

	"staybeyond/internal/domain/shared/money"
)

var (
	ErrNotLoaded    = errors.New("payment: checkout script not loaded")
	ErrCheckoutOpen = errors.New("payment: a checkout is already open")
)

// Contact prefills the hosted checkout's contact fields.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ModalOptions control how the hosted UI may be dismissed. Both escape and
// backdrop close default to disabled, so the only exits are success or the
// explicit dismiss control.
type ModalOptions struct {
	Escape        bool
	BackdropClose bool
}

// CheckoutRequest describes one hosted-checkout attempt. The adapter
// converts Amount to the provider's smallest-subunit convention and
// fabricates the order identifier; OnSuccess receives the provider's opaque
// payment id verbatim, OnDismiss fires exactly once when the user abandons
// the modal.
type CheckoutRequest struct {
	Amount      money.Money
	Name        string
	Description string
	Image       string
	Notes       map[string]string
	Prefill     Contact
	ThemeColor  string
	Modal       ModalOptions
	OnSuccess   func(ctx context.Context, paymentID string)
	OnDismiss   func(ctx context.Context)
}

// Gateway bridges to a third-party hosted checkout. EnsureLoaded is
// idempotent and safe to call concurrently: a single in-flight load is
// shared by all waiters and a successful load is cached for the process
// lifetime. OpenCheckout must not be called unless EnsureLoaded has
// resolved true.
type Gateway interface {
	EnsureLoaded(ctx context.Context) (bool, error)
	OpenCheckout(ctx context.Context, req CheckoutRequest) error
}
