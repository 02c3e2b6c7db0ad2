package flow

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	appoutbox "staybeyond/internal/app/outbox"
	"staybeyond/internal/app/payment"
	"staybeyond/internal/app/session"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/pricing"
	"staybeyond/internal/domain/shared/daterange"

	"github.com/google/uuid"
)

var (
	ErrAuthRequired   = errors.New("flow: authentication required")
	ErrSessionLoading = errors.New("flow: session state unknown")
	ErrDatesRequired  = errors.New("flow: check-in and check-out dates required")
	ErrBusy           = errors.New("flow: a submission is already in progress")
	ErrUnknownMethod  = errors.New("flow: unknown payment method")
	ErrGatewayLoad    = errors.New("flow: payment gateway failed to load")
)

// State is the user-visible phase of one booking attempt.
type State string

const (
	StateIdle           State = "idle"
	StateDatesSelected  State = "dates_selected"
	StatePaymentPending State = "payment_pending"
	StatePersisting     State = "persisting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a transient user-facing message; the embedding surface renders
// it as a toast or banner and may dismiss it freely.
type Notice struct {
	Kind   NoticeKind
	Title  string
	Detail string
}

// Hooks are the embedding surface's reactions to flow progress. All are
// optional. OnComplete fires exactly once at the end of every attempt that
// got past the submit preconditions, whatever the outcome. A typical use
// is closing a booking modal.
type Hooks struct {
	Notify     func(Notice)
	Navigate   func(route string)
	OnComplete func()
}

const (
	displayName   = "Stay Beyond"
	themeColor    = "#B8860B"
	bookingsRoute = "/bookings"
	signInRoute   = "/auth"
)

// Flow owns the booking-and-payment reconciliation state machine for one
// stay: Idle → DatesSelected → (PaymentPending) → Persisting → Done|Failed.
// Date selection, guest clamping and quoting are synchronous; a gateway
// payment suspends the flow in PaymentPending until the provider calls back,
// with no timeout; only the user's dismissal or success resumes it.
//
// The busy guard rejects a second Submit on the same Flow but is advisory
// only: it is not a server-enforced lock, so a parallel process could still
// insert twice. At-most-once is layered on at the transport boundary.
type Flow struct {
	stay     *catalog.Stay
	sessions *session.Context
	gateway  payment.Gateway
	bookings domainbooking.Repository
	outbox   appoutbox.Outbox
	encoder  appoutbox.EventEncoder
	hooks    Hooks
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	mu         sync.Mutex
	state      State
	selection  daterange.Selection
	pickerOpen bool
	guests     int
	busy       bool
}

type Config struct {
	Stay     *catalog.Stay
	Sessions *session.Context
	Gateway  payment.Gateway
	Bookings domainbooking.Repository
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	Hooks    Hooks
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

func New(cfg Config) (*Flow, error) {
	switch {
	case cfg.Stay == nil:
		return nil, errors.New("flow: stay required")
	case cfg.Sessions == nil:
		return nil, errors.New("flow: session context required")
	case cfg.Bookings == nil:
		return nil, errors.New("flow: booking repository required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Flow{
		stay:     cfg.Stay,
		sessions: cfg.Sessions,
		gateway:  cfg.Gateway,
		bookings: cfg.Bookings,
		outbox:   cfg.Outbox,
		encoder:  cfg.Encoder,
		hooks:    cfg.Hooks,
		logger:   cfg.Logger,
		now:      now,
		newID:    newID,
		state:    StateIdle,
		guests:   1,
	}, nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Selection() daterange.Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection
}

func (f *Flow) Guests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.guests
}

func (f *Flow) PickerOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pickerOpen
}

// OpenPicker and ClosePicker toggle the calendar's visibility; visibility is
// separate state from the selection itself.
func (f *Flow) OpenPicker() {
	f.mu.Lock()
	f.pickerOpen = true
	f.mu.Unlock()
}

func (f *Flow) ClosePicker() {
	f.mu.Lock()
	f.pickerOpen = false
	f.mu.Unlock()
}

// SelectDate applies one calendar click through the pure range reducer and
// reports whether the picker closed as a result.
func (f *Flow) SelectDate(clicked time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, closePicker, err := daterange.Select(f.selection, clicked, f.now())
	if err != nil {
		return false, err
	}
	f.selection = next
	if closePicker {
		f.pickerOpen = false
	}
	switch next.Phase() {
	case daterange.Complete:
		if f.state == StateIdle || f.state == StateFailed || f.state == StateDone {
			f.state = StateDatesSelected
		}
	default:
		if f.state == StateDatesSelected {
			f.state = StateIdle
		}
	}
	return closePicker, nil
}

// SetGuests clamps the requested party size to the stay's bound and returns
// the value actually applied; out-of-range requests never reach Submit.
func (f *Flow) SetGuests(requested int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests = f.stay.ClampGuests(requested)
	return f.guests
}

// Quote recomputes the price breakdown from the current selection. An
// incomplete selection quotes zero nights.
func (f *Flow) Quote() pricing.PriceQuote {
	f.mu.Lock()
	sel := f.selection
	f.mu.Unlock()
	return f.quoteFor(sel)
}

func (f *Flow) quoteFor(sel daterange.Selection) pricing.PriceQuote {
	nights := 0
	if rng, ok := sel.Range(); ok {
		nights = rng.Nights()
	}
	return pricing.Quote(nights, f.stay.NightlyRate)
}

// Submit runs one booking attempt. Preconditions are re-checked here, not
// only at construction: no session fails fast with a redirect to sign-in,
// an incomplete range fails before any network call. The default method
// persists immediately as a pay-later reservation; the gateway method
// suspends in PaymentPending until the hosted checkout resolves.
func (f *Flow) Submit(ctx context.Context, method domainbooking.PaymentMethod) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	user, loading := f.sessions.Snapshot()
	if loading {
		f.mu.Unlock()
		f.post(Notice{Kind: NoticeError, Title: "Checking your session", Detail: "Please try again in a moment"})
		return ErrSessionLoading
	}
	if user == nil {
		f.mu.Unlock()
		f.post(Notice{Kind: NoticeError, Title: "Please log in to book", Detail: "You need to be logged in to make a booking"})
		f.navigate(signInRoute)
		return ErrAuthRequired
	}
	rng, ok := f.selection.Range()
	if !ok {
		f.mu.Unlock()
		f.post(Notice{Kind: NoticeError, Title: "Please select check-in and check-out dates"})
		return ErrDatesRequired
	}
	if err := domainbooking.ValidateCheckIn(rng, f.now()); err != nil {
		f.mu.Unlock()
		f.post(Notice{Kind: NoticeError, Title: "Check-in date is in the past"})
		return err
	}
	guests := f.guests
	f.busy = true
	f.mu.Unlock()

	attemptDone := &sync.Once{}
	switch method {
	case domainbooking.MethodDefault:
		f.setState(StatePersisting)
		err := f.persist(ctx, user, rng, guests, "")
		f.complete(attemptDone)
		return err
	case domainbooking.MethodGateway:
		return f.payThenPersist(ctx, user, rng, guests, attemptDone)
	default:
		f.clearBusy()
		f.complete(attemptDone)
		return ErrUnknownMethod
	}
}

func (f *Flow) payThenPersist(ctx context.Context, user *session.Identity, rng daterange.DateRange, guests int, attemptDone *sync.Once) error {
	if f.gateway == nil {
		f.clearBusy()
		f.complete(attemptDone)
		return ErrGatewayLoad
	}
	loaded, err := f.gateway.EnsureLoaded(ctx)
	if err != nil || !loaded {
		f.clearBusy()
		f.post(Notice{Kind: NoticeError, Title: "Failed to load payment gateway", Detail: "Please refresh and try again"})
		f.complete(attemptDone)
		if err != nil {
			return errors.Join(ErrGatewayLoad, err)
		}
		return ErrGatewayLoad
	}

	quote := f.quoteFor(daterange.Selection{Start: rng.CheckIn, End: rng.CheckOut})
	f.setState(StatePaymentPending)
	req := payment.CheckoutRequest{
		Amount:      quote.Total,
		Name:        displayName,
		Description: "Booking for " + f.stay.Name,
		Image:       f.stay.Thumbnail(),
		Notes: map[string]string{
			"stay_id":       string(f.stay.ID),
			"checkin_date":  rng.CheckIn.Format(time.RFC3339),
			"checkout_date": rng.CheckOut.Format(time.RFC3339),
			"guests":        strconv.Itoa(guests),
		},
		Prefill:    payment.Contact{Name: user.Name, Email: user.Email},
		ThemeColor: themeColor,
		Modal:      payment.ModalOptions{},
		OnSuccess: func(cbCtx context.Context, paymentID string) {
			f.post(Notice{Kind: NoticeInfo, Title: "Payment successful!", Detail: "Payment ID: " + paymentID})
			f.setState(StatePersisting)
			_ = f.persist(cbCtx, user, rng, guests, paymentID)
			f.complete(attemptDone)
		},
		OnDismiss: func(cbCtx context.Context) {
			f.setState(StateDatesSelected)
			f.clearBusy()
			f.post(Notice{Kind: NoticeError, Title: "Payment failed", Detail: "Please try again or choose a different payment method"})
			f.complete(attemptDone)
		},
	}
	if err := f.gateway.OpenCheckout(ctx, req); err != nil {
		f.setState(StateDatesSelected)
		f.clearBusy()
		f.post(Notice{Kind: NoticeError, Title: "Payment failed", Detail: "There was an error processing your payment"})
		f.complete(attemptDone)
		return err
	}
	// The attempt is now suspended until the provider calls back; there is
	// no timeout, only the user's success or dismissal.
	return nil
}

func (f *Flow) persist(ctx context.Context, user *session.Identity, rng daterange.DateRange, guests int, paymentID string) error {
	quote := f.quoteFor(daterange.Selection{Start: rng.CheckIn, End: rng.CheckOut})
	record, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(f.newID()),
		UserID:    user.ID,
		Stay:      f.stay,
		Range:     rng,
		Guests:    guests,
		Total:     quote.Total,
		PaymentID: paymentID,
		CreatedAt: f.now(),
	})
	if err != nil {
		f.fail("There was an error saving your booking. Please try again.", err)
		return err
	}
	if err := f.bookings.Insert(ctx, record); err != nil {
		detail := "There was an error saving your booking. Please try again."
		if msg := err.Error(); msg != "" {
			detail = msg
		}
		f.fail(detail, err)
		return err
	}

	pending := record.PendingEvents()
	record.ClearEvents()
	if err := appoutbox.RecordDomainEvents(ctx, f.outbox, f.eventEncoder(), pending); err != nil && f.logger != nil {
		// The row is already persisted; losing the event is logged, not
		// surfaced as a booking failure.
		f.logger.Warn("booking events not recorded", "booking_id", record.ID, "error", err)
	}

	f.mu.Lock()
	f.selection = daterange.Selection{}
	f.guests = 1
	f.state = StateDone
	f.busy = false
	f.mu.Unlock()

	f.post(Notice{Kind: NoticeInfo, Title: "Booking confirmed!", Detail: "Your stay has been booked for " + strconv.Itoa(quote.Nights) + " nights"})
	f.navigate(bookingsRoute)
	if f.logger != nil {
		f.logger.Info("booking persisted", "booking_id", record.ID, "stay_id", f.stay.ID, "user_id", user.ID, "payment_status", record.PaymentStatus)
	}
	return nil
}

// fail moves to Failed but keeps the selection and guest count so the user
// can retry without re-entering anything.
func (f *Flow) fail(detail string, err error) {
	f.mu.Lock()
	f.state = StateFailed
	f.busy = false
	f.mu.Unlock()
	f.post(Notice{Kind: NoticeError, Title: "Booking failed", Detail: detail})
	if f.logger != nil {
		f.logger.Error("booking persist failed", "stay_id", f.stay.ID, "error", err)
	}
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Flow) clearBusy() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Flow) complete(once *sync.Once) {
	once.Do(func() {
		if f.hooks.OnComplete != nil {
			f.hooks.OnComplete()
		}
	})
}

func (f *Flow) post(n Notice) {
	if f.hooks.Notify != nil {
		f.hooks.Notify(n)
	}
}

func (f *Flow) navigate(route string) {
	if f.hooks.Navigate != nil {
		f.hooks.Navigate(route)
	}
}

func (f *Flow) eventEncoder() appoutbox.EventEncoder {
	if f.encoder != nil {
		return f.encoder
	}
	return appoutbox.JSONEventEncoder{}
}
