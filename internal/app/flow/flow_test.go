package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybeyond/internal/app/payment"
	"staybeyond/internal/app/session"
	"staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/daterange"
	"staybeyond/internal/domain/shared/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testStay() *catalog.Stay {
	return &catalog.Stay{
		ID:          "stay-1",
		Name:        "Amalfi Cliffside Villa",
		Location:    "Amalfi, Italy",
		NightlyRate: money.Money{Amount: 1000, Currency: "INR"},
		Images:      []string{"https://img.example/villa.jpg"},
		MaxGuests:   4,
	}
}

type fakeBackend struct {
	user *session.Identity
	err  error
}

func (b *fakeBackend) Restore(context.Context) (*session.Identity, error) { return b.user, b.err }
func (b *fakeBackend) SignOut(context.Context) error                      { return nil }

type spyRepository struct {
	inserted  []*booking.Booking
	insertErr error
}

func (r *spyRepository) Insert(_ context.Context, b *booking.Booking) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, b)
	return nil
}

func (r *spyRepository) ListByUser(context.Context, string) ([]*booking.Booking, error) {
	return r.inserted, nil
}

// fakeGateway captures the checkout request so tests can drive the
// provider callbacks explicitly, the way the real hosted modal would.
type fakeGateway struct {
	loadErr   error
	openErr   error
	loadCalls int
	opened    []payment.CheckoutRequest
}

func (g *fakeGateway) EnsureLoaded(context.Context) (bool, error) {
	g.loadCalls++
	if g.loadErr != nil {
		return false, g.loadErr
	}
	return true, nil
}

func (g *fakeGateway) OpenCheckout(_ context.Context, req payment.CheckoutRequest) error {
	if g.openErr != nil {
		return g.openErr
	}
	g.opened = append(g.opened, req)
	return nil
}

type harness struct {
	flow     *Flow
	repo     *spyRepository
	gateway  *fakeGateway
	notices  []Notice
	routes   []string
	finished int
}

func newHarness(t *testing.T, user *session.Identity) *harness {
	t.Helper()
	h := &harness{repo: &spyRepository{}, gateway: &fakeGateway{}}
	sessions := session.NewContext(&fakeBackend{user: user}, nil)
	sessions.Restore(context.Background())
	f, err := New(Config{
		Stay:     testStay(),
		Sessions: sessions,
		Gateway:  h.gateway,
		Bookings: h.repo,
		Hooks: Hooks{
			Notify:     func(n Notice) { h.notices = append(h.notices, n) },
			Navigate:   func(route string) { h.routes = append(h.routes, route) },
			OnComplete: func() { h.finished++ },
		},
		Now:   func() time.Time { return testNow },
		NewID: func() string { return "bk-1" },
	})
	require.NoError(t, err)
	h.flow = f
	return h
}

func (h *harness) selectStayDates(t *testing.T) {
	t.Helper()
	_, err := h.flow.SelectDate(testNow.AddDate(0, 0, 2))
	require.NoError(t, err)
	closed, err := h.flow.SelectDate(testNow.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.True(t, closed)
}

func signedIn() *session.Identity {
	return &session.Identity{ID: "user-1", Email: "ines@example.com", Name: "Ines"}
}

func TestSelectDateBuildsRangeAndClosesPicker(t *testing.T) {
	h := newHarness(t, signedIn())
	h.flow.OpenPicker()

	closed, err := h.flow.SelectDate(testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.True(t, h.flow.PickerOpen())
	assert.Equal(t, daterange.Partial, h.flow.Selection().Phase())

	closed, err = h.flow.SelectDate(testNow.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.True(t, closed)
	assert.False(t, h.flow.PickerOpen())
	assert.Equal(t, daterange.Complete, h.flow.Selection().Phase())
	assert.Equal(t, StateDatesSelected, h.flow.State())
}

func TestSelectDateRejectsPast(t *testing.T) {
	h := newHarness(t, signedIn())
	_, err := h.flow.SelectDate(testNow.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, daterange.ErrDateInPast)
	assert.Equal(t, daterange.Empty, h.flow.Selection().Phase())
}

func TestQuoteThreeNights(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)

	q := h.flow.Quote()
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, int64(3000), q.Subtotal.Amount)
	assert.Equal(t, int64(360), q.ServiceFee.Amount)
	assert.Equal(t, int64(540), q.TaxFee.Amount)
	assert.Equal(t, int64(3900), q.Total.Amount)
}

func TestQuoteWithoutDatesIsZero(t *testing.T) {
	h := newHarness(t, signedIn())
	q := h.flow.Quote()
	assert.Equal(t, 0, q.Nights)
	assert.True(t, q.Total.IsZero())
}

func TestSetGuestsClampsToStayBounds(t *testing.T) {
	h := newHarness(t, signedIn())
	assert.Equal(t, 4, h.flow.SetGuests(9))
	assert.Equal(t, 1, h.flow.SetGuests(0))
	assert.Equal(t, 3, h.flow.SetGuests(3))
}

func TestSubmitWithoutSessionNeverPersists(t *testing.T) {
	h := newHarness(t, nil)
	h.selectStayDates(t)

	err := h.flow.Submit(context.Background(), booking.MethodDefault)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Empty(t, h.repo.inserted)
	assert.Equal(t, []string{"/auth"}, h.routes)
	assert.Zero(t, h.finished)
}

func TestSubmitWhileSessionLoading(t *testing.T) {
	h := &harness{repo: &spyRepository{}, gateway: &fakeGateway{}}
	sessions := session.NewContext(&fakeBackend{}, nil)
	// Restore deliberately not called: the loading phase is still open.
	f, err := New(Config{
		Stay:     testStay(),
		Sessions: sessions,
		Gateway:  h.gateway,
		Bookings: h.repo,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	h.flow = f
	h.selectStayDates(t)

	assert.ErrorIs(t, h.flow.Submit(context.Background(), booking.MethodDefault), ErrSessionLoading)
	assert.Empty(t, h.repo.inserted)
}

func TestSubmitWithoutCompleteRange(t *testing.T) {
	h := newHarness(t, signedIn())
	_, err := h.flow.SelectDate(testNow.AddDate(0, 0, 2))
	require.NoError(t, err)

	assert.ErrorIs(t, h.flow.Submit(context.Background(), booking.MethodDefault), ErrDatesRequired)
	assert.Empty(t, h.repo.inserted)
}

func TestSubmitDefaultMethodPersistsPending(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)
	h.flow.SetGuests(2)

	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodDefault))

	require.Len(t, h.repo.inserted, 1)
	row := h.repo.inserted[0]
	assert.Equal(t, booking.MethodDefault, row.PaymentMethod)
	assert.Equal(t, booking.PaymentPending, row.PaymentStatus)
	assert.Empty(t, row.PaymentID)
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, 2, row.Guests)
	assert.Equal(t, int64(3900), row.Total.Amount)

	assert.Equal(t, StateDone, h.flow.State())
	assert.Equal(t, daterange.Empty, h.flow.Selection().Phase())
	assert.Equal(t, 1, h.flow.Guests())
	assert.Equal(t, []string{"/bookings"}, h.routes)
	assert.Equal(t, 1, h.finished)
	assert.Zero(t, h.gateway.loadCalls)
}

func TestSubmitGatewaySuccessPersistsCompleted(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)

	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodGateway))
	assert.Equal(t, StatePaymentPending, h.flow.State())
	assert.Empty(t, h.repo.inserted)
	require.Len(t, h.gateway.opened, 1)

	req := h.gateway.opened[0]
	assert.Equal(t, money.Money{Amount: 3900, Currency: "INR"}, req.Amount)
	assert.Equal(t, "Stay Beyond", req.Name)
	assert.Equal(t, "#B8860B", req.ThemeColor)
	assert.False(t, req.Modal.Escape)
	assert.False(t, req.Modal.BackdropClose)
	assert.Equal(t, "ines@example.com", req.Prefill.Email)

	req.OnSuccess(context.Background(), "pay_123")

	require.Len(t, h.repo.inserted, 1)
	row := h.repo.inserted[0]
	assert.Equal(t, "pay_123", row.PaymentID)
	assert.Equal(t, booking.MethodGateway, row.PaymentMethod)
	assert.Equal(t, booking.PaymentCompleted, row.PaymentStatus)
	assert.Equal(t, StateDone, h.flow.State())
	assert.Equal(t, 1, h.finished)
}

func TestSubmitGatewayDismissKeepsFormAndAllowsRetry(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)

	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodGateway))
	require.Len(t, h.gateway.opened, 1)

	h.gateway.opened[0].OnDismiss(context.Background())

	assert.Empty(t, h.repo.inserted)
	assert.Equal(t, StateDatesSelected, h.flow.State())
	assert.Equal(t, daterange.Complete, h.flow.Selection().Phase())
	assert.Equal(t, 1, h.finished)

	// Dismissal released the busy guard so the same dates can be retried.
	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodDefault))
	assert.Len(t, h.repo.inserted, 1)
}

func TestSubmitRejectedWhilePaymentPending(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)

	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodGateway))
	assert.ErrorIs(t, h.flow.Submit(context.Background(), booking.MethodGateway), ErrBusy)
	assert.Len(t, h.gateway.opened, 1)
}

func TestSubmitGatewayLoadFailure(t *testing.T) {
	h := newHarness(t, signedIn())
	h.gateway.loadErr = errors.New("script blocked")
	h.selectStayDates(t)

	err := h.flow.Submit(context.Background(), booking.MethodGateway)
	assert.ErrorIs(t, err, ErrGatewayLoad)
	assert.Empty(t, h.gateway.opened)
	assert.Empty(t, h.repo.inserted)
	assert.Equal(t, StateDatesSelected, h.flow.State())
	assert.Equal(t, 1, h.finished)

	// The guard is released; a later attempt may retry the load.
	h.gateway.loadErr = nil
	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodGateway))
	assert.Len(t, h.gateway.opened, 1)
}

func TestPersistFailureKeepsSelectionAndSurfacesMessage(t *testing.T) {
	h := newHarness(t, signedIn())
	h.repo.insertErr = errors.New("duplicate booking for these dates")
	h.selectStayDates(t)

	err := h.flow.Submit(context.Background(), booking.MethodDefault)
	require.Error(t, err)
	assert.Equal(t, StateFailed, h.flow.State())
	assert.Equal(t, daterange.Complete, h.flow.Selection().Phase())

	last := h.notices[len(h.notices)-1]
	assert.Equal(t, NoticeError, last.Kind)
	assert.Equal(t, "duplicate booking for these dates", last.Detail)

	// The form survives, so fixing the cause and resubmitting works.
	h.repo.insertErr = nil
	require.NoError(t, h.flow.Submit(context.Background(), booking.MethodDefault))
	assert.Len(t, h.repo.inserted, 1)
	assert.Equal(t, StateDone, h.flow.State())
}

func TestSubmitUnknownMethod(t *testing.T) {
	h := newHarness(t, signedIn())
	h.selectStayDates(t)

	assert.ErrorIs(t, h.flow.Submit(context.Background(), booking.PaymentMethod("crypto")), ErrUnknownMethod)
	assert.Empty(t, h.repo.inserted)
	assert.Equal(t, 1, h.finished)
}
