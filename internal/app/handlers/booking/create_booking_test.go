package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/daterange"
	"staybeyond/internal/domain/shared/money"
	"staybeyond/internal/infra/storage/memory"
)

// Dates far in the future so the check-in validation never trips as the
// clock advances.
var (
	checkIn  = time.Date(2030, time.June, 12, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2030, time.June, 15, 0, 0, 0, 0, time.UTC)
)

func newHandler(t *testing.T) (*CreateBookingHandler, *memory.BookingRepository, *memory.OutboxStore) {
	t.Helper()
	stays := memory.NewStayRepository()
	require.NoError(t, stays.Save(context.Background(), &catalog.Stay{
		ID:          "stay-1",
		Name:        "Lake Pichola Heritage Palace",
		Location:    "Udaipur",
		NightlyRate: money.Must(1000, "INR"),
		MaxGuests:   4,
	}))
	bookings := memory.NewBookingRepository()
	box := memory.NewOutboxStore()
	return &CreateBookingHandler{Stays: stays, Bookings: bookings, Outbox: box}, bookings, box
}

func TestCreateBookingPayLater(t *testing.T) {
	h, bookings, box := newHandler(t)
	ctx := context.Background()

	res, err := h.Handle(ctx, CreateBookingCommand{
		CommandID: "bk-1",
		UserID:    "user-1",
		StayID:    "stay-1",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, "bk-1", res.BookingID)
	assert.Equal(t, 3, res.Nights)
	assert.Equal(t, int64(3900), res.Total)
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, string(domainbooking.MethodDefault), res.PaymentMethod)
	assert.Equal(t, string(domainbooking.PaymentPending), res.PaymentStatus)

	rows, err := bookings.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lake Pichola Heritage Palace", rows[0].StayName)

	// The domain event landed in the outbox, claimable by the worker.
	doc, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "booking.created", doc.Name)
}

func TestCreateBookingNeverMarksPaymentCaptured(t *testing.T) {
	// The command has no payment input at all: captures happen only through
	// the checkout flow's provider callback.
	h, _, box := newHandler(t)
	ctx := context.Background()

	res, err := h.Handle(ctx, CreateBookingCommand{
		CommandID: "bk-2",
		UserID:    "user-1",
		StayID:    "stay-1",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.MethodDefault), res.PaymentMethod)
	assert.Equal(t, string(domainbooking.PaymentPending), res.PaymentStatus)

	names := []string{}
	for {
		doc, err := box.Claim(ctx, "worker-1")
		require.NoError(t, err)
		if doc == nil {
			break
		}
		names = append(names, doc.Name)
	}
	assert.Equal(t, []string{"booking.created"}, names, "no payment_captured event without a gateway callback")
}

func TestCreateBookingClampsGuests(t *testing.T) {
	h, bookings, _ := newHandler(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, CreateBookingCommand{
		CommandID: "bk-3",
		UserID:    "user-1",
		StayID:    "stay-1",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    9,
	})
	require.NoError(t, err)

	rows, err := bookings.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Guests, "clamped to the stay's capacity")
}

func TestCreateBookingValidation(t *testing.T) {
	h, _, _ := newHandler(t)
	ctx := context.Background()

	t.Run("unknown stay", func(t *testing.T) {
		_, err := h.Handle(ctx, CreateBookingCommand{
			CommandID: "bk-4", UserID: "user-1", StayID: "missing",
			CheckIn: checkIn, CheckOut: checkOut, Guests: 2,
		})
		assert.ErrorIs(t, err, catalog.ErrStayNotFound)
	})
	t.Run("inverted range", func(t *testing.T) {
		_, err := h.Handle(ctx, CreateBookingCommand{
			CommandID: "bk-5", UserID: "user-1", StayID: "stay-1",
			CheckIn: checkOut, CheckOut: checkIn, Guests: 2,
		})
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	})
	t.Run("past check-in", func(t *testing.T) {
		_, err := h.Handle(ctx, CreateBookingCommand{
			CommandID: "bk-6", UserID: "user-1", StayID: "stay-1",
			CheckIn:  time.Date(2020, time.June, 12, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC),
			Guests:   2,
		})
		assert.ErrorIs(t, err, daterange.ErrDateInPast)
	})
}
