package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/daterange"
	"staybeyond/internal/domain/shared/events"
	"staybeyond/internal/domain/shared/money"
)

var (
	ErrNotFound       = errors.New("booking: not found")
	ErrUserRequired   = errors.New("booking: user id required")
	ErrInvalidGuests  = errors.New("booking: guests count out of bounds")
	ErrInvalidTotal   = errors.New("booking: total must be positive")
	ErrRangeRequired  = errors.New("booking: a complete date range is required")
	ErrPaymentIDEmpty = errors.New("booking: gateway bookings require a payment id")
)

type BookingID string

// PaymentMethod distinguishes pay-later reservations from hosted-checkout
// payments.
type PaymentMethod string

const (
	MethodDefault PaymentMethod = "default"
	MethodGateway PaymentMethod = "gateway"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Booking is one immutable row per confirmed reservation. There is no update
// path once created; cancellation elsewhere in the system deletes the row.
// The stay identity is snapshotted so the record survives catalog changes.
type Booking struct {
	ID            BookingID
	UserID        string
	StayID        catalog.StayID
	StayName      string
	StayLocation  string
	StayImage     string
	Range         daterange.DateRange
	Guests        int
	Total         money.Money
	PaymentID     string
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	events.EventRecorder
}

type CreateParams struct {
	ID        BookingID
	UserID    string
	Stay      *catalog.Stay
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	PaymentID string
	CreatedAt time.Time
}

// NewBooking builds the persisted record from a confirmed submission. The
// payment method and status are derived from the presence of a payment id,
// mirroring the reconciliation flow's two outcomes: a hosted-checkout payment
// carries its id and is completed, a pay-later reservation carries none and
// stays pending.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if params.Stay == nil {
		return nil, catalog.ErrStayNotFound
	}
	if err := params.Range.Validate(); err != nil {
		return nil, ErrRangeRequired
	}
	if params.Guests < 1 || params.Guests > params.Stay.MaxGuests {
		return nil, ErrInvalidGuests
	}
	if params.Total.Amount <= 0 || params.Total.Currency == "" {
		return nil, ErrInvalidTotal
	}
	method := MethodDefault
	status := PaymentPending
	if params.PaymentID != "" {
		method = MethodGateway
		status = PaymentCompleted
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		UserID:        params.UserID,
		StayID:        params.Stay.ID,
		StayName:      params.Stay.Name,
		StayLocation:  params.Stay.Location,
		StayImage:     params.Stay.Thumbnail(),
		Range:         params.Range,
		Guests:        params.Guests,
		Total:         params.Total,
		PaymentID:     params.PaymentID,
		PaymentMethod: method,
		PaymentStatus: status,
		CreatedAt:     now,
	}
	b.Record(BookingCreated{
		BookingID: b.ID,
		StayID:    b.StayID,
		UserID:    b.UserID,
		Range:     b.Range,
		Guests:    b.Guests,
		Total:     b.Total,
		Method:    b.PaymentMethod,
		At:        now,
	})
	if b.PaymentStatus == PaymentCompleted {
		b.Record(PaymentCaptured{BookingID: b.ID, PaymentID: b.PaymentID, Amount: b.Total, At: now})
	}
	return b, nil
}

// Repository is the persistence-client boundary for stay bookings. Insert
// stores exactly one new row; implementations return a descriptive error
// message on constraint or transport failures, surfaced verbatim to the user.
type Repository interface {
	Insert(ctx context.Context, booking *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
}

// ValidateCheckIn rejects ranges whose check-in lies before today.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkIn := time.Date(dr.CheckIn.Year(), dr.CheckIn.Month(), dr.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return daterange.ErrDateInPast
	}
	return nil
}
