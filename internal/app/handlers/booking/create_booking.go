package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/middleware"
	"staybeyond/internal/app/outbox"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/pricing"
	domainrange "staybeyond/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

// CreateBookingCommand books a stay for a signed-in user as a pay-later
// reservation. Gateway-paid bookings go through the checkout flow instead,
// which persists only after the provider's completion callback.
// IdempotencyKeyV is optional; when present, a repeat dispatch replays the
// original result instead of inserting a second row.
type CreateBookingCommand struct {
	CommandID       string
	UserID          string
	StayID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return domainbooking.ErrUserRequired
	}
	if strings.TrimSpace(c.StayID) == "" {
		return catalog.ErrStayNotFound
	}
	if c.CheckIn.IsZero() || c.CheckOut.IsZero() {
		return domainrange.ErrInvalidRange
	}
	return nil
}

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID     string `json:"booking_id"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
	Nights        int    `json:"nights"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
}

type CreateBookingHandler struct {
	Stays    catalog.StayRepository
	Bookings domainbooking.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}

	stay, err := h.Stays.ByID(ctx, catalog.StayID(cmd.StayID))
	if err != nil {
		return nil, err
	}

	quote := pricing.Quote(dr.Nights(), stay.NightlyRate)

	record, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		UserID:    cmd.UserID,
		Stay:      stay,
		Range:     dr,
		Guests:    stay.ClampGuests(cmd.Guests),
		Total:     quote.Total,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := h.Bookings.Insert(ctx, record); err != nil {
		return nil, err
	}

	pending := record.PendingEvents()
	record.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking created",
			"booking_id", record.ID,
			"stay_id", record.StayID,
			"user_id", record.UserID,
			"nights", quote.Nights,
			"payment_status", record.PaymentStatus,
		)
	}

	return &CreateBookingResult{
		BookingID:     string(record.ID),
		Total:         record.Total.Amount,
		Currency:      record.Total.Currency,
		Nights:        quote.Nights,
		PaymentMethod: string(record.PaymentMethod),
		PaymentStatus: string(record.PaymentStatus),
	}, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
