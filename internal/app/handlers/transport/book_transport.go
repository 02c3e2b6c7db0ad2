package transport

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/outbox"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
)

const bookTransportKey = "transport.book"

// BookTransportCommand reserves transport seats. Transport is always
// pay-later, so there is no payment id here.
type BookTransportCommand struct {
	CommandID   string
	UserID      string
	TransportID string
	Departure   time.Time
	Passengers  int
}

func (c BookTransportCommand) Key() string { return bookTransportKey }

func (c BookTransportCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return domainbooking.ErrUserRequired
	}
	if strings.TrimSpace(c.TransportID) == "" {
		return catalog.ErrTransportNotFound
	}
	if c.Departure.IsZero() {
		return domainbooking.ErrDepartureRequired
	}
	if c.Passengers < 1 || c.Passengers > domainbooking.MaxPassengers {
		return domainbooking.ErrInvalidPassengers
	}
	return nil
}

type BookTransportResult struct {
	BookingID  string `json:"booking_id"`
	Total      int64  `json:"total"`
	Currency   string `json:"currency"`
	Passengers int    `json:"passengers"`
}

type BookTransportHandler struct {
	Transport catalog.TransportRepository
	Bookings  domainbooking.TransportRepository
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Logger    *slog.Logger
}

func (h *BookTransportHandler) Handle(ctx context.Context, cmd BookTransportCommand) (*BookTransportResult, error) {
	option, err := h.Transport.ByID(ctx, catalog.TransportID(cmd.TransportID))
	if err != nil {
		return nil, err
	}

	record, err := domainbooking.NewTransportBooking(domainbooking.CreateTransportParams{
		ID:         domainbooking.TransportBookingID(cmd.CommandID),
		UserID:     cmd.UserID,
		Transport:  option,
		Departure:  cmd.Departure,
		Passengers: cmd.Passengers,
		CreatedAt:  time.Now().UTC(),
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
		h.Logger.Info("transport booked",
			"booking_id", record.ID,
			"transport_id", record.TransportID,
			"user_id", record.UserID,
			"passengers", record.Passengers,
		)
	}

	return &BookTransportResult{
		BookingID:  string(record.ID),
		Total:      record.Total.Amount,
		Currency:   record.Total.Currency,
		Passengers: record.Passengers,
	}, nil
}

func (h *BookTransportHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[BookTransportCommand, *BookTransportResult] = (*BookTransportHandler)(nil)
