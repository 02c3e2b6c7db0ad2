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

// MaxPassengers bounds a single transport reservation.
const MaxPassengers = 20

var (
	ErrTransportNotFound = errors.New("booking: transport booking not found")
	ErrInvalidPassengers = errors.New("booking: passengers count out of bounds")
	ErrDepartureRequired = errors.New("booking: departure date required")
)

type TransportBookingID string

// TransportBooking parallels Booking for the transport catalog: a single
// departure date and a passenger count instead of a date range, and no
// payment step (transport is always pay-later).
type TransportBooking struct {
	ID            TransportBookingID
	UserID        string
	TransportID   catalog.TransportID
	TransportName string
	TransportType catalog.TransportType
	Image         string
	Origin        string
	Destination   string
	Departure     time.Time
	Passengers    int
	Total         money.Money
	CreatedAt     time.Time
	events.EventRecorder
}

type CreateTransportParams struct {
	ID         TransportBookingID
	UserID     string
	Transport  *catalog.Transport
	Departure  time.Time
	Passengers int
	CreatedAt  time.Time
}

func NewTransportBooking(params CreateTransportParams) (*TransportBooking, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if params.Transport == nil {
		return nil, catalog.ErrTransportNotFound
	}
	if params.Departure.IsZero() {
		return nil, ErrDepartureRequired
	}
	now := params.CreatedAt.UTC()
	departure := params.Departure.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return nil, daterange.ErrDateInPast
	}
	if params.Passengers < 1 || params.Passengers > MaxPassengers {
		return nil, ErrInvalidPassengers
	}
	total := params.Transport.BasePrice.Multiply(int64(params.Passengers))
	b := &TransportBooking{
		ID:            params.ID,
		UserID:        params.UserID,
		TransportID:   params.Transport.ID,
		TransportName: params.Transport.Name,
		TransportType: params.Transport.Type,
		Image:         params.Transport.Image,
		Origin:        params.Transport.Origin,
		Destination:   params.Transport.Destination,
		Departure:     departure,
		Passengers:    params.Passengers,
		Total:         total,
		CreatedAt:     now,
	}
	b.Record(TransportBooked{
		BookingID:   b.ID,
		TransportID: b.TransportID,
		UserID:      b.UserID,
		Departure:   b.Departure,
		Passengers:  b.Passengers,
		Total:       b.Total,
		At:          now,
	})
	return b, nil
}

type TransportRepository interface {
	Insert(ctx context.Context, booking *TransportBooking) error
	ListByUser(ctx context.Context, userID string) ([]*TransportBooking, error)
}
