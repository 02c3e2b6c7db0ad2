package booking

import (
	"time"

	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/daterange"
	"staybeyond/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID BookingID
	StayID    catalog.StayID
	UserID    string
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	Method    PaymentMethod
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type PaymentCaptured struct {
	BookingID BookingID
	PaymentID string
	Amount    money.Money
	At        time.Time
}

func (e PaymentCaptured) EventName() string     { return "booking.payment_captured" }
func (e PaymentCaptured) AggregateID() string   { return string(e.BookingID) }
func (e PaymentCaptured) OccurredAt() time.Time { return e.At }

type TransportBooked struct {
	BookingID   TransportBookingID
	TransportID catalog.TransportID
	UserID      string
	Departure   time.Time
	Passengers  int
	Total       money.Money
	At          time.Time
}

func (e TransportBooked) EventName() string     { return "transport.booked" }
func (e TransportBooked) AggregateID() string   { return string(e.BookingID) }
func (e TransportBooked) OccurredAt() time.Time { return e.At }
