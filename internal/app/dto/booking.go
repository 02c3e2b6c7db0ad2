package dto

import (
	"time"

	domainbooking "staybeyond/internal/domain/booking"
)

type BookingSummary struct {
	ID            string    `json:"id"`
	StayID        string    `json:"stay_id"`
	StayName      string    `json:"stay_name"`
	StayLocation  string    `json:"stay_location"`
	StayImage     string    `json:"stay_image,omitempty"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Nights        int       `json:"nights"`
	Guests        int       `json:"guests"`
	Total         MoneyDTO  `json:"total"`
	PaymentID     string    `json:"payment_id,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:            string(b.ID),
		StayID:        string(b.StayID),
		StayName:      b.StayName,
		StayLocation:  b.StayLocation,
		StayImage:     b.StayImage,
		CheckIn:       b.Range.CheckIn,
		CheckOut:      b.Range.CheckOut,
		Nights:        b.Range.Nights(),
		Guests:        b.Guests,
		Total:         MapMoney(b.Total),
		PaymentID:     b.PaymentID,
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus),
		CreatedAt:     b.CreatedAt,
	}
}
