package dto

import (
	"time"

	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
)

type TransportSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	BasePrice   MoneyDTO `json:"base_price"`
	Image       string   `json:"image,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Features    []string `json:"features"`
	Featured    bool     `json:"featured"`
}

type TransportCollection struct {
	Items []TransportSummary `json:"items"`
}

type TransportBookingSummary struct {
	ID            string    `json:"id"`
	TransportID   string    `json:"transport_id"`
	TransportName string    `json:"transport_name"`
	TransportType string    `json:"transport_type"`
	Image         string    `json:"image,omitempty"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	Departure     time.Time `json:"departure"`
	Passengers    int       `json:"passengers"`
	Total         MoneyDTO  `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
}

type TransportBookingCollection struct {
	Items []TransportBookingSummary `json:"items"`
}

func MapTransportSummary(t *catalog.Transport) TransportSummary {
	return TransportSummary{
		ID:          string(t.ID),
		Name:        t.Name,
		Type:        string(t.Type),
		Description: t.Description,
		BasePrice:   MapMoney(t.BasePrice),
		Image:       t.Image,
		Duration:    t.Duration,
		Origin:      t.Origin,
		Destination: t.Destination,
		Features:    append([]string(nil), t.Features...),
		Featured:    t.Featured,
	}
}

func MapTransportBookingSummary(b *domainbooking.TransportBooking) TransportBookingSummary {
	return TransportBookingSummary{
		ID:            string(b.ID),
		TransportID:   string(b.TransportID),
		TransportName: b.TransportName,
		TransportType: string(b.TransportType),
		Image:         b.Image,
		Origin:        b.Origin,
		Destination:   b.Destination,
		Departure:     b.Departure,
		Passengers:    b.Passengers,
		Total:         MapMoney(b.Total),
		CreatedAt:     b.CreatedAt,
	}
}
