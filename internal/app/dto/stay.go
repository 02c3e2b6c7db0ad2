package dto

import (
	"time"

	"staybeyond/internal/domain/catalog"
)

type HostDTO struct {
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
	Superhost bool      `json:"superhost"`
}

type StaySummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	City         string   `json:"city,omitempty"`
	Region       string   `json:"region,omitempty"`
	Description  string   `json:"description"`
	NightlyRate  MoneyDTO `json:"nightly_rate"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	MaxGuests    int      `json:"max_guests"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	PropertyType string   `json:"property_type,omitempty"`
	Featured     bool     `json:"featured"`
	Bookable     bool     `json:"bookable"`
}

type StayDetail struct {
	StaySummary
	LongDescription string   `json:"long_description,omitempty"`
	Images          []string `json:"images"`
	Bedrooms        int      `json:"bedrooms"`
	Beds            int      `json:"beds"`
	Baths           int      `json:"baths"`
	Amenities       []string `json:"amenities"`
	Host            HostDTO  `json:"host"`
}

type StayCollection struct {
	Items []StaySummary `json:"items"`
	Total int           `json:"total"`
}

func MapStaySummary(stay *catalog.Stay) StaySummary {
	return StaySummary{
		ID:           string(stay.ID),
		Name:         stay.Name,
		Location:     stay.Location,
		City:         stay.City,
		Region:       stay.Region,
		Description:  stay.Description,
		NightlyRate:  MapMoney(stay.NightlyRate),
		Thumbnail:    stay.Thumbnail(),
		MaxGuests:    stay.MaxGuests,
		Rating:       stay.Rating,
		ReviewCount:  stay.ReviewCount,
		PropertyType: stay.PropertyType,
		Featured:     stay.Featured,
		Bookable:     stay.BookingAvailable,
	}
}

func MapStayDetail(stay *catalog.Stay) StayDetail {
	return StayDetail{
		StaySummary:     MapStaySummary(stay),
		LongDescription: stay.LongDescription,
		Images:          append([]string(nil), stay.Images...),
		Bedrooms:        stay.Bedrooms,
		Beds:            stay.Beds,
		Baths:           stay.Baths,
		Amenities:       append([]string(nil), stay.Amenities...),
		Host: HostDTO{
			Name:      stay.Host.Name,
			Image:     stay.Host.Image,
			JoinedAt:  stay.Host.JoinedAt,
			Superhost: stay.Host.Superhost,
		},
	}
}
