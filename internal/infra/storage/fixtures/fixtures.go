package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/money"
)

// Files read from the fixtures directory at startup.
const (
	StaysFile     = "stays.json"
	TransportFile = "transport.json"
)

type stayFixture struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Location         string   `json:"location"`
	City             string   `json:"city"`
	Region           string   `json:"region"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"long_description"`
	NightlyRate      int64    `json:"nightly_rate"`
	Currency         string   `json:"currency"`
	Images           []string `json:"images"`
	MaxGuests        int      `json:"max_guests"`
	Bedrooms         int      `json:"bedrooms"`
	Beds             int      `json:"beds"`
	Baths            int      `json:"baths"`
	Rating           float64  `json:"rating"`
	ReviewCount      int      `json:"review_count"`
	Amenities        []string `json:"amenities"`
	PropertyType     string   `json:"property_type"`
	BookingAvailable bool     `json:"booking_available"`
	Featured         bool     `json:"featured"`
	Host             struct {
		Name      string `json:"name"`
		Image     string `json:"image"`
		JoinedAt  string `json:"joined_at"`
		Superhost bool   `json:"superhost"`
	} `json:"host"`
}

type transportFixture struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Description        string   `json:"description"`
	LongDescription    string   `json:"long_description"`
	BasePrice          int64    `json:"base_price"`
	Currency           string   `json:"currency"`
	Image              string   `json:"image"`
	Features           []string `json:"features"`
	Duration           string   `json:"duration"`
	Origin             string   `json:"origin"`
	Destination        string   `json:"destination"`
	Featured           bool     `json:"featured"`
	AvailableLocations []string `json:"available_locations"`
}

// LoadStays seeds the stays catalog from dir/stays.json.
func LoadStays(ctx context.Context, dir, defaultCurrency string, repo catalog.StayRepository) (int, error) {
	raw, err := os.ReadFile(filepath.Join(dir, StaysFile))
	if err != nil {
		return 0, fmt.Errorf("fixtures: read stays: %w", err)
	}
	var entries []stayFixture
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("fixtures: parse stays: %w", err)
	}
	for _, entry := range entries {
		currency := entry.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		rate, err := money.New(entry.NightlyRate, currency)
		if err != nil {
			return 0, fmt.Errorf("fixtures: stay %s: %w", entry.ID, err)
		}
		var joined time.Time
		if entry.Host.JoinedAt != "" {
			joined, err = time.Parse("2006-01-02", entry.Host.JoinedAt)
			if err != nil {
				return 0, fmt.Errorf("fixtures: stay %s host joined_at: %w", entry.ID, err)
			}
		}
		stay, err := catalog.NewStay(catalog.CreateStayParams{
			ID:               catalog.StayID(entry.ID),
			Name:             entry.Name,
			Location:         entry.Location,
			City:             entry.City,
			Region:           entry.Region,
			Description:      entry.Description,
			LongDescription:  entry.LongDescription,
			NightlyRate:      rate,
			Images:           entry.Images,
			MaxGuests:        entry.MaxGuests,
			Bedrooms:         entry.Bedrooms,
			Beds:             entry.Beds,
			Baths:            entry.Baths,
			Rating:           entry.Rating,
			ReviewCount:      entry.ReviewCount,
			Amenities:        entry.Amenities,
			PropertyType:     entry.PropertyType,
			BookingAvailable: entry.BookingAvailable,
			Featured:         entry.Featured,
			Host: catalog.Host{
				Name:      entry.Host.Name,
				Image:     entry.Host.Image,
				JoinedAt:  joined,
				Superhost: entry.Host.Superhost,
			},
		})
		if err != nil {
			return 0, fmt.Errorf("fixtures: stay %s: %w", entry.ID, err)
		}
		if err := repo.Save(ctx, stay); err != nil {
			return 0, fmt.Errorf("fixtures: save stay %s: %w", entry.ID, err)
		}
	}
	return len(entries), nil
}

// LoadTransport seeds the transport catalog from dir/transport.json.
func LoadTransport(ctx context.Context, dir, defaultCurrency string, repo catalog.TransportRepository) (int, error) {
	raw, err := os.ReadFile(filepath.Join(dir, TransportFile))
	if err != nil {
		return 0, fmt.Errorf("fixtures: read transport: %w", err)
	}
	var entries []transportFixture
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("fixtures: parse transport: %w", err)
	}
	for _, entry := range entries {
		transportType, err := catalog.ParseTransportType(entry.Type)
		if err != nil {
			return 0, fmt.Errorf("fixtures: transport %s: %w", entry.ID, err)
		}
		currency := entry.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		price, err := money.New(entry.BasePrice, currency)
		if err != nil {
			return 0, fmt.Errorf("fixtures: transport %s: %w", entry.ID, err)
		}
		option := &catalog.Transport{
			ID:                 catalog.TransportID(entry.ID),
			Name:               entry.Name,
			Type:               transportType,
			Description:        entry.Description,
			LongDescription:    entry.LongDescription,
			BasePrice:          price,
			Image:              entry.Image,
			Features:           entry.Features,
			Duration:           entry.Duration,
			Origin:             entry.Origin,
			Destination:        entry.Destination,
			Featured:           entry.Featured,
			AvailableLocations: entry.AvailableLocations,
		}
		if err := repo.Save(ctx, option); err != nil {
			return 0, fmt.Errorf("fixtures: save transport %s: %w", entry.ID, err)
		}
	}
	return len(entries), nil
}
