package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybeyond/internal/domain/shared/money"
)

var (
	ErrStayNotFound     = errors.New("catalog: stay not found")
	ErrNameRequired     = errors.New("catalog: stay name required")
	ErrLocationRequired = errors.New("catalog: stay location required")
	ErrRateInvalid      = errors.New("catalog: nightly rate must be positive")
	ErrGuestsInvalid    = errors.New("catalog: max guests must be positive")
)

type StayID string

// Host is the display snapshot shown on a stay card.
type Host struct {
	Name      string
	Image     string
	JoinedAt  time.Time
	Superhost bool
}

// Stay is a catalog entry. The catalog is read-mostly: entries are loaded
// from fixtures at startup and only mutated when a host attaches photos.
type Stay struct {
	ID               StayID
	Name             string
	Location         string
	City             string
	Region           string
	Description      string
	LongDescription  string
	NightlyRate      money.Money
	Images           []string
	MaxGuests        int
	Bedrooms         int
	Beds             int
	Baths            int
	Rating           float64
	ReviewCount      int
	Amenities        []string
	PropertyType     string
	BookingAvailable bool
	Featured         bool
	Host             Host
}

type CreateStayParams struct {
	ID               StayID
	Name             string
	Location         string
	City             string
	Region           string
	Description      string
	LongDescription  string
	NightlyRate      money.Money
	Images           []string
	MaxGuests        int
	Bedrooms         int
	Beds             int
	Baths            int
	Rating           float64
	ReviewCount      int
	Amenities        []string
	PropertyType     string
	BookingAvailable bool
	Featured         bool
	Host             Host
}

func NewStay(params CreateStayParams) (*Stay, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return nil, ErrLocationRequired
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrRateInvalid
	}
	if params.MaxGuests <= 0 {
		return nil, ErrGuestsInvalid
	}
	return &Stay{
		ID:               params.ID,
		Name:             strings.TrimSpace(params.Name),
		Location:         strings.TrimSpace(params.Location),
		City:             params.City,
		Region:           params.Region,
		Description:      params.Description,
		LongDescription:  params.LongDescription,
		NightlyRate:      params.NightlyRate,
		Images:           append([]string(nil), params.Images...),
		MaxGuests:        params.MaxGuests,
		Bedrooms:         params.Bedrooms,
		Beds:             params.Beds,
		Baths:            params.Baths,
		Rating:           params.Rating,
		ReviewCount:      params.ReviewCount,
		Amenities:        append([]string(nil), params.Amenities...),
		PropertyType:     params.PropertyType,
		BookingAvailable: params.BookingAvailable,
		Featured:         params.Featured,
		Host:             params.Host,
	}, nil
}

// Thumbnail returns the primary display image, empty when none exist.
func (s *Stay) Thumbnail() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0]
}

// AttachImage appends an uploaded photo URL to the gallery.
func (s *Stay) AttachImage(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("catalog: image url required")
	}
	s.Images = append(s.Images, url)
	return nil
}

// ClampGuests bounds a requested party size to [1, MaxGuests]. The guest
// selector never errors; out-of-bounds requests are clamped before they can
// reach a booking submission.
func (s *Stay) ClampGuests(requested int) int {
	if requested < 1 {
		return 1
	}
	if requested > s.MaxGuests {
		return s.MaxGuests
	}
	return requested
}

// SearchParams filter the stays catalog the way the listings page does.
type SearchParams struct {
	City         string
	PropertyType string
	MinGuests    int
	PriceMin     int64
	PriceMax     int64
	FeaturedOnly bool
}

type StayRepository interface {
	ByID(ctx context.Context, id StayID) (*Stay, error)
	Search(ctx context.Context, params SearchParams) ([]*Stay, error)
	Save(ctx context.Context, stay *Stay) error
}
