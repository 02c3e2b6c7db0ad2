package catalog

import (
	"context"
	"log/slog"
	"time"

	"staybeyond/internal/app/dto"
	"staybeyond/internal/app/queries"
	domaincatalog "staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/pricing"
	domainrange "staybeyond/internal/domain/shared/daterange"
)

const (
	searchStaysKey = "catalog.stays.search"
	getStayKey     = "catalog.stays.get"
)

type SearchStaysQuery struct {
	City         string
	PropertyType string
	MinGuests    int
	PriceMin     int64
	PriceMax     int64
	FeaturedOnly bool
}

func (q SearchStaysQuery) Key() string { return searchStaysKey }

type SearchStaysHandler struct {
	Stays  domaincatalog.StayRepository
	Logger *slog.Logger
}

func (h *SearchStaysHandler) Handle(ctx context.Context, q SearchStaysQuery) (dto.StayCollection, error) {
	stays, err := h.Stays.Search(ctx, domaincatalog.SearchParams{
		City:         q.City,
		PropertyType: q.PropertyType,
		MinGuests:    q.MinGuests,
		PriceMin:     q.PriceMin,
		PriceMax:     q.PriceMax,
		FeaturedOnly: q.FeaturedOnly,
	})
	if err != nil {
		return dto.StayCollection{}, err
	}

	items := make([]dto.StaySummary, 0, len(stays))
	for _, stay := range stays {
		items = append(items, dto.MapStaySummary(stay))
	}

	if h.Logger != nil {
		h.Logger.Debug("stays searched", "city", q.City, "count", len(items))
	}

	return dto.StayCollection{Items: items, Total: len(items)}, nil
}

// GetStayQuery returns a stay detail, optionally with a price quote when a
// complete check-in/check-out pair is supplied.
type GetStayQuery struct {
	StayID   string
	CheckIn  time.Time
	CheckOut time.Time
}

func (q GetStayQuery) Key() string { return getStayKey }

type StayDetailResult struct {
	Stay  dto.StayDetail     `json:"stay"`
	Quote *dto.PriceQuoteDTO `json:"quote,omitempty"`
}

type GetStayHandler struct {
	Stays domaincatalog.StayRepository
}

func (h *GetStayHandler) Handle(ctx context.Context, q GetStayQuery) (*StayDetailResult, error) {
	stay, err := h.Stays.ByID(ctx, domaincatalog.StayID(q.StayID))
	if err != nil {
		return nil, err
	}

	result := &StayDetailResult{Stay: dto.MapStayDetail(stay)}
	if !q.CheckIn.IsZero() && !q.CheckOut.IsZero() {
		dr, err := domainrange.New(q.CheckIn, q.CheckOut)
		if err != nil {
			return nil, err
		}
		quote := dto.MapPriceQuote(pricing.Quote(dr.Nights(), stay.NightlyRate))
		result.Quote = &quote
	}
	return result, nil
}

var _ queries.Handler[SearchStaysQuery, dto.StayCollection] = (*SearchStaysHandler)(nil)
var _ queries.Handler[GetStayQuery, *StayDetailResult] = (*GetStayHandler)(nil)
