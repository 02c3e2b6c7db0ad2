package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"staybeyond/internal/domain/catalog"
)

// StayRepository holds the stays catalog in memory, loaded from fixtures
// at startup.
type StayRepository struct {
	mu    sync.RWMutex
	items map[catalog.StayID]*catalog.Stay
}

func NewStayRepository() *StayRepository {
	return &StayRepository{items: make(map[catalog.StayID]*catalog.Stay)}
}

func (r *StayRepository) ByID(ctx context.Context, id catalog.StayID) (*catalog.Stay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if stay, ok := r.items[id]; ok {
		return cloneStay(stay), nil
	}
	return nil, catalog.ErrStayNotFound
}

func (r *StayRepository) Search(ctx context.Context, params catalog.SearchParams) ([]*catalog.Stay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	city := strings.ToLower(strings.TrimSpace(params.City))
	propertyType := strings.ToLower(strings.TrimSpace(params.PropertyType))

	out := make([]*catalog.Stay, 0, len(r.items))
	for _, stay := range r.items {
		if city != "" && !strings.Contains(strings.ToLower(stay.City), city) && !strings.Contains(strings.ToLower(stay.Location), city) {
			continue
		}
		if propertyType != "" && strings.ToLower(stay.PropertyType) != propertyType {
			continue
		}
		if params.MinGuests > 0 && stay.MaxGuests < params.MinGuests {
			continue
		}
		if params.PriceMin > 0 && stay.NightlyRate.Amount < params.PriceMin {
			continue
		}
		if params.PriceMax > 0 && stay.NightlyRate.Amount > params.PriceMax {
			continue
		}
		if params.FeaturedOnly && !stay.Featured {
			continue
		}
		out = append(out, cloneStay(stay))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *StayRepository) Save(ctx context.Context, stay *catalog.Stay) error {
	if stay == nil || stay.ID == "" {
		return catalog.ErrStayNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[stay.ID] = cloneStay(stay)
	return nil
}

func cloneStay(s *catalog.Stay) *catalog.Stay {
	copyStay := *s
	copyStay.Images = append([]string(nil), s.Images...)
	copyStay.Amenities = append([]string(nil), s.Amenities...)
	return &copyStay
}

// TransportRepository holds transport options in memory.
type TransportRepository struct {
	mu    sync.RWMutex
	items map[catalog.TransportID]*catalog.Transport
}

func NewTransportRepository() *TransportRepository {
	return &TransportRepository{items: make(map[catalog.TransportID]*catalog.Transport)}
}

func (r *TransportRepository) ByID(ctx context.Context, id catalog.TransportID) (*catalog.Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if option, ok := r.items[id]; ok {
		return cloneTransport(option), nil
	}
	return nil, catalog.ErrTransportNotFound
}

func (r *TransportRepository) List(ctx context.Context) ([]*catalog.Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*catalog.Transport, 0, len(r.items))
	for _, option := range r.items {
		out = append(out, cloneTransport(option))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TransportRepository) Save(ctx context.Context, transport *catalog.Transport) error {
	if transport == nil || transport.ID == "" {
		return catalog.ErrTransportNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[transport.ID] = cloneTransport(transport)
	return nil
}

func cloneTransport(t *catalog.Transport) *catalog.Transport {
	copyTransport := *t
	copyTransport.Features = append([]string(nil), t.Features...)
	copyTransport.AvailableLocations = append([]string(nil), t.AvailableLocations...)
	return &copyTransport
}

var _ catalog.StayRepository = (*StayRepository)(nil)
var _ catalog.TransportRepository = (*TransportRepository)(nil)
