package memory

import (
	"context"
	"sync"

	domainbooking "staybeyond/internal/domain/booking"
)

// BookingRepository stores stay bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) Insert(ctx context.Context, booking *domainbooking.Booking) error {
	if booking == nil || booking.ID == "" {
		return domainbooking.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyBooking := *booking
	r.items[booking.ID] = &copyBooking
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.UserID != userID {
			continue
		}
		copyBooking := *booking
		out = append(out, &copyBooking)
	}
	return out, nil
}

// TransportBookingRepository stores transport bookings in memory.
type TransportBookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.TransportBookingID]*domainbooking.TransportBooking
}

func NewTransportBookingRepository() *TransportBookingRepository {
	return &TransportBookingRepository{items: make(map[domainbooking.TransportBookingID]*domainbooking.TransportBooking)}
}

func (r *TransportBookingRepository) Insert(ctx context.Context, booking *domainbooking.TransportBooking) error {
	if booking == nil || booking.ID == "" {
		return domainbooking.ErrTransportNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyBooking := *booking
	r.items[booking.ID] = &copyBooking
	return nil
}

func (r *TransportBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.TransportBooking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.TransportBooking, 0)
	for _, booking := range r.items {
		if booking.UserID != userID {
			continue
		}
		copyBooking := *booking
		out = append(out, &copyBooking)
	}
	return out, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
var _ domainbooking.TransportRepository = (*TransportBookingRepository)(nil)
