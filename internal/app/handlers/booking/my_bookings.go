package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"staybeyond/internal/app/dto"
	"staybeyond/internal/app/queries"
	domainbooking "staybeyond/internal/domain/booking"
)

const listMyBookingsKey = "booking.list_mine"

type ListMyBookingsQuery struct {
	UserID string
}

func (q ListMyBookingsQuery) Key() string { return listMyBookingsKey }

type ListMyBookingsHandler struct {
	Bookings domainbooking.Repository
	Logger   *slog.Logger
}

// Handle returns the user's stay bookings newest first.
func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.BookingCollection, error) {
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		return dto.BookingCollection{}, errors.New("user id is required")
	}

	rows, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	items := make([]dto.BookingSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.MapBookingSummary(row))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("bookings listed", "user_id", userID, "count", len(items))
	}

	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListMyBookingsQuery, dto.BookingCollection] = (*ListMyBookingsHandler)(nil)
