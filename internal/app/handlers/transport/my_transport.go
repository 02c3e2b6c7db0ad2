package transport

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

const listMyTransportKey = "transport.list_mine"

type ListMyTransportQuery struct {
	UserID string
}

func (q ListMyTransportQuery) Key() string { return listMyTransportKey }

type ListMyTransportHandler struct {
	Bookings domainbooking.TransportRepository
	Logger   *slog.Logger
}

func (h *ListMyTransportHandler) Handle(ctx context.Context, q ListMyTransportQuery) (dto.TransportBookingCollection, error) {
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		return dto.TransportBookingCollection{}, errors.New("user id is required")
	}

	rows, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return dto.TransportBookingCollection{}, err
	}

	items := make([]dto.TransportBookingSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.MapTransportBookingSummary(row))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("transport bookings listed", "user_id", userID, "count", len(items))
	}

	return dto.TransportBookingCollection{Items: items}, nil
}

var _ queries.Handler[ListMyTransportQuery, dto.TransportBookingCollection] = (*ListMyTransportHandler)(nil)
