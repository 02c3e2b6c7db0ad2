package catalog

import (
	"context"
	"strings"

	"staybeyond/internal/app/dto"
	"staybeyond/internal/app/queries"
	domaincatalog "staybeyond/internal/domain/catalog"
)

const (
	listTransportKey = "catalog.transport.list"
	getTransportKey  = "catalog.transport.get"
)

type ListTransportQuery struct {
	Type string // optional filter: air, road, rail, water
}

func (q ListTransportQuery) Key() string { return listTransportKey }

type ListTransportHandler struct {
	Transport domaincatalog.TransportRepository
}

func (h *ListTransportHandler) Handle(ctx context.Context, q ListTransportQuery) (dto.TransportCollection, error) {
	options, err := h.Transport.List(ctx)
	if err != nil {
		return dto.TransportCollection{}, err
	}

	var filter domaincatalog.TransportType
	if strings.TrimSpace(q.Type) != "" {
		filter, err = domaincatalog.ParseTransportType(q.Type)
		if err != nil {
			return dto.TransportCollection{}, err
		}
	}

	items := make([]dto.TransportSummary, 0, len(options))
	for _, option := range options {
		if filter != "" && option.Type != filter {
			continue
		}
		items = append(items, dto.MapTransportSummary(option))
	}
	return dto.TransportCollection{Items: items}, nil
}

type GetTransportQuery struct {
	TransportID string
}

func (q GetTransportQuery) Key() string { return getTransportKey }

type GetTransportHandler struct {
	Transport domaincatalog.TransportRepository
}

func (h *GetTransportHandler) Handle(ctx context.Context, q GetTransportQuery) (dto.TransportSummary, error) {
	option, err := h.Transport.ByID(ctx, domaincatalog.TransportID(q.TransportID))
	if err != nil {
		return dto.TransportSummary{}, err
	}
	return dto.MapTransportSummary(option), nil
}

var _ queries.Handler[ListTransportQuery, dto.TransportCollection] = (*ListTransportHandler)(nil)
var _ queries.Handler[GetTransportQuery, dto.TransportSummary] = (*GetTransportHandler)(nil)
