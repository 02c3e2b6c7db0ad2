package catalog

import (
	"context"
	"errors"
	"strings"

	"staybeyond/internal/domain/shared/money"
)

var (
	ErrTransportNotFound = errors.New("catalog: transport option not found")
	ErrTransportType     = errors.New("catalog: unknown transport type")
)

// TransportType classifies a transport option.
type TransportType string

const (
	TransportAir   TransportType = "air"
	TransportRoad  TransportType = "road"
	TransportRail  TransportType = "rail"
	TransportWater TransportType = "water"
)

func ParseTransportType(raw string) (TransportType, error) {
	switch TransportType(strings.ToLower(strings.TrimSpace(raw))) {
	case TransportAir:
		return TransportAir, nil
	case TransportRoad:
		return TransportRoad, nil
	case TransportRail:
		return TransportRail, nil
	case TransportWater:
		return TransportWater, nil
	default:
		return "", ErrTransportType
	}
}

type TransportID string

// Transport is a bookable transport option: charter jets, helicopters,
// chauffeured cars and the like. Priced per passenger.
type Transport struct {
	ID                 TransportID
	Name               string
	Type               TransportType
	Description        string
	LongDescription    string
	BasePrice          money.Money
	Image              string
	Features           []string
	Duration           string
	Origin             string
	Destination        string
	Featured           bool
	AvailableLocations []string
}

type TransportRepository interface {
	ByID(ctx context.Context, id TransportID) (*Transport, error)
	List(ctx context.Context) ([]*Transport, error)
	Save(ctx context.Context, transport *Transport) error
}
