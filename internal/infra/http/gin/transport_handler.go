package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/dto"
	transporthandlers "staybeyond/internal/app/handlers/transport"
	"staybeyond/internal/app/queries"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	domainrange "staybeyond/internal/domain/shared/daterange"
)

type TransportHTTP interface {
	Book(c *gin.Context)
	ListMine(c *gin.Context)
}

type TransportHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type bookTransportRequest struct {
	TransportID string `json:"transport_id"`
	Departure   string `json:"departure_date"`
	Passengers  int    `json:"passengers"`
}

func (h TransportHandler) Book(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req bookTransportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.TransportID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transport_id is required"})
		return
	}
	departure, err := time.Parse(dateLayout, req.Departure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid departure_date"})
		return
	}

	cmd := transporthandlers.BookTransportCommand{
		CommandID:   uuid.NewString(),
		UserID:      p.ID,
		TransportID: req.TransportID,
		Departure:   departure,
		Passengers:  req.Passengers,
	}
	result, err := commands.Dispatch[transporthandlers.BookTransportCommand, *transporthandlers.BookTransportResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondTransportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h TransportHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[transporthandlers.ListMyTransportQuery, dto.TransportBookingCollection](
		c.Request.Context(), h.Queries, transporthandlers.ListMyTransportQuery{UserID: p.ID})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("list transport bookings failed", "error", err, "user_id", p.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TransportHandler) respondTransportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainrange.ErrDateInPast),
		errors.Is(err, domainbooking.ErrInvalidPassengers),
		errors.Is(err, domainbooking.ErrDepartureRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrTransportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("transport booking failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var _ TransportHTTP = (*TransportHandler)(nil)
