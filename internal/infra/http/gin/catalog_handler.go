package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybeyond/internal/app/dto"
	cataloghandlers "staybeyond/internal/app/handlers/catalog"
	"staybeyond/internal/app/queries"
	domaincatalog "staybeyond/internal/domain/catalog"
	domainrange "staybeyond/internal/domain/shared/daterange"
)

type CatalogHTTP interface {
	SearchStays(c *gin.Context)
	GetStay(c *gin.Context)
	ListTransport(c *gin.Context)
	GetTransport(c *gin.Context)
}

type CatalogHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h CatalogHandler) SearchStays(c *gin.Context) {
	q := cataloghandlers.SearchStaysQuery{
		City:         c.Query("city"),
		PropertyType: c.Query("property_type"),
		FeaturedOnly: c.Query("featured") == "true",
	}
	if raw := c.Query("guests"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.MinGuests = v
		}
	}
	if raw := c.Query("price_min"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.PriceMin = v
		}
	}
	if raw := c.Query("price_max"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.PriceMax = v
		}
	}

	result, err := queries.Ask[cataloghandlers.SearchStaysQuery, dto.StayCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("stay search failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) GetStay(c *gin.Context) {
	q := cataloghandlers.GetStayQuery{StayID: c.Param("id")}
	if raw := c.Query("checkin_date"); raw != "" {
		checkIn, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkin_date"})
			return
		}
		q.CheckIn = checkIn
	}
	if raw := c.Query("checkout_date"); raw != "" {
		checkOut, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout_date"})
			return
		}
		q.CheckOut = checkOut
	}

	result, err := queries.Ask[cataloghandlers.GetStayQuery, *cataloghandlers.StayDetailResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		switch {
		case errors.Is(err, domaincatalog.ErrStayNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domainrange.ErrInvalidRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			if h.Logger != nil {
				h.Logger.Error("stay lookup failed", "error", err, "stay_id", q.StayID)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ListTransport(c *gin.Context) {
	q := cataloghandlers.ListTransportQuery{Type: strings.TrimSpace(c.Query("type"))}
	result, err := queries.Ask[cataloghandlers.ListTransportQuery, dto.TransportCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		if errors.Is(err, domaincatalog.ErrTransportType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("transport list failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) GetTransport(c *gin.Context) {
	q := cataloghandlers.GetTransportQuery{TransportID: c.Param("id")}
	result, err := queries.Ask[cataloghandlers.GetTransportQuery, dto.TransportSummary](c.Request.Context(), h.Queries, q)
	if err != nil {
		if errors.Is(err, domaincatalog.ErrTransportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("transport lookup failed", "error", err, "transport_id", q.TransportID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CatalogHTTP = (*CatalogHandler)(nil)
