package ginserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/dto"
	"staybeyond/internal/app/flow"
	bookinghandlers "staybeyond/internal/app/handlers/booking"
	"staybeyond/internal/app/payment"
	"staybeyond/internal/app/queries"
	domainbooking "staybeyond/internal/domain/booking"
	"staybeyond/internal/domain/catalog"
	domainrange "staybeyond/internal/domain/shared/daterange"
)

const dateLayout = "2006-01-02"

type BookingHTTP interface {
	Create(c *gin.Context)
	ListMine(c *gin.Context)
}

// CheckoutFlows hands out the live booking flow for one bearer session and
// stay.
type CheckoutFlows interface {
	Flow(ctx context.Context, token string, stayID catalog.StayID) (*flow.Flow, error)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Flows    CheckoutFlows
	Logger   *slog.Logger
}

// createBookingRequest carries no payment id: a pay-later booking needs
// none, and a gateway booking gets its id from the provider callback, never
// from the client.
type createBookingRequest struct {
	StayID        string `json:"stay_id"`
	CheckIn       string `json:"checkin_date"`
	CheckOut      string `json:"checkout_date"`
	Guests        int    `json:"guests"`
	PaymentMethod string `json:"payment_method"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.StayID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stay_id is required"})
		return
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkin_date"})
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout_date"})
		return
	}
	if checkOut.Before(checkIn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": domainrange.ErrInvalidRange.Error()})
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.PaymentMethod)) {
	case "", string(domainbooking.MethodDefault), "pay_later":
		h.createPayLater(c, p, req, checkIn, checkOut)
	case string(domainbooking.MethodGateway), "razorpay":
		h.createViaCheckout(c, p, req, checkIn, checkOut)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment_method"})
	}
}

func (h BookingHandler) createPayLater(c *gin.Context, p principal, req createBookingRequest, checkIn, checkOut time.Time) {
	// The caller may supply its own replay key; otherwise one booking per
	// user, stay and date pair is deduplicated.
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idemKey == "" {
		idemKey = fmt.Sprintf("%s|%s|%s|%s", p.ID, req.StayID, req.CheckIn, req.CheckOut)
	}

	cmd := bookinghandlers.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		UserID:          p.ID,
		StayID:          req.StayID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		IdempotencyKeyV: idemKey,
	}
	result, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// createViaCheckout drives the reconciliation flow: dates and guests are
// applied to the caller's flow for this stay, then the submit opens the
// hosted checkout and suspends. The booking is persisted by the provider's
// completion callback, not here.
func (h BookingHandler) createViaCheckout(c *gin.Context, p principal, req createBookingRequest, checkIn, checkOut time.Time) {
	if h.Flows == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "checkout unavailable"})
		return
	}
	ctx := c.Request.Context()
	fl, err := h.Flows.Flow(ctx, p.Token, catalog.StayID(req.StayID))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	if _, err := fl.SelectDate(checkIn); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := fl.SelectDate(checkOut); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fl.SetGuests(req.Guests)

	if err := fl.Submit(ctx, domainbooking.MethodGateway); err != nil {
		h.respondFlowError(c, err)
		return
	}
	quote := fl.Quote()
	c.JSON(http.StatusAccepted, gin.H{
		"state":    string(fl.State()),
		"nights":   quote.Nights,
		"total":    quote.Total.Amount,
		"currency": quote.Total.Currency,
	})
}

func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookinghandlers.ListMyBookingsQuery, dto.BookingCollection](
		c.Request.Context(), h.Queries, bookinghandlers.ListMyBookingsQuery{UserID: p.ID})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("list bookings failed", "error", err, "user_id", p.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) respondFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, flow.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrSessionLoading):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrDatesRequired), errors.Is(err, flow.ErrUnknownMethod),
		errors.Is(err, domainrange.ErrDateInPast):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrBusy), errors.Is(err, payment.ErrCheckoutOpen):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrGatewayLoad):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.respondBookingError(c, err)
	}
}

func (h BookingHandler) respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainrange.ErrDateInPast),
		errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrRangeRequired),
		errors.Is(err, domainbooking.ErrInvalidTotal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrStayNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("booking create failed", "error", err)
		}
		// Persistence failures carry messages meant for the user.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var _ BookingHTTP = (*BookingHandler)(nil)
