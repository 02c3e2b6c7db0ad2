package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybeyond/internal/infra/payment/razorpay"
)

type PaymentHTTP interface {
	Complete(c *gin.Context)
	Dismiss(c *gin.Context)
}

// PaymentHandler receives the hosted checkout's outcome callbacks and
// resolves the pending attempt. There is no timeout path: until one of
// these arrives, the attempt stays open.
type PaymentHandler struct {
	Gateway *razorpay.Gateway
	Logger  *slog.Logger
}

type completePaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id"`
}

func (h PaymentHandler) Complete(c *gin.Context) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable"})
		return
	}
	var req completePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PaymentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "razorpay_payment_id is required"})
		return
	}
	if err := h.Gateway.CompletePayment(c.Request.Context(), strings.TrimSpace(req.PaymentID)); err != nil {
		if errors.Is(err, razorpay.ErrNoOpenCheckout) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("payment completion failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h PaymentHandler) Dismiss(c *gin.Context) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable"})
		return
	}
	if err := h.Gateway.DismissCheckout(c.Request.Context()); err != nil {
		if errors.Is(err, razorpay.ErrNoOpenCheckout) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("payment dismissal failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

var _ PaymentHTTP = (*PaymentHandler)(nil)
