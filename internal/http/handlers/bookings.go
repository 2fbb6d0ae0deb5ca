package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devta181281/flexfit/internal/http/middleware"
	"github.com/devta181281/flexfit/internal/http/validation"
	"github.com/devta181281/flexfit/internal/modules/bookings"
	"github.com/devta181281/flexfit/internal/modules/payments"
	"github.com/devta181281/flexfit/internal/shared/apperr"
)

type BookingsHandler struct {
	Payments *payments.Service
	Bookings *bookings.Service
}

func NewBookingsHandler(pay *payments.Service, bk *bookings.Service) *BookingsHandler {
	return &BookingsHandler{Payments: pay, Bookings: bk}
}

type createOrderRequest struct {
	GymID       string `json:"gym_id" binding:"required,uuid"`
	BookingDate string `json:"booking_date" binding:"required,datetime=2006-01-02"`
}

// POST /api/bookings/order
func (h *BookingsHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid order request.", validation.FromBindError(err, &req)))
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.BookingDate, time.UTC)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid booking date.", nil))
		return
	}

	res, err := h.Payments.CreateOrder(c.Request.Context(), payments.CreateOrderInput{
		UserID:      middleware.UserID(c),
		GymID:       req.GymID,
		BookingDate: date,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"order_id":     res.OrderID,
		"amount":       res.Amount,
		"amount_minor": res.AmountMinor,
		"currency":     res.Currency,
	})
}

type verifyRequest struct {
	OrderID   string  `json:"order_id" binding:"required"`
	PaymentID string  `json:"payment_id" binding:"required"`
	Signature string  `json:"signature" binding:"required"`
	Amount    float64 `json:"amount" binding:"omitempty,gt=0"`
}

// POST /api/bookings/verify
// Verifies the gateway callback triple and, on success, issues the booking
// from the verified order's own gym/user/date. Nothing about the booking is
// taken from the client here beyond the triple.
func (h *BookingsHandler) VerifyAndCreate(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid verification request.", validation.FromBindError(err, &req)))
		return
	}

	ctx := c.Request.Context()

	// Ownership is settled before anything is written; Verify persists a
	// receipt, so a post-verification rejection would strand a paid order.
	order, err := h.Payments.Order(ctx, req.OrderID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if order.UserID != middleware.UserID(c) {
		middleware.Fail(c, apperr.ForbiddenErr("This payment order belongs to another user."))
		return
	}

	receiptID, err := h.Payments.Verify(ctx, payments.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Amount:    req.Amount,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	b, err := h.Bookings.Create(ctx, bookings.CreateInput{
		UserID:      order.UserID,
		GymID:       order.GymID,
		BookingDate: order.BookingDate,
		ReceiptID:   receiptID,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"booking": bookingJSON(b),
	})
}

// GET /api/bookings
func (h *BookingsHandler) List(c *gin.Context) {
	items, err := h.Bookings.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, b := range items {
		out = append(out, bookingJSON(b))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": out})
}

func bookingJSON(b bookings.Booking) gin.H {
	out := gin.H{
		"id":           b.ID,
		"booking_code": b.BookingCode,
		"gym_id":       b.GymID,
		"booking_date": b.BookingDate.Format("2006-01-02"),
		"amount":       b.Amount,
		"status":       b.Status,
		"qr_artifact":  b.QRArtifact,
	}
	if b.ArtifactURL != nil {
		out["artifact_url"] = *b.ArtifactURL
	}
	if b.UsedAt != nil {
		out["used_at"] = b.UsedAt
	}
	return out
}
