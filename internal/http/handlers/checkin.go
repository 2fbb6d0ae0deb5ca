package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devta181281/flexfit/internal/http/middleware"
	"github.com/devta181281/flexfit/internal/http/validation"
	"github.com/devta181281/flexfit/internal/modules/bookings"
	"github.com/devta181281/flexfit/internal/shared/apperr"
)

type CheckinHandler struct {
	Bookings *bookings.Service
}

func NewCheckinHandler(bk *bookings.Service) *CheckinHandler {
	return &CheckinHandler{Bookings: bk}
}

type checkinRequest struct {
	Code string `json:"code" binding:"required,min=4,max=32"`
}

// POST /api/gyms/:id/checkin
// Hard failures (unknown gym, not the owner) go through the error envelope;
// everything else is a 200 with valid=true/false so the door UI can branch
// without exception handling.
func (h *CheckinHandler) Checkin(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid check-in request.", validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Bookings.Redeem(c.Request.Context(), bookings.RedeemInput{
		GymID:   c.Param("id"),
		OwnerID: middleware.UserID(c),
		Code:    req.Code,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	body := gin.H{"success": true, "valid": res.Valid, "message": res.Message}
	if res.Booking != nil {
		body["booking"] = bookingJSON(*res.Booking)
	}
	c.JSON(http.StatusOK, body)
}
