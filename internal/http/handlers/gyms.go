package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devta181281/flexfit/internal/http/middleware"
	"github.com/devta181281/flexfit/internal/http/validation"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/shared/apperr"
)

// GymStore is what the gym endpoints need from persistence; *gyms.Repo
// satisfies it.
type GymStore interface {
	FindGym(ctx context.Context, id string) (gyms.Gym, error)
	Create(ctx context.Context, g *gyms.Gym) error
	UpdateStatus(ctx context.Context, id, status string) error
	ListByStatus(ctx context.Context, status string) ([]gyms.Gym, error)
}

type GymsHandler struct {
	Repo GymStore
}

func NewGymsHandler(repo GymStore) *GymsHandler {
	return &GymsHandler{Repo: repo}
}

type registerGymRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=150"`
	City         string  `json:"city" binding:"omitempty,max=100"`
	Address      string  `json:"address" binding:"omitempty,max=255"`
	DayPassPrice float64 `json:"day_pass_price" binding:"required,gt=0"`
}

// POST /api/gyms
// Owners submit facilities. They stay pending until an admin approves them,
// and only approved gyms are bookable.
func (h *GymsHandler) Register(c *gin.Context) {
	var req registerGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid gym details.", validation.FromBindError(err, &req)))
		return
	}

	now := time.Now()
	g := gyms.Gym{
		ID:           uuid.NewString(),
		OwnerID:      middleware.UserID(c),
		Name:         req.Name,
		City:         req.City,
		Address:      req.Address,
		DayPassPrice: req.DayPassPrice,
		Status:       gyms.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Repo.Create(c.Request.Context(), &g); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "gym": gymJSON(g)})
}

// GET /api/gyms/:id
func (h *GymsHandler) Get(c *gin.Context) {
	g, err := h.Repo.FindGym(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gyms.ErrGymNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Gym not found."))
			return
		}
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "gym": gymJSON(g)})
}

type reviewGymRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// PATCH /api/admin/gyms/:id
func (h *GymsHandler) Review(c *gin.Context) {
	var req reviewGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid review request.", validation.FromBindError(err, &req)))
		return
	}

	if err := h.Repo.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, gyms.ErrGymNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Gym not found."))
			return
		}
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/admin/gyms?status=pending
func (h *GymsHandler) AdminList(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", gyms.StatusPending, gyms.StatusApproved, gyms.StatusRejected:
	default:
		middleware.Fail(c, apperr.InvalidErr("Unknown status filter.", nil))
		return
	}

	items, err := h.Repo.ListByStatus(c.Request.Context(), status)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, g := range items {
		out = append(out, gymJSON(g))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "gyms": out})
}

func gymJSON(g gyms.Gym) gin.H {
	return gin.H{
		"id":             g.ID,
		"name":           g.Name,
		"city":           g.City,
		"address":        g.Address,
		"day_pass_price": g.DayPassPrice,
		"status":         g.Status,
	}
}
