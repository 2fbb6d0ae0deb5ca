package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/devta181281/flexfit/internal/http/handlers"
	"github.com/devta181281/flexfit/internal/http/middleware"
	"github.com/devta181281/flexfit/internal/modules/bookings"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/modules/payments"
	"github.com/devta181281/flexfit/internal/modules/users"
)

type Deps struct {
	Logger   *slog.Logger
	Tokens   *users.TokenIssuer
	Users    *users.Service
	Gyms     *gyms.Repo
	Payments *payments.Service
	Bookings *bookings.Service
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.ErrorHandler(d.Logger),
	)

	r.GET("/healthz", handlers.Health)

	authH := handlers.NewAuthHandler(d.Users)
	bookH := handlers.NewBookingsHandler(d.Payments, d.Bookings)
	checkH := handlers.NewCheckinHandler(d.Bookings)
	gymH := handlers.NewGymsHandler(d.Gyms)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)

		api.GET("/gyms/:id", gymH.Get)

		authed := api.Group("", middleware.RequireAuth(d.Tokens))
		{
			authed.POST("/bookings/order", bookH.CreateOrder)
			authed.POST("/bookings/verify", bookH.VerifyAndCreate)
			authed.GET("/bookings", bookH.List)

			owner := authed.Group("", middleware.RequireRole(users.RoleOwner, users.RoleAdmin))
			{
				owner.POST("/gyms", gymH.Register)
				owner.POST("/gyms/:id/checkin", checkH.Checkin)
			}

			admin := authed.Group("/admin", middleware.RequireRole(users.RoleAdmin))
			{
				admin.GET("/gyms", gymH.AdminList)
				admin.PATCH("/gyms/:id", gymH.Review)
			}
		}
	}

	return r
}
