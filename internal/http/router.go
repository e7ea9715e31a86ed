// README: HTTP router registration: public, authenticated, driver and admin route groups.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vtc/internal/http/handlers"
	"vtc/internal/http/middleware"
	"vtc/internal/infra"
	"vtc/internal/modules/access"
	"vtc/internal/modules/booking"
	"vtc/internal/modules/dispatch"
	"vtc/internal/modules/driver"
	"vtc/internal/modules/fare"
)

type RouterDeps struct {
	Verifier    infra.TokenVerifier
	Roles       middleware.RoleResolver
	Fare        *fare.Calculator
	Bookings    *booking.Service
	Drivers     *driver.Service
	Dispatch    *dispatch.Service
	Logger      *slog.Logger
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(middleware.Logging(logger), middleware.Recovery(logger))
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", handlers.Health)

	fareHandler := handlers.NewFareHandler(deps.Fare)
	r.POST("/api/fares/quote", fareHandler.Quote)

	api := r.Group("/api", middleware.Auth(deps.Verifier, deps.Roles))
	api.GET("/me", handlers.Me)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	api.POST("/bookings", middleware.Require(access.OpCreateBooking), bookingHandler.Create)
	api.GET("/bookings", middleware.Require(access.OpListOwnBookings), bookingHandler.ListMine)
	api.GET("/bookings/:id", middleware.Require(access.OpViewBooking), bookingHandler.Get)
	api.POST("/bookings/:id/cancel", middleware.Require(access.OpCancelBooking), bookingHandler.Cancel)

	driverHandler := handlers.NewDriverHandler(deps.Drivers)
	api.POST("/drivers/apply", middleware.Require(access.OpApplyAsDriver), driverHandler.Apply)

	drv := api.Group("/driver")
	drv.GET("/bookings", middleware.Require(access.OpListAssigned), bookingHandler.ListAssigned)
	drv.POST("/bookings/:id/start", middleware.Require(access.OpStartTrip), bookingHandler.Start)
	drv.POST("/bookings/:id/complete", middleware.Require(access.OpCompleteTrip), bookingHandler.Complete)

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatch)
	admin := api.Group("/admin")
	admin.GET("/bookings", middleware.Require(access.OpDispatchBoard), bookingHandler.Board)
	admin.GET("/bookings/:id/eligible-drivers", middleware.Require(access.OpAssignDriver), dispatchHandler.Eligible)
	admin.POST("/bookings/:id/assign", middleware.Require(access.OpAssignDriver), dispatchHandler.Assign)
	admin.POST("/bookings/:id/payment", middleware.Require(access.OpRecordPayment), bookingHandler.Payment)
	admin.GET("/drivers", middleware.Require(access.OpListDrivers), driverHandler.List)
	admin.POST("/drivers/:id/activate", middleware.Require(access.OpActivateDriver), driverHandler.Activate)
	admin.POST("/drivers/:id/deactivate", middleware.Require(access.OpActivateDriver), driverHandler.Deactivate)

	return r
}
