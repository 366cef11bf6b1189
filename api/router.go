package api

import (
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *AuthHandler
	Flights  *FlightHandler
	Bookings *BookingHandler
	Profile  *ProfileHandler
	Health   *HealthHandler
}

// NewRouter mounts every handler under /api/v1; /healthz stays at the root.
func NewRouter(h Handlers, provider identity.Provider, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Tracing(), Logger(log))

	h.Health.Register(router)

	v1 := router.Group("/api/v1")
	auth := RequireAuth(provider)
	authed := v1.Group("", auth)

	h.Auth.Register(v1.Group("/auth"), auth)
	h.Flights.Register(v1)
	h.Bookings.Register(v1, authed)
	h.Profile.Register(authed)
	return router
}
