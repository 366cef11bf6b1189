package api

import (
	"net/http"

	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID string `json:"flight_id"`
	Draft    bool   `json:"draft"`
}

type payBookingRequest struct {
	ServiceTier   string `json:"service_tier"`
	SeatNumber    string `json:"seat_number"`
	PaymentMethod string `json:"payment_method"`
}

type quoteRequest struct {
	FlightID    string `json:"flight_id"`
	ServiceTier string `json:"service_tier"`
	SeatNumber  string `json:"seat_number"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the public fare catalog on public and the booking routes on
// authed.
func (h *BookingHandler) Register(public, authed *gin.RouterGroup) {
	public.GET("/tiers", h.tiers)
	public.POST("/fares/quote", h.quote)

	authed.POST("/bookings", h.create)
	authed.GET("/bookings", h.list)
	authed.GET("/bookings/:id", h.get)
	authed.POST("/bookings/:id/confirm", h.confirm)
	authed.POST("/bookings/:id/pay", h.pay)
	authed.POST("/bookings/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:   currentUserID(c),
		FlightID: req.FlightID,
		Draft:    req.Draft,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) list(c *gin.Context) {
	views, err := h.service.ListBookings(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	b, err := h.service.ConfirmBooking(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) pay(c *gin.Context) {
	var req payBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}

	b, err := h.service.PayBooking(c.Request.Context(), booking.PayBookingInput{
		UserID:        currentUserID(c),
		BookingID:     c.Param("id"),
		TierID:        req.ServiceTier,
		SeatNumber:    req.SeatNumber,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) tiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Tiers())
}

func (h *BookingHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}
	q, err := h.service.QuoteFare(c.Request.Context(), booking.QuoteInput{
		FlightID:   req.FlightID,
		TierID:     req.ServiceTier,
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
