package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service  flights.FlightUseCase
	pageSize int
}

func NewFlightHandler(service flights.FlightUseCase, defaultPageSize int) *FlightHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = domain.DefaultPageSize
	}
	return &FlightHandler{service: service, pageSize: defaultPageSize}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/cities", h.cities)
	router.GET("/flights", h.search)
	router.GET("/flights/board", h.board)
	router.GET("/flights/:id", h.get)
	router.GET("/flights/:id/seats", h.seats)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

func (h *FlightHandler) paging(c *gin.Context) (page, size int, err error) {
	if page, err = queryInt(c, "page", 1); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(c, "page_size", h.pageSize); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func (h *FlightHandler) search(c *gin.Context) {
	page, size, err := h.paging(c)
	if err != nil {
		writeError(c, err)
		return
	}
	departure, err := domain.ParseDate("departure_date", c.Query("departure_date"))
	if err != nil {
		writeError(c, err)
		return
	}
	ret, err := domain.ParseDate("return_date", c.Query("return_date"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), domain.FlightFilter{
		Origin:        c.Query("from"),
		Destination:   c.Query("to"),
		DepartureDate: departure,
		ReturnDate:    ret,
		Page:          page,
		PageSize:      size,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) board(c *gin.Context) {
	page, size, err := h.paging(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.service.Board(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) seats(c *gin.Context) {
	seats, err := h.service.Seats(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight_id": c.Param("id"), "seats": seats})
}

func (h *FlightHandler) cities(c *gin.Context) {
	cities, err := h.service.Cities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}
