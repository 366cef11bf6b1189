package api

import (
	"net/http"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/service/profile"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service profile.ProfileUseCase
}

// updateProfileRequest fields left out of the body are not changed.
type updateProfileRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	BirthDate   *string `json:"birth_date"`
}

func NewProfileHandler(service profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Register(router *gin.RouterGroup) {
	router.GET("/profile", h.get)
	router.PUT("/profile", h.update)
}

func (h *ProfileHandler) get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}
	update := domain.ProfileUpdate{FullName: req.FullName, PhoneNumber: req.PhoneNumber}
	if req.BirthDate != nil {
		birth, err := domain.ParseDate("birth_date", *req.BirthDate)
		if err != nil {
			writeError(c, err)
			return
		}
		if birth == nil {
			badRequest(c, "birth_date", "must not be empty")
			return
		}
		update.BirthDate = birth
	}

	p, err := h.service.Update(c.Request.Context(), currentUserID(c), update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
