package api

import (
	"net/http"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	provider identity.Provider
}

type signUpRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	BirthDate   string  `json:"birth_date"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(provider identity.Provider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

func (h *AuthHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("/signup", h.signUp)
	router.POST("/signin", h.signIn)
	router.POST("/signout", auth, h.signOut)
	router.GET("/me", auth, h.me)
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}
	birth, err := domain.ParseDate("birth_date", req.BirthDate)
	if err != nil {
		writeError(c, err)
		return
	}

	session, err := h.provider.SignUp(c.Request.Context(), identity.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   birth,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", err.Error())
		return
	}
	session, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) signOut(c *gin.Context) {
	if err := h.provider.SignOut(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	user, err := h.provider.CurrentUser(c.Request.Context(), c.GetString(tokenKey))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
