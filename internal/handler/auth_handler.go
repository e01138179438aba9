package handler

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc    service.AuthService
	guards Guards
}

func NewAuthHandler(svc service.AuthService, guards Guards) *AuthHandler {
	return &AuthHandler{svc: svc, guards: guards}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Signup)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, h.guards.Authn)
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.svc.Signup(c.Request().Context(), req.Input())
	if err != nil {
		return serviceError(err, "Register failed")
	}
	return c.JSON(http.StatusCreated, dto.ToAuthResponse("Registered successfully", session))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(err, "Login failed")
	}
	return c.JSON(http.StatusOK, dto.ToAuthResponse("Logged in successfully", session))
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]dto.UserResponse{"user": dto.ToUserResponse(middleware.CurrentUser(c))})
}
