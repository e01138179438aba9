package handler

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type RegistrationHandler struct {
	svc    service.RegistrationService
	guards Guards
}

func NewRegistrationHandler(svc service.RegistrationService, guards Guards) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, guards: guards}
}

func (h *RegistrationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.MyRegistrations, h.guards.Authn)
	g.DELETE("/:id", h.Cancel, h.guards.Can(authz.ObjRegistration, authz.ActCancel)...)
}

func (h *RegistrationHandler) MyRegistrations(c echo.Context) error {
	user := middleware.CurrentUser(c)
	views, err := h.svc.MyRegistrations(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(err, "Unable to fetch registrations")
	}
	return c.JSON(http.StatusOK, dto.ToMyRegistrationResponses(views))
}

func (h *RegistrationHandler) Cancel(c echo.Context) error {
	id, err := paramID(c, "id", "registration id")
	if err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	registration, err := h.svc.Cancel(c.Request().Context(), user.ID, id)
	if err != nil {
		return serviceError(err, "Unable to cancel registration")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Registration cancelled",
		"registration": registration,
	})
}
