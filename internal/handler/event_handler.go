package handler

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	events        service.EventService
	registrations service.RegistrationService
	guards        Guards
}

func NewEventHandler(events service.EventService, registrations service.RegistrationService, guards Guards) *EventHandler {
	return &EventHandler{events: events, registrations: registrations, guards: guards}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListEvents)
	g.GET("/featured", h.FeaturedEvents)
	g.GET("/:id", h.GetEvent)
	g.GET("/:id/team-size", h.TeamSize)
	g.POST("/:id/registrations", h.Register, h.guards.Can(authz.ObjEvent, authz.ActRegister)...)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.events.ListEvents(c.Request().Context())
	if err != nil {
		return serviceError(err, "Unable to fetch events")
	}
	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *EventHandler) FeaturedEvents(c echo.Context) error {
	events, err := h.events.FeaturedEvents(c.Request().Context())
	if err != nil {
		return serviceError(err, "Unable to fetch featured events")
	}
	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	event, err := h.events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "Unable to fetch event")
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) TeamSize(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	event, err := h.events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "Unable to fetch team size")
	}
	return c.JSON(http.StatusOK, dto.ToTeamSizeResponse(event))
}

func (h *EventHandler) Register(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.Input(id, middleware.CurrentUser(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.registrations.Register(c.Request().Context(), in)
	if err != nil {
		return serviceError(err, "Registration failed")
	}
	return c.JSON(http.StatusCreated, dto.ToRegisterResponse(res))
}
