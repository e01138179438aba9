package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type HostHandler struct {
	svc    service.HostService
	guards Guards
}

func NewHostHandler(svc service.HostService, guards Guards) *HostHandler {
	return &HostHandler{svc: svc, guards: guards}
}

func (h *HostHandler) RegisterRoutes(g *echo.Group) {
	g.Use(h.guards.Can(authz.ObjEvent, authz.ActManage)...)

	g.POST("/events", h.CreateEvent)
	g.GET("/events", h.MyEvents)
	g.PUT("/events/:id", h.UpdateEvent)
	g.PUT("/events/:id/toggle", h.ToggleActive)
	g.GET("/events/:id/registrations", h.Registrations)
	g.GET("/events/:id/insights", h.Insights)
	g.GET("/events/:id/export", h.ExportCSV)
	g.GET("/events/:id/settings", h.GetSettings)
	g.PUT("/events/:id/settings", h.UpdateSettings)
}

func (h *HostHandler) CreateEvent(c echo.Context) error {
	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.Date == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}

	user := middleware.CurrentUser(c)
	event, err := h.svc.CreateEvent(c.Request().Context(), service.Host{ID: user.ID, Name: user.Name}, req.Input())
	if err != nil {
		return serviceError(err, "Failed to create event")
	}
	return c.JSON(http.StatusCreated, dto.EventActionResponse{
		Success: true,
		Message: "Event submitted for approval",
		Event:   dto.ToEventResponse(event),
	})
}

func (h *HostHandler) UpdateEvent(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Input())
	if err != nil {
		return serviceError(err, "Failed to update event")
	}

	msg := "Event updated and awaiting review"
	if event.Approved {
		msg = "Event updated"
	}
	return c.JSON(http.StatusOK, dto.EventActionResponse{Success: true, Message: msg, Event: dto.ToEventResponse(event)})
}

func (h *HostHandler) ToggleActive(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	event, err := h.svc.ToggleActive(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return serviceError(err, "Unable to toggle event")
	}
	return c.JSON(http.StatusOK, dto.ToggleResponse{Success: true, IsActive: event.IsActive})
}

func (h *HostHandler) MyEvents(c echo.Context) error {
	events, err := h.svc.MyEvents(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return serviceError(err, "Unable to fetch events")
	}
	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *HostHandler) Registrations(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	registrations, err := h.svc.Registrations(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return serviceError(err, "Unable to fetch registrations")
	}
	return c.JSON(http.StatusOK, registrations)
}

func (h *HostHandler) Insights(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	insights, err := h.svc.Insights(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return serviceError(err, "Unable to load insights")
	}
	return c.JSON(http.StatusOK, insights)
}

func (h *HostHandler) ExportCSV(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	csv, err := h.svc.ExportCSV(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return serviceError(err, "Unable to export CSV")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="event-%d-registrations.csv"`, id))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", csv)
}

func (h *HostHandler) GetSettings(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}

	event, settings, err := h.svc.GetSettings(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return serviceError(err, "Unable to load settings")
	}
	return c.JSON(http.StatusOK, dto.ToSettingsResponse(event, settings))
}

func (h *HostHandler) UpdateSettings(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}
	var req dto.SettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	settings, err := h.svc.UpdateSettings(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Patch())
	if err != nil {
		return serviceError(err, "Unable to update settings")
	}
	return c.JSON(http.StatusOK, dto.SettingsResponse{Success: true, Message: "Settings updated", Settings: settings})
}
