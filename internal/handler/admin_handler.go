package handler

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	svc    service.ReviewService
	guards Guards
}

func NewAdminHandler(svc service.ReviewService, guards Guards) *AdminHandler {
	return &AdminHandler{svc: svc, guards: guards}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	review := h.guards.Can(authz.ObjEvent, authz.ActReview)
	g.GET("/events", h.ListEvents, review...)
	g.PUT("/events/:id/approve", h.Approve, review...)
	g.PUT("/events/:id/reject", h.Reject, review...)
	g.PUT("/events/:id/status", h.SetStatus, review...)
	g.GET("/stats", h.Stats, h.guards.Can(authz.ObjStats, authz.ActRead)...)
}

func (h *AdminHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return serviceError(err, "Unable to fetch admin events")
	}
	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *AdminHandler) Approve(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}
	var req dto.ApproveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.Approve(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Note)
	if err != nil {
		return serviceError(err, "Unable to approve event")
	}
	return c.JSON(http.StatusOK, dto.EventActionResponse{Success: true, Message: "Event approved", Event: dto.ToEventResponse(event)})
}

func (h *AdminHandler) Reject(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.Reject(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Reason)
	if err != nil {
		return serviceError(err, "Unable to reject event")
	}
	return c.JSON(http.StatusOK, dto.EventActionResponse{Success: true, Message: "Event rejected", Event: dto.ToEventResponse(event)})
}

func (h *AdminHandler) SetStatus(c echo.Context) error {
	id, err := paramID(c, "id", "event id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.SetStatus(c.Request().Context(), id, req.Status, req.Reason)
	if err != nil {
		return serviceError(err, "Unable to update status")
	}
	return c.JSON(http.StatusOK, dto.EventActionResponse{Success: true, Message: "Status updated", Event: dto.ToEventResponse(event)})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return serviceError(err, "Unable to load stats")
	}
	return c.JSON(http.StatusOK, stats)
}
