package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	svc    service.TicketService
	guards Guards
}

func NewTicketHandler(svc service.TicketService, guards Guards) *TicketHandler {
	return &TicketHandler{svc: svc, guards: guards}
}

func (h *TicketHandler) RegisterRoutes(g *echo.Group) {
	checkIn := h.guards.Can(authz.ObjTicket, authz.ActCheckIn)
	g.GET("/:ticketId", h.GetTicket)
	g.GET("/:ticketId/validate", h.Validate, checkIn...)
	g.POST("/:ticketId/use", h.MarkUsed, checkIn...)
}

func ticketParam(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("ticketId"))
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}
	return id, nil
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := ticketParam(c)
	if err != nil {
		return err
	}

	ticket, err := h.svc.GetTicket(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "Unable to fetch ticket")
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Validate(c echo.Context) error {
	id, err := ticketParam(c)
	if err != nil {
		return err
	}

	registration, err := h.svc.Validate(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "Unable to validate ticket")
	}
	return c.JSON(http.StatusOK, dto.ValidateTicketResponse{Valid: true, Registration: registration})
}

func (h *TicketHandler) MarkUsed(c echo.Context) error {
	id, err := ticketParam(c)
	if err != nil {
		return err
	}

	if err := h.svc.MarkUsed(c.Request().Context(), id); err != nil {
		return serviceError(err, "Unable to update ticket")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Ticket checked in"})
}
