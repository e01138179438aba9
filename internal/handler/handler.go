package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/pkg/storage"
	"github.com/labstack/echo/v4"
)

// Guards builds the middleware chains that protect routes.
type Guards struct {
	Authn echo.MiddlewareFunc
	Authz middleware.Authorizer
}

// Can requires an authenticated user whose role may perform act on obj.
func (g Guards) Can(obj, act string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Authn, middleware.Authorize(g.Authz, obj, act)}
}

// errorCodes holds the status and client message for each known error.
var errorCodes = []struct {
	err  error
	code int
	msg  string
}{
	{service.ErrEventNotFound, http.StatusNotFound, "Event not found"},
	{service.ErrRegistrationNotFound, http.StatusNotFound, "Registration not found"},
	{service.ErrTicketNotFound, http.StatusNotFound, "Ticket not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},

	{service.ErrAlreadyRegistered, http.StatusConflict, "You have already registered for this event"},
	{service.ErrNotEnoughSeats, http.StatusConflict, "Not enough seats left"},
	{service.ErrEmailTaken, http.StatusConflict, "Email already used"},
	{service.ErrAlreadyCancelled, http.StatusConflict, "Registration is already cancelled"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},

	{service.ErrEventClosed, http.StatusBadRequest, "Event is not open for registration"},
	{service.ErrDeadlinePassed, http.StatusBadRequest, "Registration deadline has passed"},
	{service.ErrEventCompleted, http.StatusBadRequest, "Event already completed"},
	{service.ErrPaymentFailed, http.StatusBadRequest, "Payment not successful"},
	{service.ErrCancellationNotAllowed, http.StatusBadRequest, "Cancellation is not allowed for this event"},
	{service.ErrTicketInactive, http.StatusBadRequest, "Ticket is no longer active"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{service.ErrStatusRequired, http.StatusBadRequest, "Status required"},
	{service.ErrInvalidDeadline, http.StatusBadRequest, "Invalid registration deadline"},

	{storage.ErrEmptyFile, http.StatusBadRequest, "No file uploaded"},
	{storage.ErrUnsupportedType, http.StatusBadRequest, "Only JPG/PNG allowed"},
	{storage.ErrTooLarge, http.StatusRequestEntityTooLarge, "File exceeds 5MB limit"},
}

// serviceError maps a service error to an HTTP error. Unknown errors become
// a 500 carrying fallback as the client message.
func serviceError(err error, fallback string) error {
	var teamErr *service.TeamSizeError
	if errors.As(err, &teamErr) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Team size must be between %d and %d", teamErr.Min, teamErr.Max))
	}
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.code, m.msg)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}

func paramID(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label)
	}
	return uint(id), nil
}

// bindAndValidate binds the body into req and runs the echo validator when
// one is installed.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
