package handler

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/pkg/storage"
	"github.com/labstack/echo/v4"
)

const uploadField = "image"

type UserHandler struct {
	svc    service.UserService
	guards Guards
}

func NewUserHandler(svc service.UserService, guards Guards) *UserHandler {
	return &UserHandler{svc: svc, guards: guards}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.Use(h.guards.Authn)

	g.GET("/me", h.Me)
	g.PUT("/me", h.UpdateProfile)
	g.POST("/me/photo", h.UploadPhoto)
	g.GET("/me/notifications", h.Notifications)
	g.PUT("/me/notifications/read", h.MarkNotificationsRead)
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ToUserResponse(middleware.CurrentUser(c)))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req dto.ProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.Input()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return serviceError(err, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Profile updated", "user": dto.ToUserResponse(user)})
}

func (h *UserHandler) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return serviceError(storage.ErrEmptyFile, "")
	}
	src, err := file.Open()
	if err != nil {
		return serviceError(err, "Failed to upload photo")
	}
	defer src.Close()

	stored, err := h.svc.UploadPhoto(c.Request().Context(), middleware.CurrentUser(c).ID, file.Filename, src)
	if err != nil {
		return serviceError(err, "Failed to upload photo")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "url": stored.URL, "path": stored.Path})
}

func (h *UserHandler) Notifications(c echo.Context) error {
	notifications, err := h.svc.Notifications(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return serviceError(err, "Unable to fetch notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *UserHandler) MarkNotificationsRead(c echo.Context) error {
	if err := h.svc.MarkNotificationsRead(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return serviceError(err, "Unable to update notifications")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Notifications marked as read"})
}

// UploadHandler stores standalone images such as posters and gallery shots.
type UploadHandler struct {
	images service.ImageStore
	guards Guards
}

func NewUploadHandler(images service.ImageStore, guards Guards) *UploadHandler {
	return &UploadHandler{images: images, guards: guards}
}

func (h *UploadHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/images", h.UploadImage, h.guards.Can(authz.ObjUpload, authz.ActWrite)...)
}

func (h *UploadHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return serviceError(storage.ErrEmptyFile, "")
	}
	src, err := file.Open()
	if err != nil {
		return serviceError(err, "Upload failed")
	}
	defer src.Close()

	stored, err := h.images.SaveImage(file.Filename, src)
	if err != nil {
		return serviceError(err, "Upload failed")
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "url": stored.URL, "path": stored.Path})
}
