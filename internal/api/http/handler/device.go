package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/caretrack/caretrack_backend/internal/service/device"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
)

type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

func mapDeviceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, device.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, device.ErrInvalidDeviceType),
		errors.Is(err, device.ErrTokenRequired):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /notifications/devices
func (h *DeviceHandler) Register(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var body struct {
		Token      string `json:"token"`
		DeviceType string `json:"device_type"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.Register(c.Context(), device.RegisterRequest{
		UserID:     claims.UserID,
		Token:      body.Token,
		DeviceType: body.DeviceType,
	})
	if err != nil {
		return mapDeviceError(c, err)
	}

	return created(c, d)
}

// GET /notifications/devices
func (h *DeviceHandler) List(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	devices, err := h.svc.List(c.Context(), claims.UserID)
	if err != nil {
		return mapDeviceError(c, err)
	}

	return ok(c, devices)
}

// GET /notifications/devices/:token
func (h *DeviceHandler) Get(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	token := c.Params("token")
	if token == "" {
		return badRequest(c, "device token is required")
	}

	d, err := h.svc.Get(c.Context(), claims.UserID, token)
	if err != nil {
		return mapDeviceError(c, err)
	}

	return ok(c, d)
}

// DELETE /notifications/devices/:token
func (h *DeviceHandler) Deactivate(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	token := c.Params("token")
	if token == "" {
		return badRequest(c, "device token is required")
	}

	if err := h.svc.Deactivate(c.Context(), claims.UserID, token); err != nil {
		return mapDeviceError(c, err)
	}

	return noContent(c)
}
