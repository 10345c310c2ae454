package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/caretrack/caretrack_backend/internal/service/preference"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
)

type PreferenceHandler struct {
	svc preference.Service
}

func NewPreferenceHandler(svc preference.Service) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

func mapPreferenceError(c fiber.Ctx, err error) error {
	if errors.Is(err, preference.ErrInvalidType) {
		return badRequest(c, err.Error())
	}
	return internalError(c)
}

type preferenceBody struct {
	Type         string `json:"notification_type"`
	PushEnabled  *bool  `json:"push_enabled"`
	EmailEnabled *bool  `json:"email_enabled"`
	SMSEnabled   *bool  `json:"sms_enabled"`
}

// GET /notifications/preferences
func (h *PreferenceHandler) List(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	prefs, err := h.svc.List(c.Context(), claims.UserID)
	if err != nil {
		return mapPreferenceError(c, err)
	}

	return ok(c, prefs)
}

// PUT /notifications/preferences
func (h *PreferenceHandler) BulkUpdate(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var body struct {
		Preferences []preferenceBody `json:"preferences"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.Preferences) == 0 {
		return badRequest(c, "preferences is required")
	}

	reqs := make([]preference.UpdateRequest, 0, len(body.Preferences))
	for _, p := range body.Preferences {
		reqs = append(reqs, preference.UpdateRequest{
			Type:         p.Type,
			PushEnabled:  p.PushEnabled,
			EmailEnabled: p.EmailEnabled,
			SMSEnabled:   p.SMSEnabled,
		})
	}

	prefs, err := h.svc.BulkUpdate(c.Context(), claims.UserID, reqs)
	if err != nil {
		return mapPreferenceError(c, err)
	}

	return ok(c, prefs)
}

// PUT /notifications/preferences/:type
func (h *PreferenceHandler) Update(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var body preferenceBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	pref, err := h.svc.Update(c.Context(), claims.UserID, preference.UpdateRequest{
		Type:         c.Params("type"),
		PushEnabled:  body.PushEnabled,
		EmailEnabled: body.EmailEnabled,
		SMSEnabled:   body.SMSEnabled,
	})
	if err != nil {
		return mapPreferenceError(c, err)
	}

	return ok(c, pref)
}
