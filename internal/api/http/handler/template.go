package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/caretrack/caretrack_backend/internal/service/notification"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
)

// TemplateHandler exposes the active template catalog read-only.
type TemplateHandler struct {
	svc notification.Service
}

func NewTemplateHandler(svc notification.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// GET /notifications/templates
func (h *TemplateHandler) List(c fiber.Ctx) error {
	if _, claimsOK := pasetotoken.ClaimsFromFiber(c); !claimsOK {
		return unauthorized(c)
	}

	tpls, err := h.svc.ListTemplates(c.Context())
	if err != nil {
		return internalError(c)
	}

	return ok(c, tpls)
}
