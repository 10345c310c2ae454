package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
	"github.com/caretrack/caretrack_backend/pkg/reqctx"
)

func newTestManager(t *testing.T) *pasetotoken.Manager {
	t.Helper()
	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode:      pasetotoken.ModeLocal,
		Issuer:    "caretrack-test",
		Audience:  "caretrack-api",
		AccessTTL: time.Minute,
	}, pasetotoken.NewLocalKeys())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func TestAuthRequired_WiresClaimsIntoContext(t *testing.T) {
	mgr := newTestManager(t)
	userID := uuid.New()

	token, err := mgr.IssueAccess(userID, nil)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	app := fiber.New()
	app.Get("/me", AuthRequired(mgr, nil), func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			t.Error("claims missing from fiber locals")
		} else if claims.UserID != userID {
			t.Errorf("locals user id = %s, want %s", claims.UserID, userID)
		}

		// Layers below fiber see the same caller through the request context.
		got, ok := reqctx.UserIDFromContext(c.Context())
		if !ok {
			t.Error("claims missing from request context")
		} else if got != userID {
			t.Errorf("context user id = %s, want %s", got, userID)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRequired_RejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthRequired(newTestManager(t), nil), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthRequired_RejectsRefreshToken(t *testing.T) {
	mgr := newTestManager(t)

	token, err := mgr.IssueRefresh(uuid.New(), nil)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	app := fiber.New()
	app.Get("/me", AuthRequired(mgr, nil), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
