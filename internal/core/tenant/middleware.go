package tenant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const scopeKey = "tenantScope"

// Middleware resolves the request's tenant scope from the identity headers
// set by the upstream auth proxy and stores it in the request locals.
// X-User-ID and X-Tenant-ID carry the principal; a super admin
// (X-Super-Admin: true) may aim at another tenant via ?tenant_id=.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Get("X-User-ID"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		p := Principal{
			UserID:       userID,
			IsSuperAdmin: c.Get("X-Super-Admin") == "true",
		}
		if tid, err := uuid.Parse(c.Get("X-Tenant-ID")); err == nil {
			p.TenantID = tid
		}

		if !p.IsSuperAdmin && p.TenantID == uuid.Nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no tenant access",
			})
		}

		var override uuid.UUID
		if raw := c.Query("tenant_id"); raw != "" {
			if tid, err := uuid.Parse(raw); err == nil {
				override = tid
			}
		}

		c.Locals(scopeKey, ScopeFor(p, override))
		return c.Next()
	}
}

// ScopeFrom returns the scope stored by Middleware.
func ScopeFrom(c *fiber.Ctx) Scope {
	if s, ok := c.Locals(scopeKey).(Scope); ok {
		return s
	}
	return Scope{}
}
