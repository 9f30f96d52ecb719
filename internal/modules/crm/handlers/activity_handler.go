package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
)

type ActivityHandler struct {
	activity repositories.ActivityRepo
}

func NewActivityHandler(activity repositories.ActivityRepo) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List returns the tenant's activity timeline, newest first.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	scope := tenant.ScopeFrom(c)
	events, err := h.activity.ListScoped(scope, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch activity",
		})
	}
	return c.JSON(events)
}
