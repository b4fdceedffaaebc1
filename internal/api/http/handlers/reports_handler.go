package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/auth"
)

// ReportsHandler accepts agent usage reports. Report paths run in lax mode:
// an unauthenticated agent still gets its report accepted under the
// anonymous limited principal.
type ReportsHandler struct{}

// NewReportsHandler constructs handler.
func NewReportsHandler() *ReportsHandler {
	return &ReportsHandler{}
}

// SubmitUsage handles POST /api/reports/usage.
func (h *ReportsHandler) SubmitUsage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"accepted":  true,
			"subject":   principal.SubjectID,
			"anonymous": principal.Anonymous,
		},
	})
}
