package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/api/dto"
	"github.com/fleetwatch/monitor-service/internal/auth"
	"github.com/fleetwatch/monitor-service/internal/service"
)

// APIKeysHandler exposes API key management, admin level required.
type APIKeysHandler struct {
	machines *service.MachineService
}

// NewAPIKeysHandler constructs handler.
func NewAPIKeysHandler(machineService *service.MachineService) *APIKeysHandler {
	return &APIKeysHandler{machines: machineService}
}

// Create handles POST /auth/apikeys.
func (h *APIKeysHandler) Create(c *fiber.Ctx) error {
	var req dto.APIKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ServiceID == "" {
		return fiber.NewError(http.StatusBadRequest, "service_id required")
	}

	principal, _ := auth.PrincipalFromContext(c)
	createdBy := ""
	if principal != nil {
		createdBy = principal.SubjectID
	}

	record, err := h.machines.CreateAPIKey(c.UserContext(), req.ServiceID, req.Description, createdBy)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.APIKeyResponse{
			Key:         record.Token,
			ExpiresAt:   record.ExpiresAt,
			Description: record.Claims.Description,
			CreatedBy:   record.Claims.CreatedBy,
		},
	})
}

// Revoke handles DELETE /auth/apikeys.
func (h *APIKeysHandler) Revoke(c *fiber.Ctx) error {
	var req dto.APIKeyRevokeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Key == "" {
		return fiber.NewError(http.StatusBadRequest, "key required")
	}
	if err := h.machines.RevokeAPIKey(c.UserContext(), req.Key); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
