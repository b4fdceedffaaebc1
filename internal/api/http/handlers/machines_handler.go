package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/api/dto"
	"github.com/fleetwatch/monitor-service/internal/service"
)

// MachinesHandler exposes agent enrollment endpoints.
type MachinesHandler struct {
	machines *service.MachineService
}

// NewMachinesHandler constructs handler.
func NewMachinesHandler(machineService *service.MachineService) *MachinesHandler {
	return &MachinesHandler{machines: machineService}
}

// Register handles POST /auth/machines/register.
func (h *MachinesHandler) Register(c *fiber.Ctx) error {
	var req dto.MachineRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ServiceID == "" || req.MachineID == "" {
		return fiber.NewError(http.StatusBadRequest, "service_id and machine_id required")
	}

	machine, record, err := h.machines.RegisterMachine(c.UserContext(), req.ServiceID, req.Username, req.ComputerName, req.MachineID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"machine": fiber.Map{
				"id":            machine.ID,
				"machine_id":    machine.MachineID,
				"computer_name": machine.ComputerName,
			},
			"token": dto.ServiceTokenResponse{
				Token:     record.Token,
				ExpiresAt: record.ExpiresAt,
				MachineID: req.MachineID,
			},
		},
	})
}
