package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/api/dto"
	"github.com/fleetwatch/monitor-service/internal/service"
)

// AuthHandler exposes account auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	result, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(sessionResponse(result))
}

// Login handles POST /auth/users/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(result))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh_token required")
	}

	result, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{
				Token:            result.AccessToken.Token,
				ExpiresAt:        result.AccessToken.ExpiresAt,
				RefreshToken:     result.RefreshToken.Token,
				RefreshExpiresAt: result.RefreshToken.ExpiresAt,
			},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.auth.Logout(c.UserContext(), req.AccessToken, req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func sessionResponse(result *service.LoginResult) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    result.User.ID,
				"name":  result.User.Name,
				"email": result.User.Email,
			},
			"auth": dto.AuthResponse{
				Token:            result.AccessToken.Token,
				ExpiresAt:        result.AccessToken.ExpiresAt,
				RefreshToken:     result.RefreshToken.Token,
				RefreshExpiresAt: result.RefreshToken.ExpiresAt,
			},
		},
	}
}
