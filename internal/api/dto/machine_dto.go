package dto

import "time"

// MachineRegisterRequest payload for agent enrollment.
type MachineRegisterRequest struct {
	ServiceID    string `json:"service_id"`
	Username     string `json:"username"`
	ComputerName string `json:"computer_name"`
	MachineID    string `json:"machine_id"`
}

// ServiceTokenResponse carries an issued machine-bound token.
type ServiceTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	MachineID string    `json:"machine_id"`
}

// APIKeyCreateRequest payload for key issuance.
type APIKeyCreateRequest struct {
	ServiceID   string `json:"service_id"`
	Description string `json:"description"`
}

// APIKeyRevokeRequest payload for key revocation.
type APIKeyRevokeRequest struct {
	Key string `json:"key"`
}

// APIKeyResponse carries an issued API key.
type APIKeyResponse struct {
	Key         string    `json:"key"`
	ExpiresAt   time.Time `json:"expires_at"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
}
