package events

import "time"

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventTokenIssued      EventType = "token_issued"
	EventValidationFailed EventType = "token_validation_failed"
	EventTokenRevoked     EventType = "token_revoked"
	EventTokenRefreshed   EventType = "token_refreshed"
	EventTokensPurged     EventType = "tokens_purged"
)

// Event represents an auth audit event emitted by the token service.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}
