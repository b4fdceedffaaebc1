package domain

import "time"

// TokenKind names the namespace a credential lives in. The four kinds are
// logically separate tables: a token string is unique within its own kind.
type TokenKind string

const (
	KindUserToken    TokenKind = "USER_TOKEN"
	KindServiceToken TokenKind = "SERVICE_TOKEN"
	KindAPIKey       TokenKind = "API_KEY"
	KindRefreshToken TokenKind = "REFRESH_TOKEN"
)

// AllTokenKinds lists every namespace, in purge order.
var AllTokenKinds = []TokenKind{KindUserToken, KindServiceToken, KindAPIKey, KindRefreshToken}

// Valid reports whether the kind is one of the four known namespaces.
func (k TokenKind) Valid() bool {
	switch k {
	case KindUserToken, KindServiceToken, KindAPIKey, KindRefreshToken:
		return true
	}
	return false
}

// SubjectKind differentiates what a credential was issued to.
type SubjectKind string

const (
	SubjectUser    SubjectKind = "USER"
	SubjectService SubjectKind = "SERVICE"
	SubjectAPIKey  SubjectKind = "API_KEY"
)

// Claims is the metadata bound to a credential at issuance. Records are
// immutable after issuance; validators only ever read these fields.
type Claims struct {
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	AuthLevel   AuthLevel `json:"auth_level,omitempty"`
	MachineID   string    `json:"machine_id,omitempty"`
	ServiceID   string    `json:"service_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// CredentialRecord is an issued credential as stored in cache and durable
// storage. Token is an opaque unguessable string, never derived from subject
// data.
type CredentialRecord struct {
	Token       string      `json:"token"`
	Kind        TokenKind   `json:"kind"`
	SubjectID   string      `json:"subject_id"`
	SubjectKind SubjectKind `json:"subject_kind"`
	IssuedAt    time.Time   `json:"issued_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Claims      Claims      `json:"claims"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (r *CredentialRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
