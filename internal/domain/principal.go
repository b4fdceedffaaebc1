package domain

// AuthLevel is a totally ordered authorization tier. Comparisons use the
// numeric order: None < Basic < User < Admin < SuperAdmin.
type AuthLevel int

const (
	LevelNone AuthLevel = iota
	LevelBasic
	LevelUser
	LevelAdmin
	LevelSuperAdmin
)

// AtLeast reports whether l satisfies the required level.
func (l AuthLevel) AtLeast(required AuthLevel) bool {
	return l >= required
}

func (l AuthLevel) String() string {
	switch l {
	case LevelBasic:
		return "BASIC"
	case LevelUser:
		return "USER"
	case LevelAdmin:
		return "ADMIN"
	case LevelSuperAdmin:
		return "SUPER_ADMIN"
	default:
		return "NONE"
	}
}

// Principal describes an authenticated caller as handed to collaborators.
// It is immutable after construction.
type Principal struct {
	SubjectID   string
	SubjectKind SubjectKind
	Roles       map[string]struct{}
	Permissions map[string]struct{}
	AuthLevel   AuthLevel
	Anonymous   bool
}

// NewPrincipal builds a principal from credential claims.
func NewPrincipal(subjectID string, subjectKind SubjectKind, claims Claims) *Principal {
	p := &Principal{
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		Roles:       make(map[string]struct{}, len(claims.Roles)),
		Permissions: make(map[string]struct{}, len(claims.Permissions)),
		AuthLevel:   claims.AuthLevel,
	}
	for _, role := range claims.Roles {
		p.Roles[role] = struct{}{}
	}
	for _, perm := range claims.Permissions {
		p.Permissions[perm] = struct{}{}
	}
	return p
}

// AnonymousPrincipal is the limited principal returned for unauthenticated
// report traffic in lax mode.
func AnonymousPrincipal() *Principal {
	return &Principal{
		SubjectID:   "anonymous",
		Roles:       map[string]struct{}{},
		Permissions: map[string]struct{}{},
		AuthLevel:   LevelNone,
		Anonymous:   true,
	}
}

// HasRole reports role membership.
func (p *Principal) HasRole(role string) bool {
	_, ok := p.Roles[role]
	return ok
}

// HasPermission reports permission membership.
func (p *Principal) HasPermission(perm string) bool {
	_, ok := p.Permissions[perm]
	return ok
}
