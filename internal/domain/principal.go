package domain

import "github.com/google/uuid"

const (
	RoleAdmin      = "admin"
	RoleCEO        = "ceo"
	RoleSupervisor = "supervisor"
	RoleEmployee   = "employee"
)

// Principal is the authenticated caller as decoded from the access token.
type Principal struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

// IsAdmin reports whether the principal carries an organisation-wide role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleCEO
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCEO, RoleSupervisor, RoleEmployee:
		return true
	}
	return false
}
