package shared

// Role is a coarse access level assigned to a portal account.
type Role string

const (
	RoleStaff      Role = "STAFF"
	RoleAdmin      Role = "ADMIN"
	RolePMSU       Role = "PMSU"
	RoleManagement Role = "MANAGEMENT"
)

// ParseRole validates a stored role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStaff, RoleAdmin, RolePMSU, RoleManagement:
		return Role(s), true
	}
	return "", false
}

// Privileged reports whether the role may validate and edit entries owned
// by other users.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RolePMSU
}

// Principal describes the authenticated actor resolved per request.
type Principal struct {
	UserID int64
	Role   Role
}
