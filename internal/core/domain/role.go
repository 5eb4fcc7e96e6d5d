package domain

// Role is the authorization role carried by every user and bearer token.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleHR            Role = "hr"
	RoleClientManager Role = "client_manager"
	RoleEmployee      Role = "employee"
)

// Roles lists every declared role in a stable order.
var Roles = []Role{RoleAdmin, RoleHR, RoleClientManager, RoleEmployee}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
