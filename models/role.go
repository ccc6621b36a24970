package models

import "fmt"

// Role is the authorization class of an acting user. It gates status
// transitions and route access; it is never stored on orders or items.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleWaiter        Role = "waiter"
	RoleCook          Role = "cook"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleWaiter, RoleCook:
		return true
	}
	return false
}

// ParseRole converts a raw string (e.g. from a JWT claim) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
