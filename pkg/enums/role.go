package enums

import "fmt"

// Role captures the caller's authorization role carried in access tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

var validRoles = []Role{
	RoleAdmin,
	RoleAgent,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts the raw string to Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
