package constants

const (
	Owner   = "owner"
	Admin   = "admin"
	Manager = "manager"
	Staff   = "staff"
)

// ValidRoles is the set of allowed values for Users.role.
var ValidRoles = []string{Staff, Manager, Admin, Owner}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
