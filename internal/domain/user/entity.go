package user

type Role string

const (
	RoleOwner    Role = "owner"    // Organization owner - full access
	RoleManager  Role = "manager"  // Branch manager - reports and live view
	RoleEmployee Role = "employee" // Regular employee - own attendance only
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}
