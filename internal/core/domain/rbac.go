package domain

// Fixed application roles. The registry ensures all three exist before the
// service accepts traffic; no roles are created or deleted at runtime.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleOrgAdmin   = "OrgAdmin"
	RoleMember     = "Member"
)

// AllRoles returns the fixed role set in bootstrap order.
func AllRoles() []string {
	return []string{RoleSuperAdmin, RoleOrgAdmin, RoleMember}
}

// Role defines a named permission group.
type Role struct {
	ID   string
	Name string
}

// ClaimSet is the verified identity extracted from a bearer token for one request.
type ClaimSet struct {
	Subject string
	Email   string
	Roles   []string
}

// HasAnyRole reports whether the claim set carries at least one of the given roles.
func (c ClaimSet) HasAnyRole(names ...string) bool {
	for _, have := range c.Roles {
		for _, want := range names {
			if have == want {
				return true
			}
		}
	}
	return false
}
