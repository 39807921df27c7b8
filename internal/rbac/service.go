package rbac

import (
	"github.com/scholaris/scholaris/internal/access"
)

// Service answers questions about the static role and permission tables.
type Service struct{}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{}
}

// GrantsFor lists the modules and permissions held by role. Unknown roles
// hold nothing.
func (s *Service) GrantsFor(role access.Role) Grants {
	grants := Grants{Role: role}
	if !role.Valid() {
		return grants
	}
	grants.Modules = access.ModuleGrants(role).Modules()
	for _, p := range access.PermissionsFor(role) {
		grants.Permissions = append(grants.Permissions, PermissionView{Key: p.String(), Module: p.Module()})
	}
	return grants
}

// EffectivePermissions returns permission keys held by role.
func (s *Service) EffectivePermissions(role access.Role) []string {
	perms := access.PermissionsFor(role)
	keys := make([]string, len(perms))
	for i, p := range perms {
		keys[i] = p.String()
	}
	return keys
}
