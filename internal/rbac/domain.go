package rbac

import "github.com/scholaris/scholaris/internal/access"

// Grants summarises what a role may reach.
type Grants struct {
	Role        access.Role
	Modules     []access.Module
	Permissions []PermissionView
}

// PermissionView is a permission as shown on the grants page.
type PermissionView struct {
	Key    string
	Module access.Module
}
