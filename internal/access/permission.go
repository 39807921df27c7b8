package access

import (
	"fmt"
	"sort"
)

// Permission names an in-screen action. The set is closed: new keys must be
// added to permissionTable, so a misspelt key fails to compile.
type Permission int

// Permission keys.
const (
	PermEntitySetupView Permission = iota + 1
	PermEntitySetupEdit
	PermTermSetupView
	PermTermSetupEdit
	PermAttendanceView
	PermAttendanceMark
	PermCalendarView
	PermCalendarEdit
	PermLessonsView
	PermLessonsPublish
	PermExamsPlanningView
	PermExamsPlanningEdit
	PermExamsPlanningExport
	PermExamsReportsView
	PermExamsReportsExport
	PermAuditView
	PermAuditExport
)

type permissionSpec struct {
	key    string
	module Module
	roles  RoleSet
}

var (
	rolesMasterAdmins = MustRoleSet(RoleSuperAdmin, RoleAdmin)
	rolesLeadership   = MustRoleSet(RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal)
	rolesTeaching     = rolesLeadership.Union(MustRoleSet(RoleHOD, RoleFaculty))
)

var permissionTable = map[Permission]permissionSpec{
	PermEntitySetupView:     {key: "master.entity.view", module: ModuleMasterSetup, roles: rolesMasterAdmins},
	PermEntitySetupEdit:     {key: "master.entity.edit", module: ModuleMasterSetup, roles: rolesMasterAdmins},
	PermTermSetupView:       {key: "master.term.view", module: ModuleMasterSetup, roles: rolesMasterAdmins},
	PermTermSetupEdit:       {key: "master.term.edit", module: ModuleMasterSetup, roles: MustRoleSet(RoleSuperAdmin)},
	PermAttendanceView:      {key: "academics.attendance.view", module: ModuleAcademicOperation, roles: MustDefaultRolesFor(CategoryAcademicOperation)},
	PermAttendanceMark:      {key: "academics.attendance.mark", module: ModuleAcademicOperation, roles: rolesTeaching.Union(MustRoleSet(RoleStaff))},
	PermCalendarView:        {key: "academics.calendar.view", module: ModuleAcademicOperation, roles: MustDefaultRolesFor(CategoryCommunication)},
	PermCalendarEdit:        {key: "academics.calendar.edit", module: ModuleAcademicOperation, roles: rolesLeadership},
	PermLessonsView:         {key: "lms.lessons.view", module: ModuleLMS, roles: MustDefaultRolesFor(CategoryLMS)},
	PermLessonsPublish:      {key: "lms.lessons.publish", module: ModuleLMS, roles: rolesTeaching},
	PermExamsPlanningView:   {key: "exams.planning.view", module: ModuleExamination, roles: rolesTeaching},
	PermExamsPlanningEdit:   {key: "exams.planning.edit", module: ModuleExamination, roles: rolesLeadership.Union(MustRoleSet(RoleHOD))},
	PermExamsPlanningExport: {key: "exams.planning.export", module: ModuleExamination, roles: rolesLeadership},
	PermExamsReportsView:    {key: "exams.reports.view", module: ModuleExamination, roles: MustDefaultRolesFor(CategoryExaminationReports)},
	PermExamsReportsExport:  {key: "exams.reports.export", module: ModuleExamination, roles: rolesLeadership},
	PermAuditView:           {key: "audit.access.view", module: ModuleMasterSetup, roles: rolesLeadership},
	PermAuditExport:         {key: "audit.access.export", module: ModuleMasterSetup, roles: rolesMasterAdmins},
}

var permissionByKey = func() map[string]Permission {
	idx := make(map[string]Permission, len(permissionTable))
	for p, spec := range permissionTable {
		idx[spec.key] = p
	}
	return idx
}()

func (p Permission) String() string {
	if spec, ok := permissionTable[p]; ok {
		return spec.key
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

// Module returns the module the permission belongs to.
func (p Permission) Module() Module {
	return permissionTable[p].module
}

// ParsePermission maps a dotted key such as "exams.planning.export" to its
// Permission. Keys must match exactly.
func ParsePermission(key string) (Permission, error) {
	p, ok := permissionByKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPermission, key)
	}
	return p, nil
}

// Allows reports whether role holds perm. The role must be listed for the
// permission and hold a grant for its module.
func Allows(role Role, perm Permission) bool {
	spec, ok := permissionTable[perm]
	if !ok {
		return false
	}
	return spec.roles.Has(role) && ModuleGrants(role).Has(spec.module)
}

// EvaluatePermission decides whether session may use perm, with the same
// reasons Evaluate reports for routes.
func EvaluatePermission(session Session, perm Permission) Decision {
	if !session.Authenticated {
		return decisionUnauthenticated
	}
	entry, ok := permissionTable[perm]
	if !ok || !entry.roles.Has(session.Role) {
		return decisionRoleDenied
	}
	if !ModuleGrants(session.Role).Has(entry.module) {
		return decisionModuleDenied
	}
	return decisionOK
}

// PermissionsFor lists the permissions role holds, sorted by key.
func PermissionsFor(role Role) []Permission {
	var out []Permission
	for p := range permissionTable {
		if Allows(role, p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// AllPermissions lists every permission sorted by key.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(permissionTable))
	for p := range permissionTable {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
