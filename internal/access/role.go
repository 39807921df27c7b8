// Package access decides which console screens a session may open.
package access

import (
	"fmt"
	"sort"
)

// Role identifies the category of user operating the console.
type Role string

// Closed set of console roles.
const (
	RoleSuperAdmin  Role = "super-admin"
	RoleAdmin       Role = "admin"
	RoleInstitution Role = "institution"
	RolePrincipal   Role = "principal"
	RoleHOD         Role = "hod"
	RoleFaculty     Role = "faculty"
	RoleStaff       Role = "staff"
	RoleStudent     Role = "student"
	RoleParent      Role = "parent"
)

// allRoles keeps declaration order; bit positions in RoleSet follow it.
var allRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleInstitution,
	RolePrincipal,
	RoleHOD,
	RoleFaculty,
	RoleStaff,
	RoleStudent,
	RoleParent,
}

var roleIndex = func() map[Role]uint {
	idx := make(map[Role]uint, len(allRoles))
	for i, r := range allRoles {
		idx[r] = uint(i)
	}
	return idx
}()

// Roles returns every valid role in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// IsValidRole reports whether candidate belongs to the closed role set.
// Callers must treat false as "no access".
func IsValidRole(candidate string) bool {
	_, ok := roleIndex[Role(candidate)]
	return ok
}

// ParseRole converts candidate into a Role, rejecting unknown values. The
// match is exact, the same check IsValidRole applies.
func ParseRole(candidate string) (Role, error) {
	r := Role(candidate)
	if _, ok := roleIndex[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, candidate)
	}
	return r, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := roleIndex[r]
	return ok
}

func (r Role) String() string { return string(r) }

// RoleSet is an immutable set of roles.
type RoleSet struct {
	bits uint16
}

// NewRoleSet builds a set from roles. Unknown roles are reported, not dropped.
func NewRoleSet(roles ...Role) (RoleSet, error) {
	var set RoleSet
	for _, r := range roles {
		i, ok := roleIndex[r]
		if !ok {
			return RoleSet{}, fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
		}
		set.bits |= 1 << i
	}
	return set, nil
}

// MustRoleSet is NewRoleSet for static tables; it panics on unknown roles.
func MustRoleSet(roles ...Role) RoleSet {
	set, err := NewRoleSet(roles...)
	if err != nil {
		panic(err)
	}
	return set
}

// Has reports membership. Unknown roles are never members.
func (s RoleSet) Has(r Role) bool {
	i, ok := roleIndex[r]
	if !ok {
		return false
	}
	return s.bits&(1<<i) != 0
}

// Empty reports whether the set has no members.
func (s RoleSet) Empty() bool { return s.bits == 0 }

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Union returns the roles present in either set.
func (s RoleSet) Union(other RoleSet) RoleSet { return RoleSet{bits: s.bits | other.bits} }

// Roles lists members in declaration order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, s.Len())
	for i, r := range allRoles {
		if s.bits&(1<<uint(i)) != 0 {
			out = append(out, r)
		}
	}
	return out
}

// Module identifies a functional area of the console.
type Module string

// Closed set of modules. Modules do not nest.
const (
	ModuleMasterSetup       Module = "master-setup"
	ModuleAcademicOperation Module = "academic-operation"
	ModuleLMS               Module = "lms"
	ModuleExamination       Module = "examination"
)

var allModules = []Module{
	ModuleMasterSetup,
	ModuleAcademicOperation,
	ModuleLMS,
	ModuleExamination,
}

var moduleIndex = func() map[Module]uint {
	idx := make(map[Module]uint, len(allModules))
	for i, m := range allModules {
		idx[m] = uint(i)
	}
	return idx
}()

// Modules returns every module in declaration order.
func Modules() []Module {
	out := make([]Module, len(allModules))
	copy(out, allModules)
	return out
}

// ParseModule converts candidate into a Module.
func ParseModule(candidate string) (Module, error) {
	m := Module(candidate)
	if _, ok := moduleIndex[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, candidate)
	}
	return m, nil
}

// Valid reports whether m belongs to the closed module set.
func (m Module) Valid() bool {
	_, ok := moduleIndex[m]
	return ok
}

func (m Module) String() string { return string(m) }

// ModuleSet is an immutable set of modules.
type ModuleSet struct {
	bits uint8
}

func newModuleSet(modules ...Module) ModuleSet {
	var set ModuleSet
	for _, m := range modules {
		i, ok := moduleIndex[m]
		if !ok {
			panic(fmt.Errorf("%w: %q", ErrUnknownModule, string(m)))
		}
		set.bits |= 1 << i
	}
	return set
}

// Has reports membership.
func (s ModuleSet) Has(m Module) bool {
	i, ok := moduleIndex[m]
	if !ok {
		return false
	}
	return s.bits&(1<<i) != 0
}

// Modules lists members in declaration order.
func (s ModuleSet) Modules() []Module {
	out := make([]Module, 0, len(allModules))
	for i, m := range allModules {
		if s.bits&(1<<uint(i)) != 0 {
			out = append(out, m)
		}
	}
	return out
}

var allModuleSet = newModuleSet(allModules...)

var moduleGrants = map[Role]ModuleSet{
	RoleSuperAdmin:  allModuleSet,
	RoleAdmin:       allModuleSet,
	RoleInstitution: allModuleSet,
	RolePrincipal:   allModuleSet,
	RoleHOD:         newModuleSet(ModuleAcademicOperation, ModuleLMS, ModuleExamination),
	RoleFaculty:     newModuleSet(ModuleAcademicOperation, ModuleLMS, ModuleExamination),
	RoleStaff:       newModuleSet(ModuleAcademicOperation, ModuleExamination),
	RoleStudent:     newModuleSet(ModuleAcademicOperation, ModuleLMS, ModuleExamination),
	RoleParent:      newModuleSet(ModuleAcademicOperation),
}

// ModuleGrants returns the modules a role may enter. Unknown roles get none.
func ModuleGrants(r Role) ModuleSet {
	return moduleGrants[r]
}

// Category groups screens sharing a default allowed-role list.
type Category string

// Screen categories with default role lists.
const (
	CategoryDashboard          Category = "dashboard"
	CategoryMasterSetup        Category = "master-setup"
	CategoryAcademicOperation  Category = "academic-operation"
	CategoryLMS                Category = "lms"
	CategoryExamination        Category = "examination"
	CategoryExaminationReports Category = "examination-reports"
	CategoryCommunication      Category = "communication"
)

var categoryDefaults = map[Category]RoleSet{
	CategoryDashboard: MustRoleSet(allRoles...),
	CategoryMasterSetup: MustRoleSet(
		RoleSuperAdmin, RoleAdmin,
	),
	CategoryAcademicOperation: MustRoleSet(
		RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal,
		RoleHOD, RoleFaculty, RoleStaff, RoleStudent,
	),
	CategoryLMS: MustRoleSet(
		RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal,
		RoleFaculty, RoleStudent,
	),
	CategoryExamination: MustRoleSet(
		RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal,
		RoleHOD, RoleFaculty, RoleStaff, RoleStudent,
	),
	CategoryExaminationReports: MustRoleSet(
		RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal, RoleFaculty,
	),
	CategoryCommunication: MustRoleSet(
		RoleSuperAdmin, RoleAdmin, RoleInstitution, RolePrincipal,
		RoleHOD, RoleFaculty, RoleStaff, RoleStudent, RoleParent,
	),
}

// DefaultRolesFor returns the default allowed roles for a screen category.
func DefaultRolesFor(c Category) (RoleSet, error) {
	set, ok := categoryDefaults[c]
	if !ok {
		return RoleSet{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	return set, nil
}

// MustDefaultRolesFor is DefaultRolesFor for boot-time tables. An unknown
// category is a programming error and panics.
func MustDefaultRolesFor(c Category) RoleSet {
	set, err := DefaultRolesFor(c)
	if err != nil {
		panic(err)
	}
	return set
}

// Categories lists known categories sorted by name.
func Categories() []Category {
	out := make([]Category, 0, len(categoryDefaults))
	for c := range categoryDefaults {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
