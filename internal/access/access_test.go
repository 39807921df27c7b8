package access

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRoute(t *testing.T, desc RouteDescriptor) Route {
	t.Helper()
	route, err := NewRoute(desc)
	require.NoError(t, err)
	return route
}

func TestIsValidRoleRejectsUnknown(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, IsValidRole(string(r)), r)
	}
	for _, candidate := range []string{"", "Admin", "root", "super_admin", " admin", "*"} {
		assert.False(t, IsValidRole(candidate), candidate)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("faculty")
	require.NoError(t, err)
	assert.Equal(t, RoleFaculty, r)

	for _, candidate := range []string{"bogus-role", " faculty ", "faculty\t", "Faculty", ""} {
		_, err = ParseRole(candidate)
		require.ErrorIs(t, err, ErrInvalidRole, "%q", candidate)
		assert.False(t, IsValidRole(candidate), "%q", candidate)
	}
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule("lms")
	require.NoError(t, err)
	assert.Equal(t, ModuleLMS, m)

	for _, candidate := range []string{" lms", "LMS", "exams", ""} {
		_, err = ParseModule(candidate)
		require.ErrorIs(t, err, ErrUnknownModule, "%q", candidate)
	}
}

func TestDefaultRolesFor(t *testing.T) {
	for _, c := range Categories() {
		set, err := DefaultRolesFor(c)
		require.NoError(t, err)
		assert.False(t, set.Empty(), c)
	}

	_, err := DefaultRolesFor("finance")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Panics(t, func() { MustDefaultRolesFor("finance") })
}

func TestRoleSetMembership(t *testing.T) {
	set := MustRoleSet(RoleAdmin, RoleStudent, RoleAdmin)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has(RoleStudent))
	assert.False(t, set.Has(RoleParent))
	assert.False(t, set.Has(Role("")))
	assert.Equal(t, []Role{RoleAdmin, RoleStudent}, set.Roles())

	_, err := NewRoleSet(RoleAdmin, Role(""))
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestEvaluateMatchesDefinition(t *testing.T) {
	routes := []Route{
		mustRoute(t, RouteDescriptor{Pattern: "/master/entity-setup", Roles: []Role{RoleSuperAdmin, RoleAdmin}, Module: ModuleMasterSetup}),
		mustRoute(t, RouteDescriptor{Pattern: "/academics/attendance", Category: CategoryAcademicOperation, Module: ModuleAcademicOperation}),
		mustRoute(t, RouteDescriptor{Pattern: "/lms/*", Category: CategoryLMS, Module: ModuleLMS}),
		mustRoute(t, RouteDescriptor{Pattern: "/dashboard", Category: CategoryDashboard}),
		mustRoute(t, RouteDescriptor{Pattern: "/empty"}),
		mustRoute(t, RouteDescriptor{Pattern: "/hod-master", Roles: []Role{RoleHOD}, Module: ModuleMasterSetup}),
	}
	sessions := []Session{Anonymous, {UserID: "ghost", Role: "bogus"}}
	for _, r := range Roles() {
		sessions = append(sessions,
			Session{UserID: "u", Role: r, Authenticated: true},
			Session{UserID: "u", Role: r},
		)
	}
	sessions = append(sessions, Session{UserID: "u", Role: "bogus", Authenticated: true})

	for _, route := range routes {
		for _, sess := range sessions {
			want := sess.Authenticated &&
				route.AllowedRoles().Has(sess.Role) &&
				(route.Module() == "" || ModuleGrants(sess.Role).Has(route.Module()))
			got := Evaluate(sess, route)
			assert.Equal(t, want, got.Allow, "route=%s role=%s auth=%v", route.Pattern(), sess.Role, sess.Authenticated)
			assert.Equal(t, got, Evaluate(sess, route), "evaluate must be idempotent")
			if got.Allow {
				assert.Equal(t, ReasonOK, got.Reason)
			}
		}
	}
}

func TestEvaluateReasons(t *testing.T) {
	route := mustRoute(t, RouteDescriptor{Pattern: "/hod-master", Roles: []Role{RoleHOD, RoleAdmin}, Module: ModuleMasterSetup})

	assert.Equal(t, Decision{Reason: ReasonUnauthenticated}, Evaluate(Anonymous, route))
	assert.Equal(t, Decision{Reason: ReasonRoleDenied}, Evaluate(Session{UserID: "s", Role: RoleStudent, Authenticated: true}, route))
	assert.Equal(t, Decision{Reason: ReasonModuleDenied}, Evaluate(Session{UserID: "h", Role: RoleHOD, Authenticated: true}, route))
	assert.Equal(t, Decision{Allow: true, Reason: ReasonOK}, Evaluate(Session{UserID: "a", Role: RoleAdmin, Authenticated: true}, route))
}

func TestEmptyRoleSetFailsClosed(t *testing.T) {
	route := mustRoute(t, RouteDescriptor{Pattern: "/exams/reports"})
	for _, r := range Roles() {
		d := Evaluate(Session{UserID: "u", Role: r, Authenticated: true}, route)
		assert.False(t, d.Allow, r)
		assert.Equal(t, ReasonRoleDenied, d.Reason)
	}
}

func TestUnknownRoleNeverWildcard(t *testing.T) {
	route := mustRoute(t, RouteDescriptor{Pattern: "/dashboard", Category: CategoryDashboard})
	d := Evaluate(Session{UserID: "u", Role: Role(""), Authenticated: true}, route)
	assert.Equal(t, ReasonRoleDenied, d.Reason)
}

func TestNewRouteRejectsBadInput(t *testing.T) {
	_, err := NewRoute(RouteDescriptor{Pattern: "/x", Roles: []Role{"wizard"}})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewRoute(RouteDescriptor{Pattern: "/x", Category: "finance"})
	require.ErrorIs(t, err, ErrUnknownCategory)

	_, err = NewRoute(RouteDescriptor{Pattern: "/x", Roles: []Role{RoleAdmin}, Module: "payroll"})
	require.ErrorIs(t, err, ErrUnknownModule)

	_, err = NewRoute(RouteDescriptor{Pattern: "/x/*/y", Roles: []Role{RoleAdmin}})
	require.ErrorIs(t, err, ErrInvalidRoute)

	_, err = NewRoute(RouteDescriptor{Pattern: "  "})
	require.ErrorIs(t, err, ErrInvalidRoute)
}

func TestRouteTableResolve(t *testing.T) {
	table, err := NewRouteTable(
		RouteDescriptor{Pattern: "/lms/*", Category: CategoryLMS, Module: ModuleLMS, Screen: "lms-catchall"},
		RouteDescriptor{Pattern: "/lms/lessons", Category: CategoryLMS, Module: ModuleLMS, Screen: "lessons"},
		RouteDescriptor{Pattern: "/lms/lessons/archive/*", Roles: []Role{RoleAdmin}, Module: ModuleLMS, Screen: "archive"},
		RouteDescriptor{Pattern: "/access-denied", Public: true, Screen: "access-denied"},
		RouteDescriptor{Pattern: "*", Public: true, Screen: "not-found"},
	)
	require.NoError(t, err)

	cases := map[string]string{
		"/lms/lessons":              "lessons",
		"/lms/lessons/":             "lessons",
		"/lms/unknown-subpath":      "lms-catchall",
		"/lms":                      "lms-catchall",
		"/lms/lessons/42":           "lms-catchall",
		"/lms/lessons/archive":      "archive",
		"/lms/lessons/archive/2024": "archive",
		"/lmsx":                     "not-found",
		"/access-denied":            "access-denied",
		"/nowhere":                  "not-found",
		"/lms/../access-denied":     "access-denied",
	}
	for p, screen := range cases {
		route, ok := table.Resolve(p)
		require.True(t, ok, p)
		assert.Equal(t, screen, route.Screen(), p)
	}
}

func TestRouteTableWithoutNotFound(t *testing.T) {
	table, err := NewRouteTable(RouteDescriptor{Pattern: "/dashboard", Category: CategoryDashboard})
	require.NoError(t, err)
	_, ok := table.Resolve("/elsewhere")
	assert.False(t, ok)
}

func TestRouteTableRejectsDuplicates(t *testing.T) {
	_, err := NewRouteTable(
		RouteDescriptor{Pattern: "/dashboard", Category: CategoryDashboard},
		RouteDescriptor{Pattern: "/dashboard/", Category: CategoryDashboard},
	)
	require.ErrorIs(t, err, ErrDuplicateRoute)
}

func TestRouteTableLint(t *testing.T) {
	table, err := NewRouteTable(
		RouteDescriptor{Pattern: "/dashboard", Category: CategoryDashboard},
		RouteDescriptor{Pattern: "/orphan"},
		RouteDescriptor{Pattern: "/login", Public: true},
	)
	require.NoError(t, err)
	issues := table.Lint()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "/orphan")
}

func TestGuardStates(t *testing.T) {
	var g Guard
	route := mustRoute(t, RouteDescriptor{Pattern: "/master/entity-setup", Roles: []Role{RoleSuperAdmin, RoleAdmin}, Module: ModuleMasterSetup})
	public := mustRoute(t, RouteDescriptor{Pattern: "/access-denied", Public: true})

	assert.Equal(t, GuardUnauthenticated, g.Check(Anonymous, route).State)
	assert.Equal(t, GuardDenied, g.Check(Session{UserID: "s", Role: RoleStudent, Authenticated: true}, route).State)
	assert.Equal(t, GuardAuthorized, g.Check(Session{UserID: "a", Role: RoleAdmin, Authenticated: true}, route).State)
	assert.Equal(t, GuardAuthorized, g.Check(Anonymous, public).State)
	assert.Equal(t, "pending", GuardPending.String())
}

func TestProviderLoginLogout(t *testing.T) {
	p := NewProvider()
	assert.Equal(t, Anonymous, p.Current())

	require.NoError(t, p.Login("u1", "faculty"))
	assert.Equal(t, Session{UserID: "u1", Role: RoleFaculty, Authenticated: true}, p.Current())

	err := p.Login("u1", "bogus-role")
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.Equal(t, Session{UserID: "u1", Role: RoleFaculty, Authenticated: true}, p.Current(), "failed login must keep prior session")

	for _, role := range []string{" admin", "admin\t", "ADMIN"} {
		err = p.Login("u2", role)
		require.ErrorIs(t, err, ErrInvalidRole, "%q", role)
		assert.Equal(t, Session{UserID: "u1", Role: RoleFaculty, Authenticated: true}, p.Current(), "%q", role)
	}

	err = p.Login("  ", "admin")
	require.True(t, errors.Is(err, ErrInvalidIdentity))
	assert.Equal(t, RoleFaculty, p.Current().Role)

	p.Logout()
	assert.Equal(t, Anonymous, p.Current())
}

func TestProviderZeroValue(t *testing.T) {
	var p Provider
	assert.Equal(t, Anonymous, p.Current())
	require.NoError(t, p.Login("u2", "parent"))
	assert.Equal(t, RoleParent, p.Current().Role)
}

func TestProviderSnapshotsAreNeverMixed(t *testing.T) {
	p := NewProvider()
	require.NoError(t, p.Login("old", "student"))
	route := mustRoute(t, RouteDescriptor{Pattern: "/exams/planning", Roles: []Role{RoleFaculty}, Module: ModuleExamination})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_ = p.Login("new", "faculty")
			} else {
				_ = p.Login("old", "student")
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		sess := p.Current()
		switch sess.UserID {
		case "old":
			assert.Equal(t, RoleStudent, sess.Role)
			assert.False(t, Evaluate(sess, route).Allow)
		case "new":
			assert.Equal(t, RoleFaculty, sess.Role)
			assert.True(t, Evaluate(sess, route).Allow)
		default:
			t.Errorf("unexpected session %+v", sess)
		}
	}
	close(stop)
	wg.Wait()
}

func TestPermissions(t *testing.T) {
	assert.True(t, Allows(RoleAdmin, PermExamsPlanningExport))
	assert.False(t, Allows(RoleStudent, PermExamsPlanningExport))
	assert.False(t, Allows(RoleHOD, PermEntitySetupView), "hod holds no master-setup grant")
	assert.False(t, Allows(Role("bogus"), PermLessonsView))
	assert.False(t, Allows(RoleAdmin, Permission(999)))

	p, err := ParsePermission("exams.planning.export")
	require.NoError(t, err)
	assert.Equal(t, PermExamsPlanningExport, p)
	assert.Equal(t, ModuleExamination, p.Module())

	for _, key := range []string{"exams.planing.export", " exams.planning.export", "Exams.Planning.Export"} {
		_, err = ParsePermission(key)
		require.ErrorIs(t, err, ErrUnknownPermission, "%q", key)
	}

	assert.Equal(t, Decision{Allow: true, Reason: ReasonOK}, EvaluatePermission(Session{UserID: "a", Role: RoleAdmin, Authenticated: true}, PermAuditExport))
	assert.Equal(t, ReasonRoleDenied, EvaluatePermission(Session{UserID: "p", Role: RolePrincipal, Authenticated: true}, PermAuditExport).Reason)
	assert.Equal(t, ReasonRoleDenied, EvaluatePermission(Session{UserID: "a", Role: RoleAdmin, Authenticated: true}, Permission(999)).Reason)
	assert.Equal(t, ReasonUnauthenticated, EvaluatePermission(Anonymous, PermLessonsView).Reason)
	for _, perm := range AllPermissions() {
		for _, role := range Roles() {
			session := Session{UserID: "u", Role: role, Authenticated: true}
			assert.Equal(t, Allows(role, perm), EvaluatePermission(session, perm).Allow, "%s %s", role, perm)
		}
	}

	for _, perm := range PermissionsFor(RoleParent) {
		assert.True(t, Allows(RoleParent, perm))
		assert.True(t, ModuleGrants(RoleParent).Has(perm.Module()))
	}
	assert.Len(t, AllPermissions(), len(permissionTable))
}
