// Package navigation owns the console route table and the shell that maps a
// request path to its guarded screen.
package navigation

import (
	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/screens"
)

// Descriptors returns the console route table rows.
func Descriptors() []access.RouteDescriptor {
	return []access.RouteDescriptor{
		{Pattern: "/", Category: access.CategoryDashboard, Screen: screens.KeyDashboard},
		{Pattern: "/dashboard", Category: access.CategoryDashboard, Screen: screens.KeyDashboard},

		{Pattern: "/master/entity-setup", Category: access.CategoryMasterSetup, Module: access.ModuleMasterSetup, Screen: screens.KeyEntitySetup},
		{Pattern: "/master/term-setup", Category: access.CategoryMasterSetup, Module: access.ModuleMasterSetup, Screen: screens.KeyTermSetup},

		{Pattern: "/academics/attendance", Category: access.CategoryAcademicOperation, Module: access.ModuleAcademicOperation, Screen: screens.KeyAttendance},
		{Pattern: "/academics/calendar", Category: access.CategoryCommunication, Module: access.ModuleAcademicOperation, Screen: screens.KeyCalendar},

		{Pattern: "/lms/lessons", Category: access.CategoryLMS, Module: access.ModuleLMS, Screen: screens.KeyLessons},
		{Pattern: "/lms/*", Category: access.CategoryLMS, Module: access.ModuleLMS, Screen: screens.KeyLMS},

		{Pattern: "/exams/planning", Category: access.CategoryExamination, Module: access.ModuleExamination, Screen: screens.KeyExamsPlanning},
		{Pattern: "/exams/reports", Category: access.CategoryExaminationReports, Module: access.ModuleExamination, Screen: screens.KeyExamsReports},

		{Pattern: "/access-denied", Public: true, Screen: screens.KeyAccessDenied},
		{Pattern: "/login", Public: true, Screen: screens.KeyLogin},
		{Pattern: access.NotFoundPattern, Public: true, Screen: screens.KeyNotFound},
	}
}

// DefaultTable builds the console route table.
func DefaultTable() (*access.RouteTable, error) {
	return access.NewRouteTable(Descriptors()...)
}
