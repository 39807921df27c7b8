// Package screens holds the console's screen catalog and renders screens,
// the Access-Denied view and the Not-Found view.
package screens

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scholaris/scholaris/internal/access"
)

// Screen keys referenced by the route table.
const (
	KeyDashboard     = "dashboard"
	KeyEntitySetup   = "entity-setup"
	KeyTermSetup     = "term-setup"
	KeyAttendance    = "attendance"
	KeyCalendar      = "calendar"
	KeyLMS           = "lms"
	KeyLessons       = "lessons"
	KeyExamsPlanning = "exams-planning"
	KeyExamsReports  = "exams-reports"
	KeyAccessDenied  = "access-denied"
	KeyLogin         = "login"
	KeyNotFound      = "not-found"
)

// Exam planning figures shown on the planning screen. They are display
// constants, not computed.
const (
	ExamPlanningConflicts   = 3
	ExamPlanningUtilization = "87%"
)

const (
	templateScreen       = "pages/screen.html"
	templateAccessDenied = "pages/access_denied.html"
	templateNotFound     = "pages/not_found.html"
)

// Stat is a labelled figure displayed on a screen.
type Stat struct {
	Label string
	Value string
}

// Screen describes one renderable console screen.
type Screen struct {
	Key         string
	Title       string
	Summary     string
	Template    string
	Permissions []access.Permission
	Stats       []Stat
	// Redirect sends the navigation elsewhere instead of rendering.
	Redirect string
}

var catalog = map[string]Screen{
	KeyDashboard: {
		Key:     KeyDashboard,
		Title:   "Dashboard",
		Summary: "Overview of your institution.",
	},
	KeyEntitySetup: {
		Key:         KeyEntitySetup,
		Title:       "Entity setup",
		Summary:     "Institutions, campuses and departments.",
		Permissions: []access.Permission{access.PermEntitySetupView, access.PermEntitySetupEdit},
	},
	KeyTermSetup: {
		Key:         KeyTermSetup,
		Title:       "Term setup",
		Summary:     "Academic years, terms and sessions.",
		Permissions: []access.Permission{access.PermTermSetupView, access.PermTermSetupEdit},
	},
	KeyAttendance: {
		Key:         KeyAttendance,
		Title:       "Attendance",
		Summary:     "Daily attendance registers.",
		Permissions: []access.Permission{access.PermAttendanceView, access.PermAttendanceMark},
	},
	KeyCalendar: {
		Key:         KeyCalendar,
		Title:       "Academic calendar",
		Summary:     "Holidays, events and term dates.",
		Permissions: []access.Permission{access.PermCalendarView, access.PermCalendarEdit},
	},
	KeyLMS: {
		Key:         KeyLMS,
		Title:       "Learning",
		Summary:     "Courses and learning material.",
		Permissions: []access.Permission{access.PermLessonsView},
	},
	KeyLessons: {
		Key:         KeyLessons,
		Title:       "Lessons",
		Summary:     "Lesson plans and published material.",
		Permissions: []access.Permission{access.PermLessonsView, access.PermLessonsPublish},
	},
	KeyExamsPlanning: {
		Key:         KeyExamsPlanning,
		Title:       "Exam planning",
		Summary:     "Exam schedules, halls and invigilation.",
		Permissions: []access.Permission{access.PermExamsPlanningView, access.PermExamsPlanningEdit, access.PermExamsPlanningExport},
		Stats: []Stat{
			{Label: "Schedule conflicts", Value: strconv.Itoa(ExamPlanningConflicts)},
			{Label: "Hall utilization", Value: ExamPlanningUtilization},
		},
	},
	KeyExamsReports: {
		Key:         KeyExamsReports,
		Title:       "Exam reports",
		Summary:     "Results, grade sheets and analysis.",
		Permissions: []access.Permission{access.PermExamsReportsView, access.PermExamsReportsExport},
	},
	KeyAccessDenied: {
		Key:      KeyAccessDenied,
		Title:    "Access denied",
		Template: templateAccessDenied,
	},
	KeyLogin: {
		Key:      KeyLogin,
		Title:    "Sign in",
		Redirect: "/auth/login",
	},
	KeyNotFound: {
		Key:      KeyNotFound,
		Title:    "Not found",
		Template: templateNotFound,
	},
}

// Lookup returns the screen registered under key.
func Lookup(key string) (Screen, bool) {
	s, ok := catalog[key]
	if !ok {
		return Screen{}, false
	}
	if s.Template == "" {
		s.Template = templateScreen
	}
	return s, true
}

// Keys lists catalog keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ModuleLabel turns a module key into a display label, e.g.
// "academic-operation" becomes "Academic Operation".
func ModuleLabel(m access.Module) string {
	if m == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(m), "-", " "))
}
