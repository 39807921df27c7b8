// Package audit reads the access audit trail back out of audit_logs for the
// timeline screen and its CSV export.
package audit

import "time"

// TimelineFilters narrows the access audit timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Role     string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one recorded access event.
type TimelineRow struct {
	At     time.Time
	Actor  string
	Role   string
	Action string
	Path   string
	Route  string
	Module string
}

// PagingInfo holds simple forward/back paging metadata.
type PagingInfo struct {
	Page     int
	HasNext  bool
	PageSize int
	PrevPage int
	NextPage int
}

// FiltersViewModel echoes the active filters back to the template.
type FiltersViewModel struct {
	From   time.Time
	To     time.Time
	Actor  string
	Role   string
	Action string
}

// ViewModel is the data behind pages/audit_timeline.html.
type ViewModel struct {
	Filters   FiltersViewModel
	Rows      []TimelineRow
	Paging    PagingInfo
	CanExport bool
	ExportURL string
}
