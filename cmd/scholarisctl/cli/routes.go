// Package cli implements the scholarisctl subcommands. Each command returns a
// process exit code and writes to the supplied streams.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/navigation"
)

// Exit codes shared by the commands.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
	ExitDenied = 3
)

// RoutesOptions defines available flags for the routes command.
type RoutesOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RouteRow is one route in the routes listing.
type RouteRow struct {
	Pattern string   `json:"pattern"`
	Screen  string   `json:"screen"`
	Module  string   `json:"module,omitempty"`
	Public  bool     `json:"public"`
	Roles   []string `json:"roles,omitempty"`
}

// RoutesCommand prints the console route table.
func RoutesCommand(opts RoutesOptions) int {
	opts.Stdout, opts.Stderr = streams(opts.Stdout, opts.Stderr)
	table, err := navigation.DefaultTable()
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "routes: %v\n", err)
		return ExitFailed
	}
	rows := buildRouteRows(table)
	for _, issue := range table.Lint() {
		_, _ = fmt.Fprintf(opts.Stderr, "warning: %s\n", issue)
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(rows); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "routes: encode json: %v\n", err)
			return ExitFailed
		}
		return ExitOK
	}
	tw := tabwriter.NewWriter(opts.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATTERN\tSCREEN\tMODULE\tROLES")
	for _, row := range rows {
		roles := strings.Join(row.Roles, ",")
		if row.Public {
			roles = "(public)"
		}
		module := row.Module
		if module == "" {
			module = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Pattern, row.Screen, module, roles)
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "routes: %v\n", err)
		return ExitFailed
	}
	return ExitOK
}

func buildRouteRows(table *access.RouteTable) []RouteRow {
	routes := table.Routes()
	rows := make([]RouteRow, 0, len(routes))
	for _, route := range routes {
		row := RouteRow{
			Pattern: route.Pattern(),
			Screen:  route.Screen(),
			Module:  route.Module().String(),
			Public:  route.Public(),
		}
		for _, role := range route.AllowedRoles().Roles() {
			row.Roles = append(row.Roles, role.String())
		}
		rows = append(rows, row)
	}
	return rows
}

func streams(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
