package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/navigation"
	"github.com/scholaris/scholaris/internal/rbac"
)

// CheckOptions defines available flags for the check command.
type CheckOptions struct {
	User       string
	Role       string
	Path       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CheckSummary is the JSON output of the check command.
type CheckSummary struct {
	User   string        `json:"user,omitempty"`
	Role   string        `json:"role,omitempty"`
	Path   string        `json:"path"`
	Route  string        `json:"route"`
	State  string        `json:"state"`
	Allow  bool          `json:"allow"`
	Reason access.Reason `json:"reason"`
}

// CheckCommand evaluates one navigation. With no user the navigation is
// anonymous. It exits 0 on allow and 3 on any denial.
func CheckCommand(opts CheckOptions) int {
	opts.Stdout, opts.Stderr = streams(opts.Stdout, opts.Stderr)
	if opts.Path == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "check: --path is required")
		return ExitUsage
	}
	provider := access.NewProvider()
	if opts.User != "" || opts.Role != "" {
		if err := provider.Login(opts.User, opts.Role); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
			return ExitUsage
		}
	}
	table, err := navigation.DefaultTable()
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return ExitFailed
	}
	route, ok := table.Resolve(opts.Path)
	if !ok {
		_, _ = fmt.Fprintf(opts.Stderr, "check: no route matches %s\n", opts.Path)
		return ExitFailed
	}

	session := provider.Current()
	var guard access.Guard
	outcome := guard.Check(session, route)
	summary := CheckSummary{
		User:   session.UserID,
		Role:   session.Role.String(),
		Path:   opts.Path,
		Route:  route.Pattern(),
		State:  outcome.State.String(),
		Allow:  outcome.Decision.Allow,
		Reason: outcome.Decision.Reason,
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: encode json: %v\n", err)
			return ExitFailed
		}
	} else {
		verdict := "DENY"
		if summary.Allow {
			verdict = "ALLOW"
		}
		_, _ = fmt.Fprintf(opts.Stdout, "%s %s via %s (%s)\n", verdict, summary.Path, summary.Route, summary.Reason)
	}
	if !summary.Allow {
		return ExitDenied
	}
	return ExitOK
}

// PermissionsOptions defines available flags for the permissions command.
type PermissionsOptions struct {
	Role   string
	Stdout io.Writer
	Stderr io.Writer
}

// PermissionsCommand lists the permission keys a role holds.
func PermissionsCommand(opts PermissionsOptions) int {
	opts.Stdout, opts.Stderr = streams(opts.Stdout, opts.Stderr)
	role, err := access.ParseRole(opts.Role)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "permissions: %v\n", err)
		return ExitUsage
	}
	for _, key := range rbac.NewService().EffectivePermissions(role) {
		_, _ = fmt.Fprintln(opts.Stdout, key)
	}
	return ExitOK
}
