package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/access"
)

func TestRoutesCommandHuman(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := RoutesCommand(RoutesOptions{Stdout: stdout, Stderr: stderr})

	require.Equal(t, ExitOK, code)
	assert.Empty(t, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "PATTERN")
	assert.Contains(t, out, "/lms/*")
	assert.Contains(t, out, "(public)")
	assert.Regexp(t, `/master/entity-setup\s+entity-setup\s+master-setup\s+super-admin,admin`, out)
}

func TestRoutesCommandJSON(t *testing.T) {
	stdout := new(bytes.Buffer)
	code := RoutesCommand(RoutesOptions{JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code)

	var rows []RouteRow
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rows))
	byPattern := make(map[string]RouteRow, len(rows))
	for _, row := range rows {
		byPattern[row.Pattern] = row
	}
	reports := byPattern["/exams/reports"]
	assert.Equal(t, []string{"super-admin", "admin", "institution", "principal", "faculty"}, reports.Roles)
	assert.Equal(t, "examination", reports.Module)
	assert.True(t, byPattern["*"].Public)
}

func TestCheckCommandExitCodes(t *testing.T) {
	cases := []struct {
		name   string
		opts   CheckOptions
		code   int
		reason access.Reason
	}{
		{"anonymous", CheckOptions{Path: "/dashboard"}, ExitDenied, access.ReasonUnauthenticated},
		{"role denied", CheckOptions{User: "s1", Role: "student", Path: "/master/entity-setup"}, ExitDenied, access.ReasonRoleDenied},
		{"allowed", CheckOptions{User: "f1", Role: "faculty", Path: "/academics/attendance"}, ExitOK, access.ReasonOK},
		{"catch-all", CheckOptions{User: "a1", Role: "admin", Path: "/lms/unknown-subpath"}, ExitOK, access.ReasonOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stdout := new(bytes.Buffer)
			tc.opts.JSONOutput = true
			tc.opts.Stdout = stdout
			tc.opts.Stderr = new(bytes.Buffer)
			require.Equal(t, tc.code, CheckCommand(tc.opts))

			var summary CheckSummary
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
			assert.Equal(t, tc.reason, summary.Reason)
			assert.Equal(t, tc.code == ExitOK, summary.Allow)
		})
	}
}

func TestCheckCommandUsageErrors(t *testing.T) {
	stderr := new(bytes.Buffer)
	assert.Equal(t, ExitUsage, CheckCommand(CheckOptions{User: "x", Role: "janitor", Path: "/", Stdout: new(bytes.Buffer), Stderr: stderr}))
	assert.Contains(t, stderr.String(), "invalid role")

	stderr.Reset()
	assert.Equal(t, ExitUsage, CheckCommand(CheckOptions{User: "x", Role: "admin", Stdout: new(bytes.Buffer), Stderr: stderr}))
	assert.Contains(t, stderr.String(), "--path")

	stderr.Reset()
	assert.Equal(t, ExitUsage, CheckCommand(CheckOptions{Role: "admin", Path: "/", Stdout: new(bytes.Buffer), Stderr: stderr}))
}

func TestCheckCommandHumanOutput(t *testing.T) {
	stdout := new(bytes.Buffer)
	code := CheckCommand(CheckOptions{User: "h1", Role: "hod", Path: "/exams/reports", Stdout: stdout, Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitDenied, code)
	assert.Equal(t, "DENY /exams/reports via /exams/reports (role-denied)\n", stdout.String())
}

func TestPermissionsCommand(t *testing.T) {
	stdout := new(bytes.Buffer)
	require.Equal(t, ExitOK, PermissionsCommand(PermissionsOptions{Role: "parent", Stdout: stdout, Stderr: new(bytes.Buffer)}))
	lines := strings.Fields(stdout.String())
	assert.Equal(t, []string{"academics.calendar.view"}, lines)

	assert.Equal(t, ExitUsage, PermissionsCommand(PermissionsOptions{Role: "", Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)}))
}
