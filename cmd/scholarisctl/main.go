// scholarisctl inspects the console route table and evaluates navigations
// offline.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/scholaris/scholaris/cmd/scholarisctl/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return cli.ExitUsage
	}
	command, rest := args[0], args[1:]
	switch command {
	case "routes":
		opts := cli.RoutesOptions{Stdout: stdout, Stderr: stderr}
		flags := newFlagSet("routes", stderr)
		flags.BoolVar(&opts.JSONOutput, "json", false, "print JSON")
		if code, ok := parse(flags, rest, stderr); !ok {
			return code
		}
		return cli.RoutesCommand(opts)
	case "check":
		opts := cli.CheckOptions{Stdout: stdout, Stderr: stderr}
		flags := newFlagSet("check", stderr)
		flags.StringVar(&opts.User, "user", "", "user identity (omit for an anonymous check)")
		flags.StringVar(&opts.Role, "role", "", "role of the user")
		flags.StringVar(&opts.Path, "path", "", "navigation path to evaluate")
		flags.BoolVar(&opts.JSONOutput, "json", false, "print JSON")
		if code, ok := parse(flags, rest, stderr); !ok {
			return code
		}
		return cli.CheckCommand(opts)
	case "permissions":
		opts := cli.PermissionsOptions{Stdout: stdout, Stderr: stderr}
		flags := newFlagSet("permissions", stderr)
		flags.StringVar(&opts.Role, "role", "", "role to list")
		if code, ok := parse(flags, rest, stderr); !ok {
			return code
		}
		return cli.PermissionsCommand(opts)
	case "help", "-h", "--help":
		printUsage(stdout)
		return cli.ExitOK
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", command)
		printUsage(stderr)
		return cli.ExitUsage
	}
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	return flags
}

func parse(flags *pflag.FlagSet, args []string, stderr io.Writer) (int, bool) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cli.ExitOK, false
		}
		return cli.ExitUsage, false
	}
	if flags.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected argument: %s\n", flags.Arg(0))
		return cli.ExitUsage, false
	}
	return 0, true
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: scholarisctl <command> [flags]

Commands:
  routes        print the console route table
  check         evaluate one navigation (exit 0 allow, 3 deny, 2 usage)
  permissions   list permission keys held by a role
`)
}
