// Package main is the entry point for the ha-history CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/output"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}

func main() {
	os.Exit(run(context.Background(), os.Args))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string) int {
	a := &app{}
	err := a.runError(a.command().Run(ctx, args))
	a.close()
	if err != nil {
		output.Error(err, errors.GetCode(err))
		output.Hint(hint(err))
		return 1
	}
	return 0
}

// hint suggests what to check after a failed command, or returns "".
func hint(err error) string {
	switch {
	case errors.IsAuth(err):
		return "check the access token (--token, HA_HISTORY_TOKEN or SUPERVISOR_TOKEN)"
	case errors.IsNetwork(err):
		return "check that Home Assistant is reachable at --url"
	case errors.IsConfig(err):
		return "check the config file and HA_HISTORY_* environment variables"
	case errors.IsBusy(err):
		return "another fetch is still running; retry when it finishes"
	case errors.IsAPI(err):
		return "Home Assistant rejected the request; its log has the details"
	case errors.IsValidation(err):
		return "run with --help for usage"
	default:
		return ""
	}
}
