package cli

import (
	ucli "github.com/urfave/cli/v3"

	"github.com/home-assistant-blueprints/ha-history-go/internal/output"
)

// TimeFlags returns the --from, --to and --hours flags.
func TimeFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{
			Name:  "from",
			Usage: "Start time (YYYY-MM-DD or YYYY-MM-DD HH:MM)",
		},
		&ucli.StringFlag{
			Name:  "to",
			Usage: "End time (YYYY-MM-DD or YYYY-MM-DD HH:MM, default: now)",
		},
		&ucli.IntFlag{
			Name:  "hours",
			Usage: "History window when --from is not given (default from config)",
		},
	}
}

// OutputFlags returns the output formatting flags.
func OutputFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{
			Name:    "output",
			Aliases: []string{"format"},
			Value:   string(output.FormatDefault),
			Usage:   "Output format: json, compact, or default",
		},
		&ucli.BoolFlag{
			Name:  "compact",
			Usage: "Use compact output format (single-line entries)",
		},
		&ucli.BoolFlag{
			Name:  "json",
			Usage: "Use JSON output format (machine-readable)",
		},
		&ucli.BoolFlag{
			Name:  "no-headers",
			Usage: "Hide section headers and titles",
		},
		&ucli.BoolFlag{
			Name:  "no-timestamps",
			Usage: "Hide timestamps in output",
		},
		&ucli.IntFlag{
			Name:  "max-items",
			Usage: "Limit output to N items (0 = unlimited)",
		},
	}
}

// ConnectionFlags returns the flags that override the Home Assistant
// connection settings from the config file.
func ConnectionFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{
			Name:  "url",
			Usage: "Home Assistant WebSocket URL",
		},
		&ucli.StringFlag{
			Name:  "rest-url",
			Usage: "Home Assistant REST API base URL",
		},
		&ucli.StringFlag{
			Name:  "token",
			Usage: "Long-lived access token",
		},
		&ucli.DurationFlag{
			Name:  "timeout",
			Usage: "Connection and request timeout",
		},
	}
}

// SettingsFlags returns the flags for config file, logging and locale.
func SettingsFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML config file",
		},
		&ucli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: trace, debug, info, warn, error, disabled",
		},
		&ucli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: console or json",
		},
		&ucli.StringFlag{
			Name:  "language",
			Usage: "Display language for state labels",
		},
		&ucli.StringFlag{
			Name:  "translations",
			Usage: "YAML file with extra translations",
		},
		&ucli.StringFlag{
			Name:  "temperature-unit",
			Usage: "Temperature unit for climate entities (default from Home Assistant)",
		},
	}
}

// AllFlags returns every global flag.
func AllFlags() []ucli.Flag {
	var flags []ucli.Flag
	flags = append(flags, SettingsFlags()...)
	flags = append(flags, ConnectionFlags()...)
	flags = append(flags, TimeFlags()...)
	flags = append(flags, OutputFlags()...)
	return flags
}

// OutputFormat resolves the output format. --json wins over --compact,
// which wins over --output.
func OutputFormat(cmd *ucli.Command) string {
	switch {
	case cmd.Bool("json"):
		return string(output.FormatJSON)
	case cmd.Bool("compact"):
		return string(output.FormatCompact)
	default:
		return cmd.String("output")
	}
}

// ConfigureOutput applies the output flags to the global output config.
func ConfigureOutput(cmd *ucli.Command) {
	output.ConfigureFromFlags(
		OutputFormat(cmd),
		cmd.Bool("no-headers"),
		cmd.Bool("no-timestamps"),
		cmd.Int("max-items"),
	)
}
