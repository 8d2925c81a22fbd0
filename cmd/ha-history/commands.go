package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/home-assistant-blueprints/ha-history-go/internal/config"
	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/fetch"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
	"github.com/home-assistant-blueprints/ha-history-go/internal/output"
)

func (a *app) historyCommand(name, usage string, section output.Section) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<entity_id>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "rest", Usage: "Use the REST API instead of the WebSocket API"},
			&cli.BoolFlag{Name: "significant-changes-only", Usage: "Only return significant state changes"},
			&cli.BoolFlag{Name: "all-changes", Usage: "Return every state change, including insignificant ones"},
			&cli.BoolFlag{Name: "skip-initial-state", Usage: "Omit the state at the start of the period"},
			&cli.BoolFlag{Name: "no-attributes", Usage: "Do not request attributes"},
			&cli.BoolFlag{Name: "full", Usage: "Request full records instead of a minimal response"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := lo.Compact(cmd.Args().Slice())
			if len(ids) == 0 {
				return errors.ErrMissingArgument(name + " <entity_id>...")
			}

			q, err := a.historyQuery(cmd, ids)
			if err != nil {
				return err
			}

			source, unit, err := a.historySource(ctx, cmd)
			if err != nil {
				return err
			}

			fetcher := fetch.NewFetcher(source, a.historyConfig(unit), a.catalog.Localize)
			result, err := fetcher.History(ctx, q)
			if err != nil {
				return err
			}
			output.History(result, section, output.WithCommand(name))
			return nil
		},
	}
}

// historyQuery builds the request from the time flags and history settings.
// An explicit --from or --to selects a date range query, which asks for
// significant changes only unless --all-changes is given.
func (a *app) historyQuery(cmd *cli.Command, ids []string) (fetch.Query, error) {
	start, end, err := a.timeRange(cmd)
	if err != nil {
		return fetch.Query{}, err
	}

	var q fetch.Query
	if cmd.String("from") != "" || cmd.String("to") != "" {
		q = fetch.DateQuery(start, end, ids)
	} else {
		q = fetch.RecentQuery(ids, start, end)
	}

	h := a.cfg.History
	q.MinimalResponse = h.MinimalResponse && !cmd.Bool("full")
	q.SkipInitialState = h.SkipInitialState || cmd.Bool("skip-initial-state")
	q.NoAttributes = cmd.Bool("no-attributes")
	switch {
	case cmd.Bool("all-changes") && cmd.Bool("significant-changes-only"):
		return fetch.Query{}, errors.ErrInvalidArgument("--all-changes and --significant-changes-only are mutually exclusive")
	case cmd.Bool("all-changes"):
		q.SignificantChangesOnly = lo.ToPtr(false)
	case h.SignificantChangesOnly || cmd.Bool("significant-changes-only"):
		q.SignificantChangesOnly = lo.ToPtr(true)
	}
	return q, nil
}

// historySource picks the WebSocket or REST source and the temperature unit
// to shape results with.
func (a *app) historySource(ctx context.Context, cmd *cli.Command) (fetch.HistorySource, string, error) {
	ha := a.cfg.HomeAssistant
	if cmd.Bool("rest") {
		if ha.Token == "" {
			return nil, "", errors.ErrInvalidConfig("home_assistant.token",
				"no access token; set SUPERVISOR_TOKEN, HA_HISTORY_TOKEN or --token")
		}
		base, err := restBaseURL(ha)
		if err != nil {
			return nil, "", err
		}
		logging.Debug().Str("url", base).Msg("using REST API")
		source := fetch.NewRESTSource(base, ha.Token, &http.Client{Timeout: ha.Timeout})
		return source, a.temperatureUnit(ctx, nil), nil
	}

	c, err := a.connect(ctx)
	if err != nil {
		return nil, "", err
	}
	return fetch.NewWSSource(c), a.temperatureUnit(ctx, c), nil
}

func (a *app) processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Shape a saved history response without connecting",
		ArgsUsage: "[file|-]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := readInput(cmd)
			if err != nil {
				return err
			}
			raw, err := fetch.DecodeHistory(data)
			if err != nil {
				return err
			}

			result := history.ComputeHistory(a.historyConfig(a.temperatureUnit(ctx, nil)), raw, a.catalog.Localize)
			output.History(result, output.SectionAll, output.WithCommand("process"))
			return nil
		},
	}
}

// readInput reads the file named by the first argument, or standard input
// when it is missing or "-".
func readInput(cmd *cli.Command) ([]byte, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		r := cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInternal, err, "cannot read standard input")
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrorTypeNotFound, err, "cannot read %s", path)
	}
	return data, nil
}

func (a *app) statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Long-term statistics for sensors",
		ArgsUsage: "<statistic_id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "period", Value: "hour", Usage: "Statistics period: 5minute, hour, day, week or month"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := lo.Compact(cmd.Args().Slice())
			if len(ids) == 0 {
				return errors.ErrMissingArgument("stats <statistic_id>...")
			}
			start, end, err := a.timeRange(cmd)
			if err != nil {
				return err
			}
			q := fetch.StatisticsQuery{StatisticIDs: ids, Start: start, End: end, Period: cmd.String("period")}
			return a.statistics(ctx, "stats", q, nil)
		},
	}
}

func (a *app) graphCommand() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Statistics for the entities of a statistics graph card",
		ArgsUsage: "<card.yaml>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.ErrMissingArgument("graph <card.yaml>")
			}
			card, err := config.LoadGraphConfig(path)
			if err != nil {
				return err
			}

			q := fetch.StatisticsQuery{
				StatisticIDs: card.EntityIDs(),
				Start:        config.StatisticsStart,
				End:          time.Now(),
				Period:       card.Period,
			}
			logging.Debug().Str("title", card.Title).Int("card_size", card.CardSize()).Msg("graph card loaded")
			return a.statistics(ctx, "graph", q, card.Names(), output.WithSummary(card.Title))
		},
	}
}

// statistics fetches long-term statistics over the WebSocket API and prints them.
func (a *app) statistics(ctx context.Context, name string, q fetch.StatisticsQuery, names map[string]string, opts ...output.Option) error {
	if err := q.Validate(); err != nil {
		return err
	}
	c, err := a.connect(ctx)
	if err != nil {
		return err
	}

	fetcher := fetch.NewFetcher(fetch.NewWSSource(c), a.historyConfig(defaultTemperatureUnit), a.catalog.Localize)
	stats, err := fetcher.Statistics(ctx, q)
	if err != nil {
		return err
	}
	output.Statistics(stats, names, append([]output.Option{output.WithCommand(name)}, opts...)...)
	return nil
}

func (a *app) pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Test the connection",
		Action: func(ctx context.Context, _ *cli.Command) error {
			c, err := a.connect(ctx)
			if err != nil {
				return err
			}
			if err := c.Ping(ctx); err != nil {
				return err
			}
			output.Message("pong")
			return nil
		},
	}
}

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show the effective configuration",
		Action: func(context.Context, *cli.Command) error {
			settings := a.cfg.Settings()
			output.Data(settings,
				output.WithCommand("config"),
				output.WithCount(len(settings)),
				output.WithSummary("Effective configuration"))
			return nil
		},
	}
}

// translation is one catalog entry.
type translation struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (a *app) translationsCommand() *cli.Command {
	return &cli.Command{
		Name:      "translations",
		Usage:     "List state labels of the active catalog",
		ArgsUsage: "[prefix]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			prefix := cmd.Args().First()
			var entries []translation
			for _, key := range a.catalog.Keys() {
				if strings.HasPrefix(key, prefix) {
					entries = append(entries, translation{Key: key, Value: a.catalog.Localize(key)})
				}
			}

			output.List(entries,
				output.ListTitle[translation]("Translations ("+a.catalog.Language()+")"),
				output.ListCommand[translation]("translations"),
				output.ListFormatter(func(t translation, _ int) string {
					return t.Key + " = " + t.Value
				}))
			return nil
		},
	}
}
