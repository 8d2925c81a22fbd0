package main

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	hacli "github.com/home-assistant-blueprints/ha-history-go/internal/cli"
	"github.com/home-assistant-blueprints/ha-history-go/internal/client"
	"github.com/home-assistant-blueprints/ha-history-go/internal/config"
	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/localize"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
	"github.com/home-assistant-blueprints/ha-history-go/internal/output"
	"github.com/home-assistant-blueprints/ha-history-go/internal/shutdown"
)

// defaultTemperatureUnit is used when neither the config nor Home Assistant
// supply one.
const defaultTemperatureUnit = "°C"

// finishedReason is the shutdown reason of a run that was not interrupted.
const finishedReason = "command finished"

// app carries the state shared by all commands of one run.
type app struct {
	cfg         *config.Config
	catalog     *localize.Catalog
	coord       *shutdown.Coordinator
	stopSignals func()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    "ha-history",
		Usage:   "Fetch and shape Home Assistant state history",
		Version: versionString(),
		Flags:   hacli.AllFlags(),
		Before:  a.before,
		Commands: []*cli.Command{
			a.historyCommand("history", "Line charts, timelines and map paths for entities", output.SectionAll),
			a.historyCommand("line", "Numeric history grouped by unit", output.SectionLine),
			a.historyCommand("timeline", "State changes of non-numeric entities", output.SectionTimeline),
			a.historyCommand("map", "Location paths of tracked entities", output.SectionMap),
			a.processCommand(),
			a.statsCommand(),
			a.graphCommand(),
			a.pingCommand(),
			a.configCommand(),
			a.translationsCommand(),
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// before loads the configuration and sets up logging, output and signal
// handling. The returned context is canceled on SIGINT or SIGTERM.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	hacli.ConfigureOutput(cmd)

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	a.cfg = cfg

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: os.Stderr,
	})

	catalog, err := localize.Load(cfg.Locale.Language, cfg.Locale.Translations)
	if err != nil {
		return ctx, err
	}
	a.catalog = catalog

	coord, ctx := shutdown.New(ctx,
		shutdown.WithGracePeriod(cfg.HomeAssistant.Timeout),
		shutdown.WithOnShutdown(func(reason string) {
			if reason != finishedReason {
				logging.Warn().Str("reason", reason).Msg("interrupted, closing connection")
			}
		}),
		shutdown.WithOnCleanupTimeout(func() {
			logging.Warn().Dur("timeout", cfg.HomeAssistant.Timeout).Msg("connection did not close in time")
		}))
	a.coord = coord
	a.stopSignals = coord.HandleSignals()

	logging.Debug().
		Str("url", cfg.HomeAssistant.WebSocketURL).
		Str("language", catalog.Language()).
		Msg("configuration loaded")
	return ctx, nil
}

// close runs the registered cleanups and stops signal handling.
func (a *app) close() {
	if a.coord != nil {
		a.coord.Shutdown(finishedReason)
		a.coord.Wait()
	}
	if a.stopSignals != nil {
		a.stopSignals()
	}
}

// runError reports a command failure caused by a signal as a canceled
// request naming the signal.
func (a *app) runError(err error) error {
	if err == nil || a.coord == nil || !a.coord.IsShuttingDown() {
		return err
	}
	reason := a.coord.ShutdownReason()
	if reason == finishedReason {
		return err
	}
	return errors.ErrRequestCanceled(err).WithMessage("interrupted: " + reason)
}

// applyFlags copies explicitly set global flags over the loaded config.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	stringFlags := map[string]*string{
		"url":              &cfg.HomeAssistant.WebSocketURL,
		"rest-url":         &cfg.HomeAssistant.RESTURL,
		"token":            &cfg.HomeAssistant.Token,
		"log-level":        &cfg.Log.Level,
		"log-format":       &cfg.Log.Format,
		"language":         &cfg.Locale.Language,
		"translations":     &cfg.Locale.Translations,
		"temperature-unit": &cfg.Units.Temperature,
	}
	for name, dst := range stringFlags {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	if cmd.IsSet("timeout") {
		cfg.HomeAssistant.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("hours") {
		cfg.History.Hours = cmd.Int("hours")
	}
}

// connect dials Home Assistant and registers the connection for cleanup.
func (a *app) connect(ctx context.Context) (*client.Client, error) {
	ha := a.cfg.HomeAssistant
	if ha.Token == "" {
		return nil, errors.ErrInvalidConfig("home_assistant.token",
			"no access token; set SUPERVISOR_TOKEN, HA_HISTORY_TOKEN or --token")
	}

	c, err := client.Dial(ctx, ha.WebSocketURL, ha.Token, ha.Timeout)
	if err != nil {
		return nil, err
	}
	a.coord.RegisterCleanup("connection", func(context.Context) error {
		return c.Close()
	})
	logging.Info().Str("url", ha.WebSocketURL).Msg("connected to Home Assistant")
	return c, nil
}

// temperatureUnit returns the configured unit, else the one Home Assistant
// reports, else defaultTemperatureUnit.
func (a *app) temperatureUnit(ctx context.Context, c *client.Client) string {
	if unit := a.cfg.Units.Temperature; unit != "" {
		return unit
	}
	if c != nil {
		haConfig, err := c.Config(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("cannot read unit system, using default temperature unit")
		} else if unit := haConfig.TemperatureUnit(); unit != "" {
			return unit
		}
	}
	return defaultTemperatureUnit
}

// historyConfig builds the processor settings for the active locale.
func (a *app) historyConfig(temperatureUnit string) history.Config {
	return history.Config{
		TemperatureUnit: temperatureUnit,
		Locale:          history.Locale{Language: a.catalog.Language()},
	}
}

// timeRange resolves --from and --to against the configured window.
func (a *app) timeRange(cmd *cli.Command) (start, end time.Time, err error) {
	rng, err := hacli.CalculateTimeRange(cmd.String("from"), cmd.String("to"), a.cfg.History.Window(), time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return rng.StartTime, rng.EndTime, nil
}

// restBaseURL returns the REST API root. Without an explicit rest_url it is
// derived from the WebSocket URL: ws://host/api/websocket becomes
// http://host/api.
func restBaseURL(ha config.HomeAssistantConfig) (string, error) {
	if ha.RESTURL != "" {
		return ha.RESTURL, nil
	}
	u, err := url.Parse(ha.WebSocketURL)
	if err != nil {
		return "", errors.ErrInvalidConfig("home_assistant.websocket_url", "cannot derive REST URL").WithCause(err)
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = strings.TrimSuffix(u.Path, "/websocket")
	return u.String(), nil
}
