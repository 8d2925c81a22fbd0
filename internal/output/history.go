package output

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	unitColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	hintColor   = color.New(color.Faint)
)

// Section selects which collections of a history result are printed.
type Section int

const (
	SectionLine Section = 1 << iota
	SectionTimeline
	SectionMap

	SectionAll = SectionLine | SectionTimeline | SectionMap
)

// Sections converts a collection name (line, timeline, map or "") to a Section.
func Sections(name string) Section {
	switch name {
	case "line":
		return SectionLine
	case "timeline":
		return SectionTimeline
	case "map":
		return SectionMap
	default:
		return SectionAll
	}
}

// History prints a shaped history result. In JSON mode the data is the
// selected collection, or the whole result for SectionAll.
func History(result history.Result, sections Section, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := snapshot()

	if cfg.Format == FormatJSON {
		var data any = result
		switch sections {
		case SectionLine:
			data = result.Line
		case SectionTimeline:
			data = result.Timeline
		case SectionMap:
			data = result.Map
		}
		writeJSON(cfg.Out, Result{Success: true, Command: o.command, Data: data, Summary: o.summary})
		return
	}

	if result.IsEmpty() {
		fmt.Fprintln(cfg.Out, "No state history found.")
		return
	}

	if sections&SectionLine != 0 {
		printLine(cfg, result.Line)
	}
	if sections&SectionTimeline != 0 {
		printTimeline(cfg, result.Timeline)
	}
	if sections&SectionMap != 0 {
		printMap(cfg, result.Map)
	}
}

// limit returns the first MaxItems elements and the number left out.
func limit[T any](cfg Config, items []T) ([]T, int) {
	if cfg.MaxItems > 0 && len(items) > cfg.MaxItems {
		return items[:cfg.MaxItems], len(items) - cfg.MaxItems
	}
	return items, 0
}

func printMore(cfg Config, indent string, n int) {
	if n == 0 {
		return
	}
	if cfg.Format == FormatCompact {
		fmt.Fprintf(cfg.Out, "+%d more\n", n)
		return
	}
	fmt.Fprintf(cfg.Out, "%s... and %d more\n", indent, n)
}

func printLine(cfg Config, units []history.LineChartUnit) {
	if cfg.Format == FormatCompact {
		for _, u := range units {
			for _, e := range u.Data {
				fmt.Fprintf(cfg.Out, "line %s unit=%s points=%d\n", e.EntityID, u.Unit, len(e.States))
				shown, more := limit(cfg, e.States)
				for _, s := range shown {
					fmt.Fprintf(cfg.Out, "%s %s=%s\n", FormatTime(s.LastChanged), e.EntityID, s.State)
				}
				printMore(cfg, "", more)
			}
		}
		return
	}

	if cfg.ShowHeaders {
		fmt.Fprintf(cfg.Out, "%s: %d\n\n", headerColor.Sprint("Line charts"), len(units))
	}
	for _, u := range units {
		fmt.Fprintf(cfg.Out, "%s %s\n", unitColor.Sprint(u.Unit), strings.Join(entityIDs(u.Data), ", "))
		for _, e := range u.Data {
			fmt.Fprintf(cfg.Out, "  %s (%s)\n", e.Name, e.EntityID)
			shown, more := limit(cfg, e.States)
			for _, s := range shown {
				fmt.Fprintf(cfg.Out, "    %s  %s\n", stamp(cfg, s.LastChanged), s.State)
			}
			printMore(cfg, "    ", more)
		}
		fmt.Fprintln(cfg.Out)
	}
}

func printTimeline(cfg Config, entities []history.TimelineEntity) {
	if cfg.Format == FormatCompact {
		for _, e := range entities {
			fmt.Fprintf(cfg.Out, "timeline %s changes=%d\n", e.EntityID, len(e.Data))
			shown, more := limit(cfg, e.Data)
			for _, s := range shown {
				fmt.Fprintf(cfg.Out, "%s %s=%s\n", FormatTime(s.LastChanged), e.EntityID, s.State)
			}
			printMore(cfg, "", more)
		}
		return
	}

	if cfg.ShowHeaders {
		fmt.Fprintf(cfg.Out, "%s: %d\n\n", headerColor.Sprint("Timelines"), len(entities))
	}
	for _, e := range entities {
		fmt.Fprintf(cfg.Out, "  %s (%s)\n", e.Name, e.EntityID)
		shown, more := limit(cfg, e.Data)
		for _, s := range shown {
			fmt.Fprintf(cfg.Out, "    %s  %s\n", stamp(cfg, s.LastChanged), s.StateLocalize)
		}
		printMore(cfg, "    ", more)
	}
	if len(entities) > 0 {
		fmt.Fprintln(cfg.Out)
	}
}

func printMap(cfg Config, m history.MapData) {
	if cfg.Format == FormatCompact {
		for i, e := range m.Entities {
			points := 0
			if i < len(m.Paths) {
				points = len(m.Paths[i].Points)
			}
			fmt.Fprintf(cfg.Out, "map %s color=%s points=%d\n", e.EntityID, e.Color, points)
		}
		return
	}

	if cfg.ShowHeaders {
		fmt.Fprintf(cfg.Out, "%s: %d\n\n", headerColor.Sprint("Map"), len(m.Entities))
	}
	for i, e := range m.Entities {
		swatch := swatchColor(e.Color).Sprint("●")
		fmt.Fprintf(cfg.Out, "  %s %s %s\n", swatch, e.EntityID, e.Color)
		if i >= len(m.Paths) {
			continue
		}
		shown, more := limit(cfg, m.Paths[i].Points)
		for _, p := range shown {
			fmt.Fprintf(cfg.Out, "    %s, %s\n", formatCoord(p.Latitude), formatCoord(p.Longitude))
		}
		printMore(cfg, "    ", more)
	}
}

// Statistics prints long-term statistics per statistic id, sorted by id.
func Statistics(stats map[string][]types.StatEntry, names map[string]string, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := snapshot()

	if cfg.Format == FormatJSON {
		writeJSON(cfg.Out, Result{Success: true, Command: o.command, Data: stats, Count: len(stats), Summary: o.summary})
		return
	}
	if o.summary != "" && cfg.ShowHeaders {
		fmt.Fprintln(cfg.Out, headerColor.Sprint(o.summary))
	}
	if len(stats) == 0 {
		fmt.Fprintln(cfg.Out, "No statistics found.")
		return
	}

	for _, id := range slices.Sorted(maps.Keys(stats)) {
		entries := stats[id]
		label := id
		if name := names[id]; name != "" {
			label = fmt.Sprintf("%s (%s)", name, id)
		}

		if cfg.Format == FormatCompact {
			fmt.Fprintf(cfg.Out, "stats %s entries=%d\n", id, len(entries))
		} else if cfg.ShowHeaders {
			fmt.Fprintf(cfg.Out, "%s: %d\n", headerColor.Sprint(label), len(entries))
		}

		shown, more := limit(cfg, entries)
		for i := range shown {
			e := &shown[i]
			fields := lo.Compact([]string{
				statField("mean", e.Mean),
				statField("min", e.Min),
				statField("max", e.Max),
				statField("sum", e.Sum),
				statField("state", e.State),
			})
			if cfg.Format == FormatCompact {
				fmt.Fprintf(cfg.Out, "%s %s %s\n", FormatTime(e.GetStartTime()), id, strings.Join(fields, " "))
			} else {
				fmt.Fprintf(cfg.Out, "  %s  %s\n", stamp(cfg, e.GetStartTime()), strings.Join(fields, "  "))
			}
		}
		printMore(cfg, "  ", more)
	}
}

func entityIDs(data []history.LineChartEntity) []string {
	return lo.Map(data, func(e history.LineChartEntity, _ int) string { return e.EntityID })
}

func stamp(cfg Config, t time.Time) string {
	if !cfg.ShowTimestamps {
		return ""
	}
	return FormatTime(t)
}

func statField(name string, v *float64) string {
	if v == nil {
		return ""
	}
	return name + "=" + strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// swatchColor returns a true-colour printer for a #rrggbb palette entry.
func swatchColor(hex string) *color.Color {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(hex) != 7 {
		return color.New(color.Reset)
	}
	return color.RGB(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff))
}
