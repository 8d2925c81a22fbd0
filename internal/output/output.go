// Package output provides output formatting for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// Format represents the output format mode.
type Format string

const (
	FormatDefault Format = "default"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
)

// Config holds output configuration.
type Config struct {
	Format         Format
	ShowTimestamps bool
	ShowHeaders    bool
	MaxItems       int
	// Out and Err receive command output and error reports.
	Out io.Writer
	Err io.Writer
}

// DefaultConfig returns the default output configuration.
func DefaultConfig() *Config {
	return &Config{
		Format:         FormatDefault,
		ShowTimestamps: true,
		ShowHeaders:    true,
		MaxItems:       0,
		Out:            os.Stdout,
		Err:            os.Stderr,
	}
}

var (
	globalConfig   = DefaultConfig()
	globalConfigMu sync.RWMutex
)

// GetConfig returns the current output configuration.
func GetConfig() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetConfig sets the output configuration.
func SetConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ConfigureFromFlags sets the output configuration from parsed CLI flags.
func ConfigureFromFlags(format string, noHeaders, noTimestamps bool, maxItems int) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig.Format = ParseFormat(format)
	globalConfig.ShowHeaders = !noHeaders
	globalConfig.ShowTimestamps = !noTimestamps
	globalConfig.MaxItems = maxItems
}

// ParseFormat maps a flag value to a Format. Unknown values select the default format.
func ParseFormat(format string) Format {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return FormatJSON
	case FormatCompact:
		return FormatCompact
	default:
		return FormatDefault
	}
}

// snapshot returns a copy of the configuration with nil writers replaced.
func snapshot() Config {
	globalConfigMu.RLock()
	cfg := *globalConfig
	globalConfigMu.RUnlock()
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	return cfg
}

// Result represents a structured result for JSON output.
type Result struct {
	Success bool   `json:"success"`
	Command string `json:"command,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Count   int    `json:"count,omitempty"`
	Summary string `json:"summary,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w io.Writer, result Result) {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		result = Result{Success: false, Command: result.Command, Error: err.Error()}
		jsonBytes, _ = json.Marshal(result)
	}
	fmt.Fprintln(w, string(jsonBytes))
}

// Data outputs data in the configured format.
func Data(data any, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := snapshot()

	switch cfg.Format {
	case FormatJSON:
		writeJSON(cfg.Out, Result{Success: true, Command: o.command, Data: data, Count: o.count, Summary: o.summary})
	case FormatCompact:
		if o.summary != "" {
			fmt.Fprintln(cfg.Out, o.summary)
		}
		printCompact(cfg.Out, data)
	default:
		if o.summary != "" && cfg.ShowHeaders {
			fmt.Fprintln(cfg.Out, o.summary)
		}
		printDefault(cfg.Out, data)
	}
}

// Message outputs a simple message.
func Message(msg string) {
	cfg := snapshot()

	switch cfg.Format {
	case FormatJSON:
		writeJSON(cfg.Out, Result{Success: true, Message: msg})
	default:
		fmt.Fprintln(cfg.Out, msg)
	}
}

// Error outputs an error message. JSON errors go to Out so callers can parse them.
func Error(err error, code string) {
	msg := err.Error()
	cfg := snapshot()

	switch cfg.Format {
	case FormatJSON:
		writeJSON(cfg.Out, Result{Success: false, Error: msg, Code: code})
	case FormatCompact:
		if code != "" {
			fmt.Fprintf(cfg.Err, "[%s] %s\n", code, msg)
		} else {
			fmt.Fprintln(cfg.Err, msg)
		}
	default:
		red := errorColor.SprintFunc()
		if code != "" {
			fmt.Fprintf(cfg.Err, "%s [%s]: %s\n", red("Error"), code, msg)
		} else {
			fmt.Fprintf(cfg.Err, "%s: %s\n", red("Error"), msg)
		}
	}
}

// Hint prints a follow-up suggestion for an error. JSON output has no hint
// so the error envelope stays the only line.
func Hint(msg string) {
	if msg == "" {
		return
	}
	cfg := snapshot()

	switch cfg.Format {
	case FormatJSON:
	case FormatCompact:
		fmt.Fprintln(cfg.Err, msg)
	default:
		fmt.Fprintf(cfg.Err, "%s: %s\n", hintColor.Sprint("Hint"), msg)
	}
}

// List outputs a list of items.
func List[T any](items []T, opts ...ListOption[T]) {
	o := &listOptions[T]{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := snapshot()

	count := len(items)
	displayItems := items
	if cfg.MaxItems > 0 && count > cfg.MaxItems {
		displayItems = items[:cfg.MaxItems]
	}

	switch cfg.Format {
	case FormatJSON:
		writeJSON(cfg.Out, Result{Success: true, Command: o.command, Data: items, Count: count})
	case FormatCompact:
		if o.title != "" && cfg.ShowHeaders {
			fmt.Fprintf(cfg.Out, "%s: %d\n", o.title, count)
		}
		for i, item := range displayItems {
			if o.formatter != nil {
				fmt.Fprintln(cfg.Out, o.formatter(item, i))
			} else {
				printCompactItem(cfg.Out, item)
			}
		}
		if cfg.MaxItems > 0 && count > cfg.MaxItems {
			fmt.Fprintf(cfg.Out, "+%d more\n", count-cfg.MaxItems)
		}
	default:
		if o.title != "" && cfg.ShowHeaders {
			fmt.Fprintf(cfg.Out, "%s: %d\n\n", headerColor.Sprint(o.title), count)
		}
		for i, item := range displayItems {
			if o.formatter != nil {
				fmt.Fprintln(cfg.Out, o.formatter(item, i))
			} else {
				printDefault(cfg.Out, item)
			}
		}
		if cfg.MaxItems > 0 && count > cfg.MaxItems {
			fmt.Fprintf(cfg.Out, "\n... and %d more\n", count-cfg.MaxItems)
		}
	}
}

// Options

type options struct {
	command string
	count   int
	summary string
}

// Option configures output options.
type Option func(*options)

// WithCommand sets the command name for the output.
func WithCommand(cmd string) Option {
	return func(o *options) { o.command = cmd }
}

// WithCount sets the count for the output.
func WithCount(n int) Option {
	return func(o *options) { o.count = n }
}

// WithSummary sets the summary for the output.
func WithSummary(s string) Option {
	return func(o *options) { o.summary = s }
}

type listOptions[T any] struct {
	title     string
	command   string
	formatter func(T, int) string
}

// ListOption configures list output options.
type ListOption[T any] func(*listOptions[T])

// ListTitle sets the title for list output.
func ListTitle[T any](title string) ListOption[T] {
	return func(o *listOptions[T]) { o.title = title }
}

// ListCommand sets the command name for list output.
func ListCommand[T any](cmd string) ListOption[T] {
	return func(o *listOptions[T]) { o.command = cmd }
}

// ListFormatter sets the item formatter for list output.
func ListFormatter[T any](f func(T, int) string) ListOption[T] {
	return func(o *listOptions[T]) { o.formatter = f }
}

// Helper functions

func printCompact(w io.Writer, data any) {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			printCompactItem(w, item)
		}
	default:
		printCompactItem(w, data)
	}
}

func printCompactItem(w io.Writer, item any) {
	switch v := item.(type) {
	case map[string]any:
		printCompactMap(w, v)
	case string:
		fmt.Fprintln(w, v)
	default:
		if m := structToMap(item); m != nil {
			printCompactMap(w, m)
			return
		}
		fmt.Fprintf(w, "%v\n", item)
	}
}

// structToMap converts a struct to map[string]any via JSON marshaling.
// Returns nil if the conversion fails or the result is not a map.
func structToMap(item any) map[string]any {
	data, err := json.Marshal(item)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// printCompactMap prints entity_id=state for observations and up to five
// sorted key=value pairs for anything else.
func printCompactMap(w io.Writer, v map[string]any) {
	if entityID, ok := v["entity_id"].(string); ok {
		if state, ok := v["state"].(string); ok {
			fmt.Fprintf(w, "%s=%s\n", entityID, state)
			return
		}
	}
	var pairs []string
	for _, k := range slices.Sorted(maps.Keys(v)) {
		if v[k] != nil {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, v[k]))
		}
		if len(pairs) >= 5 {
			break
		}
	}
	fmt.Fprintln(w, strings.Join(pairs, " "))
}

func printDefault(w io.Writer, data any) {
	jsonBytes, _ := json.MarshalIndent(data, "", "  ")
	fmt.Fprintln(w, string(jsonBytes))
}

// FormatTime formats a time for display.
func FormatTime(t time.Time) string {
	globalConfigMu.RLock()
	format := globalConfig.Format
	globalConfigMu.RUnlock()

	if format == FormatCompact {
		return t.UTC().Format(time.RFC3339)
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
