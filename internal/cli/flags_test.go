package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ucli "github.com/urfave/cli/v3"
)

type parsedFlags struct {
	Format       string
	NoHeaders    bool
	NoTimestamps bool
	MaxItems     int
	From         string
	To           string
	Hours        int
	URL          string
	Timeout      time.Duration
	Config       string
}

func runFlags(t *testing.T, args ...string) parsedFlags {
	t.Helper()

	var got parsedFlags
	app := &ucli.Command{
		Name:  "ha-history",
		Flags: AllFlags(),
		Commands: []*ucli.Command{{
			Name: "test",
			Action: func(_ context.Context, cmd *ucli.Command) error {
				got = parsedFlags{
					Format:       OutputFormat(cmd),
					NoHeaders:    cmd.Bool("no-headers"),
					NoTimestamps: cmd.Bool("no-timestamps"),
					MaxItems:     cmd.Int("max-items"),
					From:         cmd.String("from"),
					To:           cmd.String("to"),
					Hours:        cmd.Int("hours"),
					URL:          cmd.String("url"),
					Timeout:      cmd.Duration("timeout"),
					Config:       cmd.String("config"),
				}
				return nil
			},
		}},
	}

	require.NoError(t, app.Run(context.Background(), append([]string{"ha-history"}, args...)))
	return got
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default", args: []string{"test"}, want: "default"},
		{name: "output json", args: []string{"--output", "json", "test"}, want: "json"},
		{name: "format alias", args: []string{"--format", "compact", "test"}, want: "compact"},
		{name: "json shorthand", args: []string{"--json", "test"}, want: "json"},
		{name: "compact shorthand", args: []string{"--compact", "test"}, want: "compact"},
		{name: "json wins over compact", args: []string{"--compact", "--json", "test"}, want: "json"},
		{name: "shorthand wins over output", args: []string{"--output", "default", "--compact", "test"}, want: "compact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, runFlags(t, tt.args...).Format)
		})
	}
}

func TestFlags_OutputModifiers(t *testing.T) {
	t.Parallel()

	got := runFlags(t, "--no-headers", "--no-timestamps", "--max-items", "5", "test")
	assert.True(t, got.NoHeaders)
	assert.True(t, got.NoTimestamps)
	assert.Equal(t, 5, got.MaxItems)

	got = runFlags(t, "--max-items=10", "test")
	assert.False(t, got.NoHeaders)
	assert.Equal(t, 10, got.MaxItems)
}

func TestFlags_TimeAndConnection(t *testing.T) {
	t.Parallel()

	got := runFlags(t,
		"--from", "2024-06-01 08:00",
		"--to=2024-06-02",
		"--hours", "6",
		"--url", "ws://ha.local:8123/api/websocket",
		"--timeout", "5s",
		"-c", "ha-history.yaml",
		"test")

	assert.Equal(t, "2024-06-01 08:00", got.From)
	assert.Equal(t, "2024-06-02", got.To)
	assert.Equal(t, 6, got.Hours)
	assert.Equal(t, "ws://ha.local:8123/api/websocket", got.URL)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.Equal(t, "ha-history.yaml", got.Config)
}

func TestFlags_Defaults(t *testing.T) {
	t.Parallel()

	got := runFlags(t, "test")
	assert.Empty(t, got.From)
	assert.Empty(t, got.To)
	assert.Zero(t, got.Hours)
	assert.Zero(t, got.MaxItems)
	assert.Zero(t, got.Timeout)
}
