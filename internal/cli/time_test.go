package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

func TestParseFlexibleDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "RFC3339 with timezone",
			input:    "2024-06-15T10:30:45Z",
			expected: time.Date(2024, 6, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "RFC3339 with offset",
			input:    "2024-06-15T10:30:45+05:00",
			expected: time.Date(2024, 6, 15, 5, 30, 45, 0, time.UTC),
		},
		{
			name:     "ISO format without timezone",
			input:    "2024-06-15T10:30:45",
			expected: time.Date(2024, 6, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "Date and time with space",
			input:    "2024-06-15 10:30:45",
			expected: time.Date(2024, 6, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "Date and time without seconds",
			input:    "2024-06-15 10:30",
			expected: time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "Date only",
			input:    "2024-06-15",
			expected: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{name: "Invalid format", input: "not-a-date", expectError: true},
		{name: "Empty string", input: "", expectError: true},
		{name: "Day first", input: "15-06-2024", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFlexibleDate(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %v, want %v", got, tt.expected)
		})
	}
}

func TestCalculateTimeRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		from      string
		to        string
		window    time.Duration
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "defaults to window before now",
			window:    24 * time.Hour,
			wantStart: now.Add(-24 * time.Hour),
			wantEnd:   now,
		},
		{
			name:      "from only",
			from:      "2024-06-15 06:00",
			window:    24 * time.Hour,
			wantStart: time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "to only counts the window back from it",
			to:        "2024-06-14",
			window:    2 * time.Hour,
			wantStart: time.Date(2024, 6, 13, 22, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "both",
			from:      "2024-06-01",
			to:        "2024-06-02",
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{name: "bad from", from: "yesterday", wantErr: true},
		{name: "bad to", to: "tomorrow", wantErr: true},
		{name: "inverted", from: "2024-06-02", to: "2024-06-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CalculateTimeRange(tt.from, tt.to, tt.window, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(got.StartTime), "start %v, want %v", got.StartTime, tt.wantStart)
			assert.True(t, tt.wantEnd.Equal(got.EndTime), "end %v, want %v", got.EndTime, tt.wantEnd)
		})
	}
}
