package localize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()

	assert.Equal(t, "en", c.Language())
	assert.Equal(t, "Unavailable", c.Localize("state.default.unavailable"))
	assert.Equal(t, "Open", c.Localize("component.binary_sensor.state.door.on"))
	assert.Equal(t, "Clear", c.Localize("component.binary_sensor.state._.off"))
	assert.Equal(t, "Away", c.Localize("component.person.state._.not_home"))
	assert.Empty(t, c.Localize("component.missing.state._.on"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "nested keys are flattened",
			content: `
state:
  default:
    unknown: Onbekend
component:
  light:
    state:
      _:
        "on": Aan
`,
			want: map[string]string{
				"state.default.unknown":      "Onbekend",
				"component.light.state._.on": "Aan",
			},
		},
		{
			name:    "non-string leaves",
			content: "a:\n  b: 3\n  c: true\n  d: null\n",
			want:    map[string]string{"a.b": "3", "a.c": "true"},
		},
		{
			name:    "empty document",
			content: "",
			want:    map[string]string{},
		},
		{
			name:    "invalid yaml",
			content: "a: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("empty path returns built-in catalog", func(t *testing.T) {
		t.Parallel()
		c, err := Load("", "")
		require.NoError(t, err)
		assert.Equal(t, "en", c.Language())
		assert.Equal(t, "Unknown", c.Localize("state.default.unknown"))
	})

	t.Run("file overrides built-in keys", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(dir, "nl.yaml")
		require.NoError(t, os.WriteFile(path, []byte("state:\n  default:\n    unknown: Onbekend\n"), 0o600))

		c, err := Load("nl", path)
		require.NoError(t, err)
		assert.Equal(t, "nl", c.Language())
		assert.Equal(t, "Onbekend", c.Localize("state.default.unknown"))
		assert.Equal(t, "Unavailable", c.Localize("state.default.unavailable"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load("en", filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("a: [unclosed"), 0o600))

		_, err := Load("en", path)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidYAML, errors.GetCode(err))
	})
}

func TestCatalog_MergeAndKeys(t *testing.T) {
	t.Parallel()

	c := New("en", map[string]string{"b": "B", "a": "A"})
	c.Merge(map[string]string{"b": "B2", "c": "C"})

	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
	assert.Equal(t, "B2", c.Localize("b"))

	var nilCatalog *Catalog
	assert.Empty(t, nilCatalog.Localize("a"))
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang  string
		value float64
		want  string
	}{
		{"en", 21.5, "21.5"},
		{"en", 1234.5, "1,234.5"},
		{"de", 21.5, "21,5"},
		{"en", 3, "3"},
		{"", 0.125, "0.125"},
		{"not a language!", 7.25, "7.25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatNumber(tt.lang, tt.value))
		})
	}
}
