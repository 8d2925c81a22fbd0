package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

var t0 = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func sampleResult() history.Result {
	return history.Result{
		Line: []history.LineChartUnit{{
			Unit:       "°C",
			Identifier: "sensor.temp",
			Data: []history.LineChartEntity{{
				Domain:   "sensor",
				Name:     "Temperature",
				EntityID: "sensor.temp",
				States: []history.LineChartState{
					{State: "19.5", LastChanged: t0},
					{State: "21", LastChanged: t0.Add(time.Minute)},
					{State: "22.5", LastChanged: t0.Add(2 * time.Minute)},
				},
			}},
		}},
		Timeline: []history.TimelineEntity{{
			Name:     "Hall",
			EntityID: "light.hall",
			Data: []history.TimelineState{
				{StateLocalize: "On", State: "on", LastChanged: t0},
				{StateLocalize: "Off", State: "off", LastChanged: t0.Add(time.Hour)},
			},
		}},
		Map: history.MapData{
			Entities: []history.MapEntity{{EntityID: "person.alice", Color: "#44739e"}},
			Paths: []history.MapPath{{
				Points:         []history.LatLng{{Latitude: 52.1, Longitude: 4.3}},
				Color:          "#44739e",
				GradualOpacity: 0.8,
			}},
		},
	}
}

func TestSections(t *testing.T) {
	assert.Equal(t, SectionLine, Sections("line"))
	assert.Equal(t, SectionTimeline, Sections("timeline"))
	assert.Equal(t, SectionMap, Sections("map"))
	assert.Equal(t, SectionAll, Sections(""))
}

func TestHistory_JSON(t *testing.T) {
	out, _ := useBuffers(t, FormatJSON)
	History(sampleResult(), SectionAll, WithCommand("history"))

	var envelope struct {
		Success bool           `json:"success"`
		Command string         `json:"command"`
		Data    history.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "history", envelope.Command)
	assert.Equal(t, sampleResult(), envelope.Data)
}

func TestHistory_JSONSingleSection(t *testing.T) {
	out, _ := useBuffers(t, FormatJSON)
	History(sampleResult(), SectionTimeline)

	var envelope struct {
		Data []history.TimelineEntity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "light.hall", envelope.Data[0].EntityID)
}

func TestHistory_Compact(t *testing.T) {
	out, _ := useBuffers(t, FormatCompact)
	GetConfig().MaxItems = 2
	History(sampleResult(), SectionAll)

	want := "line sensor.temp unit=°C points=3\n" +
		"2024-06-15T10:00:00Z sensor.temp=19.5\n" +
		"2024-06-15T10:01:00Z sensor.temp=21\n" +
		"+1 more\n" +
		"timeline light.hall changes=2\n" +
		"2024-06-15T10:00:00Z light.hall=on\n" +
		"2024-06-15T11:00:00Z light.hall=off\n" +
		"map person.alice color=#44739e points=1\n"
	assert.Equal(t, want, out.String())
}

func TestHistory_Default(t *testing.T) {
	out, _ := useBuffers(t, FormatDefault)
	History(sampleResult(), SectionAll)

	text := out.String()
	assert.Contains(t, text, "Line charts: 1")
	assert.Contains(t, text, "°C sensor.temp")
	assert.Contains(t, text, "  Temperature (sensor.temp)")
	assert.Contains(t, text, "  22.5")
	assert.Contains(t, text, "Timelines: 1")
	assert.Contains(t, text, "  Hall (light.hall)")
	assert.Contains(t, text, "  On")
	assert.Contains(t, text, "Map: 1")
	assert.Contains(t, text, "person.alice #44739e")
	assert.Contains(t, text, "52.100000, 4.300000")
}

func TestHistory_DefaultSectionOnly(t *testing.T) {
	out, _ := useBuffers(t, FormatDefault)
	GetConfig().ShowHeaders = false
	History(sampleResult(), SectionMap)

	text := out.String()
	assert.NotContains(t, text, "Map:")
	assert.NotContains(t, text, "sensor.temp")
	assert.Contains(t, text, "person.alice")
}

func TestHistory_Empty(t *testing.T) {
	out, _ := useBuffers(t, FormatDefault)
	History(history.Result{}, SectionAll)
	assert.Equal(t, "No state history found.\n", out.String())
}

func TestStatistics(t *testing.T) {
	stats := map[string][]types.StatEntry{
		"sensor.b": {{Start: "2024-06-15T10:00:00Z", Mean: lo.ToPtr(1.5), Max: lo.ToPtr(2.0)}},
		"sensor.a": {{Start: "2024-06-15T11:00:00Z", Sum: lo.ToPtr(10.25)}},
	}

	t.Run("compact sorted by id", func(t *testing.T) {
		out, _ := useBuffers(t, FormatCompact)
		Statistics(stats, nil)

		want := "stats sensor.a entries=1\n" +
			"2024-06-15T11:00:00Z sensor.a sum=10.25\n" +
			"stats sensor.b entries=1\n" +
			"2024-06-15T10:00:00Z sensor.b mean=1.5 max=2\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("default uses names", func(t *testing.T) {
		out, _ := useBuffers(t, FormatDefault)
		Statistics(stats, map[string]string{"sensor.a": "Energy"})
		assert.Contains(t, out.String(), "Energy (sensor.a): 1")
		assert.Contains(t, out.String(), "sensor.b: 1")
	})

	t.Run("json", func(t *testing.T) {
		out, _ := useBuffers(t, FormatJSON)
		Statistics(stats, nil, WithCommand("stats"))
		result := decodeResult(t, out)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, "stats", result.Command)
	})

	t.Run("summary", func(t *testing.T) {
		out, _ := useBuffers(t, FormatDefault)
		Statistics(stats, nil, WithSummary("Energy usage"))
		assert.True(t, strings.HasPrefix(out.String(), "Energy usage\n"), out.String())

		out, _ = useBuffers(t, FormatJSON)
		Statistics(stats, nil, WithSummary("Energy usage"))
		assert.Equal(t, "Energy usage", decodeResult(t, out).Summary)
	})

	t.Run("empty", func(t *testing.T) {
		out, _ := useBuffers(t, FormatDefault)
		Statistics(nil, nil)
		assert.Equal(t, "No statistics found.\n", out.String())
	})
}

func TestSwatchColor(t *testing.T) {
	assert.NotNil(t, swatchColor("#44739e"))
	assert.NotNil(t, swatchColor("not-a-colour"))
}
