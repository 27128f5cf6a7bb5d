package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	table := TimetableTable{
		Headers: []string{"Period", "Day 1", "Day 2"},
		Rows: [][]string{
			{"1", "Mathematics g1 (t1)", ""},
			{"2", "", "PE g1 (t2)\nPE g2 (t3)"},
		},
	}

	payload, err := NewCSVExporter().Render(table)
	require.NoError(t, err)

	out := string(payload)
	require.Contains(t, out, "Period,Day 1,Day 2")
	require.Contains(t, out, "Mathematics g1 (t1)")
	// Multi-line cells survive as quoted CSV fields.
	require.Contains(t, out, "\"PE g1 (t2)\nPE g2 (t3)\"")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(TimetableTable{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	table := TimetableTable{
		Headers: []string{"Period", "Day 1"},
		Rows:    [][]string{{"1", "Mathematics g1 (t1)"}},
	}

	payload, err := NewPDFExporter().Render(table, "Weekly Timetable")
	require.NoError(t, err)
	require.True(t, len(payload) > 0)
	require.Equal(t, "%PDF", string(payload[:4]))
}
