package usage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hydromon/pkg/models"
)

func TestFormatReport(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	st := models.Stats{
		Count:   24,
		Total:   23.456,
		Average: 0.977333,
		Peak: models.Peak{
			Start: time.Date(2024, 1, 1, 18, 0, 0, 0, loc),
			End:   time.Date(2024, 1, 1, 19, 0, 0, 0, loc),
			Value: 2.1249,
		},
	}

	want := "Average Usage: 0.98kW\n" +
		"Maximum Usage: 2.12kW (2024-01-01T18:00:00 - 2024-01-01T19:00:00)\n" +
		"Total Usage: 23.46 kWh"
	assert.Equal(t, want, FormatReport(st))
}

// The whole reduction pipeline over a small export.
func TestReducePipeline(t *testing.T) {
	export := "junk\njunk\njunk\n" +
		"Period,Usage,kWh\n" +
		"2024/01/01 00:00 to 2024/01/01 01:00,2.0,kWh\n" +
		"2024/01/01 01:00 to 2024/01/01 02:00,4.0,kWh\n"

	series, err := ParseExport(strings.NewReader(export), time.UTC)
	require.NoError(t, err)

	st, err := Aggregate(Trim(series, series.Span()))
	require.NoError(t, err)

	body := FormatReport(st)
	assert.Contains(t, body, "Average Usage: 3.00kW")
	assert.Contains(t, body, "Maximum Usage: 4.00kW")
	assert.Contains(t, body, "Total Usage: 6.00 kWh")
	assert.Len(t, strings.Split(body, "\n"), 3)
}
