package usage

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hydromon/pkg/models"
)

const exportBanner = `London Hydro Green Button Export
Account,E123456
Generated,2024/01/02 06:00
Period,Usage,Unit,Cost
`

func TestParseExport(t *testing.T) {
	export := exportBanner +
		"2024/01/01 00:00 to 2024/01/01 01:00,1.25,kWh,0.12\n" +
		"2024/01/01 01:00 to 2024/01/01 02:00,0.75,kWh,0.07\n" +
		"2024/01/01 02:00 to 2024/01/01 03:00, 2.5 ,kWh,0.24\n"

	series, err := ParseExport(strings.NewReader(export), time.UTC)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Start)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), series[0].End)
	assert.InDelta(t, 1.25, series[0].KWh, 1e-9)
	assert.InDelta(t, 2.5, series[2].KWh, 1e-9)

	for i, iv := range series {
		assert.True(t, iv.Start.Before(iv.End), "interval %d: start must precede end", i)
	}
}

func TestParseExportUsesLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	export := exportBanner + "2024/01/01 00:00 to 2024/01/01 01:00,1.0\n"

	series, err := ParseExport(strings.NewReader(export), loc)
	require.NoError(t, err)
	require.Len(t, series, 1)

	assert.Equal(t, int64(1704085200), series[0].Start.Unix())
	assert.Equal(t, loc, series[0].Start.Location())
}

func TestParseExportHeaderOnly(t *testing.T) {
	series, err := ParseExport(strings.NewReader(exportBanner), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestParseExportKeepsDuplicates(t *testing.T) {
	export := exportBanner +
		"2024/01/01 00:00 to 2024/01/01 01:00,1.0\n" +
		"2024/01/01 00:00 to 2024/01/01 01:00,1.0\n"

	series, err := ParseExport(strings.NewReader(export), time.UTC)
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestParseExportSpringForward(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// 2024-03-10 02:00 does not exist in Toronto; clocks jump from 02:00 EST to 03:00 EDT.
	export := exportBanner +
		"2024/03/10 00:00 to 2024/03/10 01:00,1.0\n" +
		"2024/03/10 01:00 to 2024/03/10 02:00,1.0\n" +
		"2024/03/10 02:00 to 2024/03/10 03:00,1.0\n" +
		"2024/03/10 03:00 to 2024/03/10 04:00,1.0\n"

	series, err := ParseExport(strings.NewReader(export), toronto)
	require.NoError(t, err)
	require.Len(t, series, 4)

	transition := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	assert.True(t, series[1].Start.Equal(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)))
	assert.True(t, series[1].End.Equal(transition), "02:00 resolves forward to 03:00 EDT")
	assert.True(t, series[2].Start.Equal(transition))
	assert.Equal(t, 3, series[2].Start.In(toronto).Hour())
	assert.True(t, series[3].Start.Equal(transition))
	assert.Equal(t, time.Hour, series[3].End.Sub(series[3].Start))

	for i, iv := range series {
		assert.False(t, iv.End.Before(iv.Start), "interval %d runs backwards", i)
	}

	// The whole day still trims into its local midnight to midnight window.
	day := models.Window{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, toronto),
		End:   time.Date(2024, 3, 11, 0, 0, 0, 0, toronto),
	}
	assert.Len(t, Trim(series, day), 4)
}

func TestParseExportFallBack(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// 2024-11-03 01:00 happens twice; the export names it once.
	export := exportBanner +
		"2024/11/03 00:00 to 2024/11/03 01:00,1.0\n" +
		"2024/11/03 01:00 to 2024/11/03 02:00,2.0\n" +
		"2024/11/03 02:00 to 2024/11/03 03:00,1.0\n"

	series, err := ParseExport(strings.NewReader(export), toronto)
	require.NoError(t, err)
	require.Len(t, series, 3)
	for i, iv := range series {
		assert.True(t, iv.End.After(iv.Start), "interval %d", i)
		assert.Equal(t, iv.Start.Hour()+1, iv.End.Hour(), "wall clock of interval %d", i)
	}
}

func TestParseExportErrors(t *testing.T) {
	tests := []struct {
		name    string
		export  string
		wantErr error
		wantRow int
	}{
		{
			name:    "empty export",
			export:  "",
			wantErr: ErrTooFewRows,
			wantRow: -1,
		},
		{
			name:    "three rows",
			export:  "junk\njunk\njunk\n",
			wantErr: ErrTooFewRows,
			wantRow: -1,
		},
		{
			name:    "narrow header",
			export:  "junk\njunk\njunk\nPeriod\n",
			wantErr: ErrMalformedRow,
			wantRow: 3,
		},
		{
			name:    "narrow data row",
			export:  exportBanner + "2024/01/01 00:00 to 2024/01/01 01:00\n",
			wantErr: ErrMalformedRow,
			wantRow: 4,
		},
		{
			name:    "missing separator",
			export:  exportBanner + "2024/01/01 00:00 - 2024/01/01 01:00,1.0\n",
			wantErr: ErrBadPeriod,
			wantRow: 4,
		},
		{
			name:    "too many separators",
			export:  exportBanner + "2024/01/01 00:00 to 2024/01/01 01:00 to 2024/01/01 02:00,1.0\n",
			wantErr: ErrBadPeriod,
			wantRow: 4,
		},
		{
			name:    "end before start",
			export:  exportBanner + "2024/01/01 01:00 to 2024/01/01 00:00,1.0\n",
			wantErr: ErrBadPeriod,
			wantRow: 4,
		},
		{
			name:    "zero length period",
			export:  exportBanner + "2024/01/01 00:00 to 2024/01/01 00:00,1.0\n",
			wantErr: ErrBadPeriod,
			wantRow: 4,
		},
		{
			name:    "iso timestamp",
			export:  exportBanner + "2024-01-01T00:00 to 2024/01/01 01:00,1.0\n",
			wantErr: ErrBadTimestamp,
			wantRow: 4,
		},
		{
			name:    "bad end timestamp",
			export:  exportBanner + "2024/01/01 00:00 to tomorrow,1.0\n",
			wantErr: ErrBadTimestamp,
			wantRow: 4,
		},
		{
			name: "non numeric usage in later row",
			export: exportBanner +
				"2024/01/01 00:00 to 2024/01/01 01:00,1.0\n" +
				"2024/01/01 01:00 to 2024/01/01 02:00,n/a\n",
			wantErr: ErrBadUsage,
			wantRow: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ParseExport(strings.NewReader(tt.export), time.UTC)
			require.Error(t, err)
			assert.Nil(t, series, "no partial output on failure")
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantRow, perr.Row)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Row: 7, Value: strings.Repeat("x", 100), Err: ErrBadUsage}
	msg := err.Error()
	assert.Contains(t, msg, "row 7")
	assert.Contains(t, msg, "...")
	assert.Contains(t, msg, ErrBadUsage.Error())

	err = &ParseError{Row: -1, Err: ErrTooFewRows}
	assert.Equal(t, "parse error: too few rows", err.Error())
}
