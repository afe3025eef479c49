package usage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/hydromon/pkg/models"
)

const (
	// headerRow is the 0-indexed row holding the real column names.
	// Everything above it is provider banner text.
	headerRow = 3

	periodSeparator = " to "
	timestampLayout = "2006/01/02 15:04"
)

// columnLayout maps the logical fields we keep to their export positions
type columnLayout struct {
	period int
	usage  int
}

func (l columnLayout) width() int {
	return max(l.period, l.usage) + 1
}

// exportLayout is the green button CSV layout: the period range first,
// the kWh reading right after it, then units and cost columns we ignore.
var exportLayout = columnLayout{period: 0, usage: 1}

// ParseExport converts a raw provider export into a usage series.
// Timestamps are interpreted in loc. Either the whole export parses or
// nothing is returned.
func ParseExport(r io.Reader, loc *time.Location) (models.Series, error) {
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{Row: csvErr.StartLine - 1, Err: fmt.Errorf("%w: %v", ErrMalformedRow, csvErr.Err)}
		}
		return nil, fmt.Errorf("reading export: %w", err)
	}

	if len(rows) <= headerRow {
		return nil, &ParseError{Row: -1, Err: fmt.Errorf("%w: got %d, need at least %d", ErrTooFewRows, len(rows), headerRow+1)}
	}

	layout := exportLayout
	if header := rows[headerRow]; len(header) < layout.width() {
		return nil, &ParseError{
			Row:   headerRow,
			Value: strings.Join(header, ","),
			Err:   fmt.Errorf("%w: header has %d columns, need %d", ErrMalformedRow, len(header), layout.width()),
		}
	}

	series := make(models.Series, 0, len(rows)-headerRow-1)
	for i, record := range rows[headerRow+1:] {
		iv, err := parseRecord(record, layout, loc)
		if err != nil {
			err.Row = headerRow + 1 + i
			return nil, err
		}
		series = append(series, iv)
	}

	return series, nil
}

func parseRecord(record []string, layout columnLayout, loc *time.Location) (models.Interval, *ParseError) {
	if len(record) < layout.width() {
		return models.Interval{}, &ParseError{
			Value: strings.Join(record, ","),
			Err:   fmt.Errorf("%w: %d columns, need %d", ErrMalformedRow, len(record), layout.width()),
		}
	}

	period := strings.TrimSpace(record[layout.period])
	parts := strings.Split(period, periodSeparator)
	if len(parts) != 2 {
		return models.Interval{}, &ParseError{Value: period, Err: ErrBadPeriod}
	}

	startWall, err := parseTimestamp(parts[0])
	if err != nil {
		return models.Interval{}, &ParseError{Value: parts[0], Err: err}
	}
	endWall, err := parseTimestamp(parts[1])
	if err != nil {
		return models.Interval{}, &ParseError{Value: parts[1], Err: err}
	}
	// Ordering is checked on the wall clock as written. Across a spring
	// forward gap the resolved instants of a valid period can coincide.
	if !endWall.After(startWall) {
		return models.Interval{}, &ParseError{Value: period, Err: fmt.Errorf("%w: end is not after start", ErrBadPeriod)}
	}

	usageStr := strings.TrimSpace(record[layout.usage])
	kwh, err := strconv.ParseFloat(usageStr, 64)
	if err != nil {
		return models.Interval{}, &ParseError{Value: usageStr, Err: ErrBadUsage}
	}

	return models.Interval{Start: inLocation(startWall, loc), End: inLocation(endWall, loc), KWh: kwh}, nil
}

// parseTimestamp reads a wall clock reading. The result is in UTC only as a
// carrier for the fields; inLocation gives it its real zone.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
	}
	return t, nil
}

// inLocation places a wall clock reading in loc. A reading that falls in a
// daylight saving gap does not exist there, and time.Date resolves it to an
// instant whose clock reads earlier; such readings are moved forward by the
// difference, so 02:30 on a spring forward day becomes 03:30.
func inLocation(wall time.Time, loc *time.Location) time.Time {
	t := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, loc)
	shown := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	if skew := wall.Sub(shown); skew > 0 {
		t = t.Add(skew)
	}
	return t
}
