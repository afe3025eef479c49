package models

import "time"

// Interval represents one metered usage period from the provider export
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	KWh   float64   `json:"kwh"`
}

// Series is an ordered run of intervals, kept in export order
type Series []Interval

// Span returns the window from the first interval's start to the latest end
func (s Series) Span() Window {
	if len(s) == 0 {
		return Window{}
	}
	w := Window{Start: s[0].Start, End: s[0].End}
	for _, iv := range s[1:] {
		if iv.Start.Before(w.Start) {
			w.Start = iv.Start
		}
		if iv.End.After(w.End) {
			w.End = iv.End
		}
	}
	return w
}

// Window is a requested time range. Both bounds are inclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the interval lies entirely inside the window
func (w Window) Contains(iv Interval) bool {
	return !iv.Start.Before(w.Start) && !iv.End.After(w.End)
}

// Peak identifies the interval with the highest consumption
type Peak struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Value float64   `json:"value"`
}

// Stats holds summary statistics for a series
type Stats struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Peak    Peak    `json:"peak"`
}

// Report is what gets handed to notifiers at the end of a run
type Report struct {
	Window Window `json:"window"`
	Stats  Stats  `json:"stats"`
	Body   string `json:"body"`
}
