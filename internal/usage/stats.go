package usage

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jgoulah/hydromon/pkg/models"
)

// Aggregate computes total, mean and peak consumption for s.
// On ties the earliest interval in series order is the peak.
func Aggregate(s models.Series) (models.Stats, error) {
	if len(s) == 0 {
		return models.Stats{}, ErrEmptySeries
	}

	values := make([]float64, len(s))
	for i, iv := range s {
		values[i] = iv.KWh
	}

	// MaxIdx returns the first index holding the maximum.
	peak := s[floats.MaxIdx(values)]

	return models.Stats{
		Count:   len(s),
		Total:   floats.Sum(values),
		Average: stat.Mean(values, nil),
		Peak: models.Peak{
			Start: peak.Start,
			End:   peak.End,
			Value: peak.KWh,
		},
	}, nil
}
