package usage

import (
	"time"

	"github.com/jgoulah/hydromon/pkg/models"
)

// Trim returns the intervals of s that lie entirely within w.
// The input series is not modified.
func Trim(s models.Series, w models.Window) models.Series {
	trimmed := make(models.Series, 0, len(s))
	for _, iv := range s {
		if w.Contains(iv) {
			trimmed = append(trimmed, iv)
		}
	}
	return trimmed
}

// DailyWindow returns yesterday's midnight-to-midnight window in now's location
func DailyWindow(now time.Time) models.Window {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return models.Window{
		Start: end.AddDate(0, 0, -1),
		End:   end,
	}
}
