package usage

import (
	"fmt"

	"github.com/jgoulah/hydromon/pkg/models"
)

// isoLocal is ISO 8601 without a zone offset, in the timestamp's own location
const isoLocal = "2006-01-02T15:04:05"

// FormatReport renders stats as the three-line report body
func FormatReport(st models.Stats) string {
	return fmt.Sprintf("Average Usage: %.2fkW\nMaximum Usage: %.2fkW (%s - %s)\nTotal Usage: %.2f kWh",
		st.Average,
		st.Peak.Value,
		st.Peak.Start.Format(isoLocal),
		st.Peak.End.Format(isoLocal),
		st.Total,
	)
}
