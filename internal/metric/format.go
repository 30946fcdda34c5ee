package metric

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/heartbeatai/heartbeat/internal/models"
)

// notANumber is what non-numeric input renders as. The sentinel keeps NaN
// text out of narratives and chart labels.
const notANumber = "-"

// FormatValue renders a raw value per the metric type's unit convention.
// All types round to the nearest integer.
func FormatValue(v *float64, mt models.MetricType) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return notANumber
	}
	n := int64(math.Round(*v))
	switch mt {
	case models.MetricPercentage:
		return strconv.FormatInt(n, 10) + "%"
	case models.MetricDollar:
		return "$" + humanize.Comma(n)
	default:
		return humanize.Comma(n)
	}
}

// Format is FormatValue for a value that is known to be present.
func Format(v float64, mt models.MetricType) string {
	return FormatValue(&v, mt)
}
