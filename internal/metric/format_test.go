package metric_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartbeatai/heartbeat/internal/metric"
	"github.com/heartbeatai/heartbeat/internal/models"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "93%", metric.Format(92.6, models.MetricPercentage))
	assert.Equal(t, "$1,234,568", metric.Format(1234567.89, models.MetricDollar))
	assert.Equal(t, "1,235", metric.Format(1234.6, models.MetricCount))
	assert.Equal(t, "0", metric.Format(0, models.MetricCount))
	assert.Equal(t, "-1,200", metric.Format(-1200.4, models.MetricCount))
}

func TestFormatValueSentinel(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	assert.Equal(t, "-", metric.FormatValue(nil, models.MetricDollar))
	assert.Equal(t, "-", metric.FormatValue(&nan, models.MetricCount))
	assert.Equal(t, "-", metric.FormatValue(&inf, models.MetricPercentage))
}

// Formatting an already-rounded integer must re-parse to the same integer.
func TestFormatIdempotent(t *testing.T) {
	for _, v := range []float64{0, 7, 1000, 987654, 42000000} {
		formatted := metric.Format(v, models.MetricCount)
		cleaned := strings.ReplaceAll(formatted, ",", "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			t.Fatalf("re-parse %q: %v", formatted, err)
		}
		if parsed != v {
			t.Fatalf("round trip changed %v to %v", v, parsed)
		}
	}
}
