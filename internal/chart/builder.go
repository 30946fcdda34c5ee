// Package chart builds the rendering-service URL for a report. The chart
// service is consumed only as an image URL; its response is never decoded.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/heartbeatai/heartbeat/internal/metric"
	"github.com/heartbeatai/heartbeat/internal/models"
)

// DefaultBaseURL is the public QuickChart endpoint.
const DefaultBaseURL = "https://quickchart.io/chart"

// BuildURL renders the chart specification for one report and embeds it,
// URL-encoded, in a GET URL against the chart service.
func BuildURL(baseURL string, r models.MetricReport, status models.Status) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	spec, err := json.Marshal(buildSpec(r, status))
	if err != nil {
		return baseURL
	}
	return baseURL + "?c=" + url.QueryEscape(string(spec))
}

func buildSpec(r models.MetricReport, status models.Status) map[string]interface{} {
	actualF := metric.Format(r.Actual, r.MetricType)
	baselineF := metric.Format(r.Baseline, r.MetricType)

	annotations := []interface{}{
		map[string]interface{}{
			"type":        "line",
			"mode":        "horizontal",
			"scaleID":     "y-axis-0",
			"value":       r.Baseline,
			"borderColor": "rgba(255,165,0,0.8)",
			"borderWidth": 2,
			"label": map[string]interface{}{
				"enabled":         true,
				"content":         baselineF,
				"position":        "start",
				"backgroundColor": "rgba(255,165,0,0.85)",
				"fontColor":       "#fff",
				"fontSize":        14,
			},
		},
		map[string]interface{}{
			// Shaded region below the red line.
			"type":            "box",
			"drawTime":        "beforeDatasetsDraw",
			"xScaleID":        "x-axis-0",
			"yScaleID":        "y-axis-0",
			"yMin":            0,
			"yMax":            r.Baseline,
			"backgroundColor": r.BaselineBoxColor,
			"borderWidth":     0,
		},
	}
	if r.Target != nil {
		annotations = append(annotations, map[string]interface{}{
			"type":        "line",
			"mode":        "horizontal",
			"scaleID":     "y-axis-0",
			"value":       *r.Target,
			"borderColor": "rgba(255,165,0,0.8)",
			"borderWidth": 2,
			"label": map[string]interface{}{
				"enabled":         true,
				"content":         metric.Format(*r.Target, r.MetricType),
				"position":        "start",
				"backgroundColor": "rgba(255,165,0,0.85)",
				"fontColor":       "#fff",
				"fontSize":        14,
			},
		})
	}

	return map[string]interface{}{
		"version":          "2",
		"devicePixelRatio": 4,
		"type":             "bar",
		"data": map[string]interface{}{
			"labels": []string{r.Location},
			"datasets": []interface{}{
				map[string]interface{}{
					"label":              "Results",
					"data":               []float64{r.Actual},
					"backgroundColor":    r.BarColor,
					"borderColor":        r.BarColor,
					"borderWidth":        1,
					"borderRadius":       8,
					"barPercentage":      0.6,
					"categoryPercentage": 0.8,
				},
			},
		},
		"options": map[string]interface{}{
			"responsive": true,
			"layout": map[string]interface{}{
				"padding": map[string]int{"top": 20, "bottom": 50, "left": 15, "right": 15},
			},
			"title": map[string]interface{}{
				"display":   true,
				"text":      []string{r.Title, r.Location, " " + actualF, " "},
				"fontSize":  26,
				"fontStyle": "bold",
				"fontColor": "#555",
			},
			"legend": map[string]interface{}{"display": false},
			"scales": map[string]interface{}{
				"xAxes": []interface{}{
					map[string]interface{}{
						"gridLines": map[string]interface{}{"display": false},
						"ticks":     map[string]interface{}{"fontSize": 14, "fontStyle": "bold", "fontColor": "#333"},
					},
				},
				"yAxes": []interface{}{
					map[string]interface{}{
						"ticks":     axisTicks(r),
						"gridLines": map[string]interface{}{"color": "#f5f5f5"},
					},
				},
			},
			"plugins": map[string]interface{}{
				"datalabels": map[string]interface{}{
					"color":   "#fff",
					"font":    map[string]interface{}{"size": 20, "weight": "bold"},
					"anchor":  "center",
					"align":   "center",
					"clip":    true,
					"display": true,
				},
				"freetext": []interface{}{
					map[string]interface{}{
						"text":  fmt.Sprintf("Performance Status: %s", status),
						"x":     15,
						"y":     580,
						"font":  map[string]interface{}{"size": 12, "family": "Arial", "weight": "normal"},
						"color": "#666",
						"align": "start",
					},
				},
			},
			"annotation": map[string]interface{}{"annotations": annotations},
		},
	}
}

// axisTicks keys the axis ceiling and step to the metric's unit so bars sit
// on familiar round scales.
func axisTicks(r models.MetricReport) map[string]interface{} {
	ticks := map[string]interface{}{
		"beginAtZero": true,
		"padding":     10,
	}
	switch r.MetricType {
	case models.MetricPercentage:
		ticks["suggestedMax"] = math.Max(100, math.Ceil(r.AxisMax/10)*10)
		ticks["stepSize"] = 10
	case models.MetricDollar:
		ticks["suggestedMax"] = math.Ceil(r.AxisMax/10000) * 10000
		ticks["stepSize"] = 20000
	default:
		ticks["suggestedMax"] = math.Ceil(r.AxisMax/1000) * 1000
	}
	return ticks
}
