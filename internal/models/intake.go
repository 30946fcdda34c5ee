package models

import (
	"fmt"
	"math"
	"strings"
)

// ReportInput is the flat intake payload as the upstream automation sends
// it. Field names follow the legacy contract (labels for location, results
// for actual, user for requester); Normalize is the single place where that
// shape is turned into the canonical MetricReport.
type ReportInput struct {
	Title            string  `json:"title"`
	Labels           string  `json:"labels"`
	Period           string  `json:"period"`
	Results          *Number `json:"results"`
	Target           *Number `json:"target"`
	Baseline         *Number `json:"baseline"`
	MetricType       string  `json:"metricType"`
	KPIType          string  `json:"kpiType"`
	Owner            string  `json:"owner"`
	User             string  `json:"user"`
	Row              string  `json:"row"`
	Timestamp        string  `json:"timestamp"`
	ChartURL         string  `json:"chart_url"`
	Grouped          bool    `json:"grouped"`
	BarColor         string  `json:"barColor"`
	BaselineBoxColor string  `json:"baselineBoxColor"`
	Max              *Number `json:"max"`
}

const (
	defaultBarColor         = "#4e79a7"
	defaultBaselineBoxColor = "rgba(255,99,132,0.12)"
)

// Normalize validates the intake payload and applies every default in one
// step so downstream components never re-derive them.
func (in ReportInput) Normalize() (MetricReport, error) {
	if strings.TrimSpace(in.Title) == "" {
		return MetricReport{}, fmt.Errorf("title required")
	}
	if in.Results == nil || !isFinite(float64(*in.Results)) {
		return MetricReport{}, fmt.Errorf("results must be a finite number")
	}
	if in.Baseline == nil || !isFinite(float64(*in.Baseline)) {
		return MetricReport{}, fmt.Errorf("baseline must be a finite number")
	}

	r := MetricReport{
		Title:            strings.TrimSpace(in.Title),
		Location:         strings.TrimSpace(in.Labels),
		Period:           in.Period,
		Actual:           float64(*in.Results),
		Baseline:         float64(*in.Baseline),
		MetricType:       normalizeMetricType(in.MetricType),
		KPIType:          normalizeKPIType(in.KPIType),
		Owner:            in.Owner,
		Requester:        in.User,
		Row:              in.Row,
		ReportedAt:       in.Timestamp,
		ChartURL:         in.ChartURL,
		Grouped:          in.Grouped,
		BarColor:         in.BarColor,
		BaselineBoxColor: in.BaselineBoxColor,
	}
	if in.Target != nil && isFinite(float64(*in.Target)) && float64(*in.Target) > 0 {
		t := float64(*in.Target)
		r.Target = &t
	}
	if r.BarColor == "" {
		r.BarColor = defaultBarColor
	}
	if r.BaselineBoxColor == "" {
		r.BaselineBoxColor = defaultBaselineBoxColor
	}
	if in.Max != nil && isFinite(float64(*in.Max)) {
		r.AxisMax = float64(*in.Max)
	} else {
		r.AxisMax = r.Actual
		if r.Target != nil && *r.Target > r.AxisMax {
			r.AxisMax = *r.Target
		}
		if r.Baseline > r.AxisMax {
			r.AxisMax = r.Baseline
		}
	}
	return r, nil
}

func normalizeMetricType(s string) MetricType {
	switch MetricType(strings.ToLower(strings.TrimSpace(s))) {
	case MetricPercentage:
		return MetricPercentage
	case MetricDollar:
		return MetricDollar
	default:
		return MetricCount
	}
}

func normalizeKPIType(s string) KPIType {
	if KPIType(strings.ToLower(strings.TrimSpace(s))) == KPICompliance {
		return KPICompliance
	}
	return KPIPerformance
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
