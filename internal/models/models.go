package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MetricType governs display formatting only. It never feeds the
// classification math.
type MetricType string

const (
	MetricCount      MetricType = "count"
	MetricPercentage MetricType = "percentage"
	MetricDollar     MetricType = "dollar"
)

// KPIType selects the narrative grammar and, for compliance, switches the
// classification policy to the binary actual-vs-baseline form.
type KPIType string

const (
	KPIPerformance KPIType = "performance"
	KPICompliance  KPIType = "compliance"
)

// Status is the five-way classification of a report against its target and
// baseline. It is always derived from a MetricReport, never stored on its own.
type Status string

const (
	StatusAhead          Status = "Ahead"
	StatusOnTrack        Status = "OnTrack"
	StatusSlightlyBehind Status = "SlightlyBehind"
	StatusFallingBehind  Status = "FallingBehind"
	StatusOffTrack       Status = "OffTrack"
)

// AllStatuses lists every Status in escalation order.
var AllStatuses = []Status{
	StatusAhead,
	StatusOnTrack,
	StatusSlightlyBehind,
	StatusFallingBehind,
	StatusOffTrack,
}

// Action ids carried on the interactive controls. These are part of the wire
// contract with the chat platform and must not change between releases.
const (
	ActionStartPlan       = "start_plan"
	ActionSelectRecipient = "select_recipient"
	ActionSendToUser      = "send_to_selected_user"

	// PlanCallbackID identifies the reflection modal on submission.
	PlanCallbackID = "plan_submit"

	// PlaceholderValue is what a control carries between the initial post
	// and the follow-up update that installs the real context.
	PlaceholderValue = "placeholder"
)

// Number unmarshals from either a JSON number or a numeric string. The
// legacy intake payload originates from spreadsheet automations that quote
// numbers inconsistently.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// MetricReport is the unit of work: one measured result for one reporting
// period, already normalized from the intake payload.
type MetricReport struct {
	Title      string
	Location   string
	Period     string
	Actual     float64
	Target     *float64
	Baseline   float64
	MetricType MetricType
	KPIType    KPIType
	Owner      string
	Requester  string
	Row        string
	ReportedAt string
	ChartURL   string
	Grouped    bool

	// Chart presentation carried through from the intake payload.
	BarColor         string
	BaselineBoxColor string
	AxisMax          float64
}

// InteractionContext is the only state that survives between the initial
// post and any later interaction. It travels serialized inside interactive
// element values and modal private metadata; json tags mirror the original
// wire names so old consumers keep working.
type InteractionContext struct {
	Channel    string     `json:"channel,omitempty"`
	TS         string     `json:"ts,omitempty"`
	Recipient  string     `json:"recipient,omitempty"`
	Title      string     `json:"title,omitempty"`
	Location   string     `json:"labels,omitempty"`
	Period     string     `json:"period,omitempty"`
	Actual     Number     `json:"results,omitempty"`
	Target     *Number    `json:"target,omitempty"`
	Baseline   Number     `json:"baseline,omitempty"`
	MetricType MetricType `json:"metricType,omitempty"`
	KPIType    KPIType    `json:"kpiType,omitempty"`
	Owner      string     `json:"owner,omitempty"`
	Requester  string     `json:"user,omitempty"`
	Row        string     `json:"row,omitempty"`
	ReportedAt string     `json:"timestamp,omitempty"`
	ChartURL   string     `json:"chart_url,omitempty"`
}

// IsZero reports whether the context carries nothing at all, which is what a
// placeholder or undecodable control value decodes to.
func (c InteractionContext) IsZero() bool {
	return c == (InteractionContext{})
}

// ContextFromReport projects a report into the context that rides along on
// its interactive controls. Channel and TS are filled in after the first
// post, once the platform has assigned them.
func ContextFromReport(r MetricReport) InteractionContext {
	c := InteractionContext{
		Title:      r.Title,
		Location:   r.Location,
		Period:     r.Period,
		Actual:     Number(r.Actual),
		Baseline:   Number(r.Baseline),
		MetricType: r.MetricType,
		KPIType:    r.KPIType,
		Owner:      r.Owner,
		Requester:  r.Requester,
		Row:        r.Row,
		ReportedAt: r.ReportedAt,
		ChartURL:   r.ChartURL,
	}
	if r.Target != nil {
		t := Number(*r.Target)
		c.Target = &t
	}
	return c
}

// Report reconstructs the MetricReport view of a round-tripped context.
// Fields the codec dropped under truncation come back as zero values.
func (c InteractionContext) Report() MetricReport {
	r := MetricReport{
		Title:      c.Title,
		Location:   c.Location,
		Period:     c.Period,
		Actual:     float64(c.Actual),
		Baseline:   float64(c.Baseline),
		MetricType: c.MetricType,
		KPIType:    c.KPIType,
		Owner:      c.Owner,
		Requester:  c.Requester,
		Row:        c.Row,
		ReportedAt: c.ReportedAt,
		ChartURL:   c.ChartURL,
	}
	if c.Target != nil {
		t := float64(*c.Target)
		r.Target = &t
	}
	return r
}

// PlanSubmission is the filled reflection form plus the context that was in
// effect when the modal opened. The embedded context flattens into the relay
// payload; SubmittedAt shadows the context's report timestamp, matching the
// original relay contract.
type PlanSubmission struct {
	InteractionContext
	Goal         string `json:"goal"`
	Reasoning    string `json:"reasoning"`
	Stakeholders string `json:"stakeholders"`
	NextAction   string `json:"next_action"`
	Ownership    string `json:"ownership"`
	Confidence   string `json:"confidence"`
	SlackUser    string `json:"slack_user"`
	SlackID      string `json:"slack_id"`
	SubmittedAt  string `json:"timestamp"`
}

// ActionEvent mirrors a button click to the automation relay.
type ActionEvent struct {
	InteractionContext
	Action    string `json:"action"`
	SlackUser string `json:"slack_user"`
	SlackID   string `json:"slack_id"`
	EventID   string `json:"event_id"`
	Timestamp string `json:"timestamp"`
}
