package narrative

import (
	"fmt"

	"github.com/heartbeatai/heartbeat/internal/metric"
	"github.com/heartbeatai/heartbeat/internal/models"
)

// template holds the two renderings of one status: with a goal clause and
// without one. withTarget interpolates (location, metric, actual, target,
// baseline); withoutTarget interpolates (location, metric, actual, baseline).
type template struct {
	withTarget    string
	withoutTarget string
}

// performanceTemplates carry momentum and urgency language, escalating from
// celebratory down to intervention-oriented.
var performanceTemplates = map[models.Status]template{
	models.StatusAhead: {
		withTarget:    "✅ %s is ahead of target\n%s reached %s, outperforming the %s target and the %s baseline.\nNow's the time to build on this momentum.",
		withoutTarget: "✅ %s is ahead\n%s reached %s, clearing the %s baseline with room to spare.\nNow's the time to build on this momentum.",
	},
	models.StatusOnTrack: {
		withTarget:    "⚖️ %s is on track\n%s came in at %s, right around the %s goal and comfortably above the %s.\nSteady performance — let's keep it up.",
		withoutTarget: "⚖️ %s is on track\n%s came in at %s, comfortably above the %s baseline.\nSteady performance — let's keep it up.",
	},
	models.StatusSlightlyBehind: {
		withTarget:    "⚠️ %s is slightly behind target\n%s reached %s, just under the %s but still ahead of the %s.\nA small nudge could make the difference.",
		withoutTarget: "⚠️ %s is slightly behind\n%s reached %s, hovering just above the %s baseline.\nA small nudge could make the difference.",
	},
	models.StatusFallingBehind: {
		withTarget:    "🔻 %s is underperforming\n%s was %s, below the target of %s and trailing the %s.\nLet's rally support and take action early.",
		withoutTarget: "🔻 %s is underperforming\n%s was %s, trailing the %s baseline.\nLet's rally support and take action early.",
	},
	models.StatusOffTrack: {
		withTarget:    "🔴 %s is off track\n%s fell to %s, well below the %s and the %s.\nThis is a critical moment to step in and redirect.",
		withoutTarget: "🔴 %s is off track\n%s fell to %s, below the %s baseline.\nThis is a critical moment to step in and redirect.",
	},
}

// complianceTemplates speak in standards language. The baseline is the red
// line; compliance metrics frequently carry no target at all, so every entry
// must read correctly without the goal clause.
var complianceTemplates = map[models.Status]template{
	models.StatusAhead: {
		withTarget:    "✅ %s is exceeding the standard\n%s recorded %s, above the %s goal and well clear of the %s red line.\nStrong discipline, keep holding the bar.",
		withoutTarget: "✅ %s is exceeding the standard\n%s recorded %s, well clear of the %s red line.\nStrong discipline, keep holding the bar.",
	},
	models.StatusOnTrack: {
		withTarget:    "⚖️ %s is meeting the standard\n%s recorded %s, in line with the %s goal and above the %s red line.\nConsistency is what keeps us compliant.",
		withoutTarget: "⚖️ %s is meeting the standard\n%s recorded %s, above the %s red line.\nConsistency is what keeps us compliant.",
	},
	models.StatusSlightlyBehind: {
		withTarget:    "⚠️ %s is slipping on the standard\n%s recorded %s, short of the %s goal though still above the %s red line.\nTighten the routine before this drifts further.",
		withoutTarget: "⚠️ %s is slipping on the standard\n%s recorded %s, barely above the %s red line.\nTighten the routine before this drifts further.",
	},
	models.StatusFallingBehind: {
		withTarget:    "🔻 %s is falling short of the standard\n%s recorded %s, below the %s goal and closing on the %s red line.\nReview the process and correct course now.",
		withoutTarget: "🔻 %s is falling short of the standard\n%s recorded %s, approaching the %s red line.\nReview the process and correct course now.",
	},
	models.StatusOffTrack: {
		withTarget:    "🔴 %s has breached the standard\n%s recorded %s, under the %s goal and below the %s red line.\nImmediate corrective action is required.",
		withoutTarget: "🔴 %s has breached the standard\n%s recorded %s, below the %s red line.\nImmediate corrective action is required.",
	},
}

// Compose renders the narrative for one classified report. It is a pure
// function of its inputs; the full status-by-grammar output space is
// enumerable in tests.
func Compose(status models.Status, actual float64, target *float64, baseline float64, metricName, location string, mt models.MetricType, kpi models.KPIType) string {
	table := performanceTemplates
	if kpi == models.KPICompliance {
		table = complianceTemplates
	}
	tpl, ok := table[status]
	if !ok {
		tpl = table[models.StatusOnTrack]
	}

	actualF := metric.Format(actual, mt)
	baselineF := metric.Format(baseline, mt)
	if target == nil {
		return fmt.Sprintf(tpl.withoutTarget, location, metricName, actualF, baselineF)
	}
	targetF := metric.Format(*target, mt)
	return fmt.Sprintf(tpl.withTarget, location, metricName, actualF, targetF, baselineF)
}
