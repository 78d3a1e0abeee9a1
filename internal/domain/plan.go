package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultSafeCeiling is the highest risk still considered safe for outdoor activity.
const DefaultSafeCeiling = RiskModerate

// Planner selects safe windows and a role schedule for evaluated hours.
// It holds no mutable state and is safe for concurrent use.
type Planner struct {
	table       *ScheduleTable
	safeCeiling RiskCategory
}

// NewPlanner returns a Planner backed by a validated schedule table.
func NewPlanner(table *ScheduleTable, safeCeiling RiskCategory) (*Planner, error) {
	if table == nil {
		return nil, &ConfigurationError{Key: "schedule_table", Reason: "is required"}
	}
	if !safeCeiling.Valid() {
		return nil, &ConfigurationError{Key: "safe_ceiling", Reason: fmt.Sprintf("unknown risk category %d", int(safeCeiling))}
	}
	return &Planner{table: table, safeCeiling: safeCeiling}, nil
}

// Plan builds a bulletin from evaluated hours for the given role. ID,
// location, hydration reminders, and generation time are left for the
// caller to fill in.
func (p *Planner) Plan(hours []EvaluatedHour, role Role) (Bulletin, error) {
	if len(hours) == 0 {
		return Bulletin{}, ErrEmptyForecast
	}
	if !role.Valid() {
		return Bulletin{}, invalidRequestf("unknown role %d", int(role))
	}

	windows := SafeWindows(hours, p.safeCeiling)
	peak := peakHour(hours)
	peakRisk := maxRisk(hours)

	uvHours := 0
	for _, h := range hours {
		if h.UVAdjusted {
			uvHours++
		}
	}

	b := Bulletin{
		Role:            role,
		Hours:           hours,
		Windows:         windows,
		PeakRisk:        peakRisk,
		PeakHour:        peak,
		SafeCeiling:     p.safeCeiling,
		Schedule:        p.table.Lookup(role, peakRisk),
		UVAdjustedHours: uvHours,
	}
	b.Summary = summarize(b)
	return b, nil
}

// SafeWindows partitions hours into maximal consecutive runs whose risk is
// at or below ceiling.
func SafeWindows(hours []EvaluatedHour, ceiling RiskCategory) []SafeWindow {
	var windows []SafeWindow
	start := -1
	for i := 0; i <= len(hours); i++ {
		qualifies := i < len(hours) && hours[i].Risk <= ceiling
		switch {
		case qualifies && start < 0:
			start = i
		case !qualifies && start >= 0:
			windows = append(windows, newWindow(hours, start, i-1))
			start = -1
		}
	}
	return windows
}

func newWindow(hours []EvaluatedHour, start, end int) SafeWindow {
	w := SafeWindow{
		StartIndex:     start,
		EndIndex:       end,
		Start:          hours[start].Timestamp,
		End:            hours[end].Timestamp,
		PeakHeatIndexF: math.Inf(-1),
	}
	for _, h := range hours[start : end+1] {
		w.PeakHeatIndexF = math.Max(w.PeakHeatIndexF, h.HeatIndexF)
		if h.Risk > w.MaxRisk {
			w.MaxRisk = h.Risk
		}
	}
	return w
}

// peakHour returns the first hour with the highest adjusted heat index.
func peakHour(hours []EvaluatedHour) EvaluatedHour {
	peak := hours[0]
	for _, h := range hours[1:] {
		if h.HeatIndexF > peak.HeatIndexF {
			peak = h
		}
	}
	return peak
}

func maxRisk(hours []EvaluatedHour) RiskCategory {
	r := RiskLow
	for _, h := range hours {
		if h.Risk > r {
			r = h.Risk
		}
	}
	return r
}

func summarize(b Bulletin) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Peak risk %s at %s (heat index %.0f°F).",
		b.PeakRisk, HourLabel(b.PeakHour.Timestamp), b.PeakHour.HeatIndexF)

	switch n := len(b.Windows); n {
	case 0:
		fmt.Fprintf(&sb, " 0 safe windows: no safe windows at or below %s.", b.SafeCeiling)
	case 1:
		fmt.Fprintf(&sb, " 1 safe window, starting %s.", HourLabel(b.Windows[0].Start))
	default:
		fmt.Fprintf(&sb, " %d safe windows, first starting %s.", n, HourLabel(b.Windows[0].Start))
	}

	if b.UVAdjustedHours > 0 {
		fmt.Fprintf(&sb, " UV exposure bump applied to %d %s (guidance only).",
			b.UVAdjustedHours, plural(b.UVAdjustedHours, "hour", "hours"))
	}
	return sb.String()
}

// HourLabel formats a timestamp as a 12-hour clock label, e.g. "3PM".
func HourLabel(t time.Time) string {
	return t.Format("3PM")
}

// WindowLabel formats a window as "6AM–9AM", or a single label for one-hour windows.
func WindowLabel(w SafeWindow) string {
	if w.Start.Equal(w.End) {
		return HourLabel(w.Start)
	}
	return HourLabel(w.Start) + "–" + HourLabel(w.End)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
