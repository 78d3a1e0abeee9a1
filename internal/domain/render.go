package domain

import (
	"fmt"
	"strings"
	"time"
)

// Units selects the temperature scale for rendered output.
type Units string

const (
	Fahrenheit Units = "F"
	Celsius    Units = "C"
)

// ParseUnits accepts F or C in either case. An empty string means Fahrenheit.
func ParseUnits(s string) (Units, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "F":
		return Fahrenheit, nil
	case "C":
		return Celsius, nil
	}
	return "", invalidRequestf("unknown units %q", s)
}

func (u Units) format(f float64) string {
	if u == Celsius {
		return fmt.Sprintf("%.0f°C", FahrenheitToCelsius(f))
	}
	return fmt.Sprintf("%.0f°F", f)
}

// HourLine is one rendered forecast hour. Styling hooks in the CLI use it to
// colorize the risk column.
type HourLine struct {
	Time      string
	HeatIndex string
	Risk      RiskCategory
	UVFlag    string
}

// HourLines formats every hour for display.
func HourLines(b Bulletin, units Units) []HourLine {
	out := make([]HourLine, len(b.Hours))
	for i, h := range b.Hours {
		flag := ""
		if h.UVAdjusted {
			flag = "*"
		}
		out[i] = HourLine{
			Time:      h.Timestamp.Format("2006-01-02 15:04"),
			HeatIndex: units.format(h.HeatIndexF),
			Risk:      h.Risk,
			UVFlag:    flag,
		}
	}
	return out
}

// RenderText serializes a bulletin as plain text for display or file export.
func RenderText(b Bulletin, units Units) string {
	return RenderTextStyled(b, units, func(_ RiskCategory, s string) string { return s })
}

// RenderTextStyled is RenderText with a hook that decorates risk labels.
func RenderTextStyled(b Bulletin, units Units, style func(RiskCategory, string) string) string {
	var sb strings.Builder

	location := b.Location
	if location == "" {
		location = "Unspecified"
	}
	sb.WriteString("HEATGUARD DAILY BULLETIN\n")
	fmt.Fprintf(&sb, "Location: %s\n", location)
	fmt.Fprintf(&sb, "Peak Heat Index: %s at %s\n", units.format(b.PeakHour.HeatIndexF), HourLabel(b.PeakHour.Timestamp))
	fmt.Fprintf(&sb, "Peak Risk: %s\n", style(b.PeakRisk, b.PeakRisk.String()))
	sb.WriteString("\n")

	for _, l := range HourLines(b, units) {
		fmt.Fprintf(&sb, "%s  %6s%-1s  %s\n", l.Time, l.HeatIndex, l.UVFlag, style(l.Risk, l.Risk.String()))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Safer Outdoor Windows: %s\n", windowsText(b.Windows))
	fmt.Fprintf(&sb, "Role: %s\n", b.Role)
	fmt.Fprintf(&sb, "Work/Rest: %d / %d (min)\n", b.Schedule.WorkMinutes, b.Schedule.RestMinutes)
	fmt.Fprintf(&sb, "Hydration: %.1f oz every %d min\n", b.Schedule.HydrationVolumeOz, b.Schedule.HydrationIntervalMinutes)
	fmt.Fprintf(&sb, "Reminders: %s\n", remindersText(b.Hydration, b.SessionMinutes))
	if b.Schedule.Note != "" {
		fmt.Fprintf(&sb, "Note: %s\n", b.Schedule.Note)
	}
	fmt.Fprintf(&sb, "Summary: %s\n", b.Summary)
	if b.UVAdjustedHours > 0 {
		sb.WriteString("* includes a guidance-only UV exposure bump, not a meteorological value\n")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Generated: %s\n", b.GeneratedAt.Format(time.DateTime))
	return sb.String()
}

func windowsText(ws []SafeWindow) string {
	if len(ws) == 0 {
		return "None, keep sessions short and shaded"
	}
	labels := make([]string, len(ws))
	for i, w := range ws {
		labels[i] = WindowLabel(w)
	}
	return strings.Join(labels, ", ")
}

func remindersText(rs []HydrationReminder, session int) string {
	if len(rs) == 0 {
		return fmt.Sprintf("session of %d min is shorter than one interval; still bring water", session)
	}
	marks := make([]string, len(rs))
	for i, r := range rs {
		marks[i] = fmt.Sprintf("%d min", r.AtMinute)
	}
	return strings.Join(marks, ", ")
}
