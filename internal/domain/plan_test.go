package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lowTemp      = 70.0  // heat index 70, Low
	moderateTemp = 92.0  // with 55% RH, heat index ~101.4, Moderate
	highTemp     = 95.0  // with 55% RH, heat index ~109, High
	extremeTemp  = 104.0 // with 55% RH, heat index ~137.4, Extreme
	testRH       = 55.0
)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	p, err := NewPlanner(DefaultScheduleTable(), DefaultSafeCeiling)
	require.NoError(t, err)
	return p
}

func evaluate(t *testing.T, temps ...float64) []EvaluatedHour {
	t.Helper()
	in := make([]HourlyReading, len(temps))
	for i, temp := range temps {
		in[i] = reading(i, temp, testRH, 2)
	}
	out, err := newTestNormalizer(t).Normalize(in)
	require.NoError(t, err)
	return out
}

func TestPlan_EmptyForecast(t *testing.T) {
	p := newTestPlanner(t)

	_, err := p.Plan(nil, RoleStudent)
	assert.ErrorIs(t, err, ErrEmptyForecast)

	_, err = p.Plan([]EvaluatedHour{}, RoleOutdoorWorker)
	assert.ErrorIs(t, err, ErrEmptyForecast)
}

func TestPlan_UnknownRole(t *testing.T) {
	p := newTestPlanner(t)
	_, err := p.Plan(evaluate(t, lowTemp), Role(42))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPlan_AllSeventyDegrees(t *testing.T) {
	p := newTestPlanner(t)
	temps := make([]float64, 24)
	for i := range temps {
		temps[i] = lowTemp
	}
	hours := evaluate(t, temps...)

	b, err := p.Plan(hours, RoleOutdoorWorker)
	require.NoError(t, err)

	require.Len(t, b.Windows, 1)
	assert.Equal(t, 0, b.Windows[0].StartIndex)
	assert.Equal(t, 23, b.Windows[0].EndIndex)
	assert.Equal(t, 24, b.Windows[0].Hours())
	assert.Equal(t, hours[0].Timestamp, b.Windows[0].Start)
	assert.Equal(t, hours[23].Timestamp, b.Windows[0].End)
	assert.Equal(t, RiskLow, b.PeakRisk)
	assert.Equal(t, DefaultScheduleTable().Lookup(RoleOutdoorWorker, RiskLow), b.Schedule)
	assert.Contains(t, b.Summary, "Peak risk Low")
	assert.Contains(t, b.Summary, "1 safe window, starting 12AM")
}

func TestPlan_NoSafeWindows(t *testing.T) {
	p := newTestPlanner(t)
	b, err := p.Plan(evaluate(t, highTemp, extremeTemp, highTemp), RoleStudent)
	require.NoError(t, err)

	assert.Empty(t, b.Windows)
	assert.Equal(t, RiskExtreme, b.PeakRisk)
	assert.Contains(t, b.Summary, "Peak risk Extreme")
	assert.Contains(t, b.Summary, "0 safe windows")
	assert.Contains(t, b.Summary, "no safe windows")
}

func TestPlan_PeakAndSchedule(t *testing.T) {
	p := newTestPlanner(t)
	hours := evaluate(t, lowTemp, moderateTemp, highTemp, moderateTemp, lowTemp)

	b, err := p.Plan(hours, RoleCourier)
	require.NoError(t, err)

	assert.Equal(t, RiskHigh, b.PeakRisk)
	assert.Equal(t, hours[2], b.PeakHour)
	assert.Equal(t, RoleSchedule{
		WorkMinutes:              40,
		RestMinutes:              20,
		HydrationIntervalMinutes: 20,
		HydrationVolumeOz:        8.5,
		Note:                     "Cold packs in bag; short stops in shade.",
	}, b.Schedule)
	assert.Equal(t, RiskModerate, b.SafeCeiling)
	assert.Contains(t, b.Summary, "2 safe windows, first starting 12AM")
}

func TestPlan_PeakTieTakesFirstHour(t *testing.T) {
	p := newTestPlanner(t)
	hours := evaluate(t, lowTemp, highTemp, highTemp)

	b, err := p.Plan(hours, RoleElderly)
	require.NoError(t, err)
	assert.Equal(t, hours[1].Timestamp, b.PeakHour.Timestamp)
}

func TestPlan_DisclosesUVBump(t *testing.T) {
	p := newTestPlanner(t)
	n := newTestNormalizer(t)
	hours, err := n.Normalize([]HourlyReading{
		reading(0, 80, 40, 9),
		reading(1, 80, 40, 2),
		reading(2, 80, 40, 10),
	})
	require.NoError(t, err)

	b, err := p.Plan(hours, RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 2, b.UVAdjustedHours)
	assert.Contains(t, b.Summary, "UV exposure bump applied to 2 hours")
}

func TestSafeWindows(t *testing.T) {
	tests := []struct {
		name  string
		temps []float64
		want  [][2]int
	}{
		{"single hour", []float64{lowTemp}, [][2]int{{0, 0}}},
		{"none qualify", []float64{highTemp, extremeTemp}, nil},
		{"split by high hour", []float64{lowTemp, moderateTemp, highTemp, lowTemp, lowTemp}, [][2]int{{0, 1}, {3, 4}}},
		{"leading unsafe", []float64{extremeTemp, lowTemp, moderateTemp}, [][2]int{{1, 2}}},
		{"trailing unsafe", []float64{lowTemp, highTemp}, [][2]int{{0, 0}}},
		{"alternating", []float64{lowTemp, highTemp, lowTemp, highTemp, lowTemp}, [][2]int{{0, 0}, {2, 2}, {4, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := evaluate(t, tt.temps...)
			windows := SafeWindows(hours, RiskModerate)

			var got [][2]int
			for _, w := range windows {
				got = append(got, [2]int{w.StartIndex, w.EndIndex})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("windows mismatch (-want +got):\n%s", diff)
			}
			assertWindowsMaximal(t, hours, windows, RiskModerate)
		})
	}
}

func TestSafeWindows_CeilingLow(t *testing.T) {
	hours := evaluate(t, lowTemp, moderateTemp, lowTemp)
	windows := SafeWindows(hours, RiskLow)
	require.Len(t, windows, 2)
	assertWindowsMaximal(t, hours, windows, RiskLow)
}

func TestSafeWindows_TracksWindowPeak(t *testing.T) {
	hours := evaluate(t, lowTemp, moderateTemp, lowTemp)
	windows := SafeWindows(hours, RiskModerate)
	require.Len(t, windows, 1)
	assert.Equal(t, RiskModerate, windows[0].MaxRisk)
	assert.InDelta(t, hours[1].HeatIndexF, windows[0].PeakHeatIndexF, 1e-9)
}

// assertWindowsMaximal checks that every qualifying hour is in exactly one
// window, no other hour is, and no two windows touch.
func assertWindowsMaximal(t *testing.T, hours []EvaluatedHour, windows []SafeWindow, ceiling RiskCategory) {
	t.Helper()
	covered := make([]int, len(hours))
	for i, w := range windows {
		for j := w.StartIndex; j <= w.EndIndex; j++ {
			covered[j]++
		}
		if i > 0 {
			assert.Greater(t, w.StartIndex, windows[i-1].EndIndex+1, "windows %d and %d touch", i-1, i)
		}
	}
	for i, h := range hours {
		if h.Risk <= ceiling {
			assert.Equal(t, 1, covered[i], "qualifying hour %d", i)
		} else {
			assert.Equal(t, 0, covered[i], "unsafe hour %d", i)
		}
	}
}

func TestNewPlanner_InvalidConfig(t *testing.T) {
	_, err := NewPlanner(nil, RiskModerate)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewPlanner(DefaultScheduleTable(), RiskCategory(9))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestWindowLabel(t *testing.T) {
	hours := evaluate(t, lowTemp, lowTemp, lowTemp, lowTemp, lowTemp, lowTemp, lowTemp)
	assert.Equal(t, "12AM–6AM", WindowLabel(SafeWindow{Start: hours[0].Timestamp, End: hours[6].Timestamp}))
	assert.Equal(t, "3AM", WindowLabel(SafeWindow{Start: hours[3].Timestamp, End: hours[3].Timestamp}))
}
