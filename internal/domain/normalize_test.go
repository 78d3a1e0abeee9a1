package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)

func reading(i int, temp, rh, uv float64) HourlyReading {
	return HourlyReading{
		Timestamp:           testStart.Add(time.Duration(i) * time.Hour),
		TemperatureF:        temp,
		RelativeHumidityPct: rh,
		UVIndex:             uv,
	}
}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultThresholds(), DefaultUVBump())
	require.NoError(t, err)
	return n
}

func TestNormalize_PreservesCountAndOrder(t *testing.T) {
	n := newTestNormalizer(t)
	in := []HourlyReading{
		reading(0, 72, 40, 0),
		reading(1, 95, 60, 9),
		reading(2, 88, 40, 5),
		reading(3, 100, 65, 10),
		reading(4, 60, 80, 0),
	}

	out, err := n.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i], out[i].HourlyReading, "hour %d", i)
	}
}

func TestNormalize_Empty(t *testing.T) {
	n := newTestNormalizer(t)

	out, err := n.Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = n.Normalize([]HourlyReading{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalize_BelowFloorHeatIndexIsTemperature(t *testing.T) {
	n := newTestNormalizer(t)
	for _, temp := range []float64{-10, 32, 65.5, 79.99} {
		out, err := n.Normalize([]HourlyReading{reading(0, temp, 95, 2)})
		require.NoError(t, err)
		assert.Equal(t, temp, out[0].HeatIndexF)
		assert.Equal(t, temp, out[0].MeteorologicalHeatIndexF)
		assert.False(t, out[0].UVAdjusted)
	}
}

func TestNormalize_UVBump(t *testing.T) {
	n := newTestNormalizer(t)

	out, err := n.Normalize([]HourlyReading{
		reading(0, 92, 55, 7),
		reading(1, 92, 55, 8),
	})
	require.NoError(t, err)

	low, high := out[0], out[1]
	assert.InDelta(t, 3.0, high.HeatIndexF-low.HeatIndexF, 1e-9)
	assert.False(t, low.UVAdjusted)
	assert.Zero(t, low.UVBumpF)
	assert.True(t, high.UVAdjusted)
	assert.Equal(t, 3.0, high.UVBumpF)
	assert.Equal(t, low.MeteorologicalHeatIndexF, high.MeteorologicalHeatIndexF)
}

func TestNormalize_UVBumpAppliesBelowFloor(t *testing.T) {
	n := newTestNormalizer(t)

	out, err := n.Normalize([]HourlyReading{reading(0, 70, 30, 9)})
	require.NoError(t, err)
	assert.Equal(t, 70.0, out[0].MeteorologicalHeatIndexF)
	assert.Equal(t, 73.0, out[0].HeatIndexF)
	assert.True(t, out[0].UVAdjusted)
}

func TestNormalize_Scenarios(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name    string
		in      HourlyReading
		wantMet float64
		wantHI  float64
		want    RiskCategory
	}{
		{"hot humid high UV", reading(0, 95, 60, 9), 113.09, 116.09, RiskHigh},
		{"extreme with UV", reading(0, 100, 65, 9), 135.87, 138.87, RiskExtreme},
		{"moderate no UV", reading(0, 90, 50, 4), 94.60, 94.60, RiskModerate},
		{"mild", reading(0, 70, 50, 2), 70, 70, RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := n.Normalize([]HourlyReading{tt.in})
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMet, out[0].MeteorologicalHeatIndexF, 0.01)
			assert.InDelta(t, tt.wantHI, out[0].HeatIndexF, 0.01)
			assert.Equal(t, tt.want, out[0].Risk)
		})
	}
}

func TestNormalize_AllSeventyDegrees(t *testing.T) {
	n := newTestNormalizer(t)
	in := make([]HourlyReading, 24)
	for i := range in {
		in[i] = reading(i, 70, 50, 3)
	}

	out, err := n.Normalize(in)
	require.NoError(t, err)
	for _, h := range out {
		assert.Equal(t, 70.0, h.HeatIndexF)
		assert.Equal(t, RiskLow, h.Risk)
	}
}

func TestNormalize_InvalidReading(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name      string
		bad       HourlyReading
		wantField string
	}{
		{"temperature too high", reading(2, 141, 50, 0), "temperature_f"},
		{"temperature too low", reading(2, -81, 50, 0), "temperature_f"},
		{"temperature NaN", reading(2, math.NaN(), 50, 0), "temperature_f"},
		{"humidity negative", reading(2, 80, -1, 0), "relative_humidity_pct"},
		{"humidity over 100", reading(2, 80, 100.5, 0), "relative_humidity_pct"},
		{"uv negative", reading(2, 80, 50, -0.1), "uv_index"},
		{"uv infinite", reading(2, 80, 50, math.Inf(1)), "uv_index"},
		{"missing timestamp", HourlyReading{TemperatureF: 80, RelativeHumidityPct: 50}, "timestamp"},
		{"timestamp out of order", reading(0, 80, 50, 0), "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []HourlyReading{reading(0, 80, 50, 1), reading(1, 81, 50, 1), tt.bad, reading(3, 82, 50, 1)}
			out, err := n.Normalize(in)

			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrInvalidReading))

			var ire *InvalidReadingError
			require.ErrorAs(t, err, &ire)
			assert.Equal(t, 2, ire.Index)
			assert.Equal(t, tt.wantField, ire.Field)
			assert.Contains(t, err.Error(), "hour 2")
		})
	}
}

func TestNormalize_BoundaryValuesAccepted(t *testing.T) {
	n := newTestNormalizer(t)
	_, err := n.Normalize([]HourlyReading{
		reading(0, MinTemperatureF, MinHumidityPct, 0),
		reading(1, MaxTemperatureF, MaxHumidityPct, 0),
	})
	assert.NoError(t, err)
}

func TestThresholds_CategorizeMonotonic(t *testing.T) {
	th := DefaultThresholds()
	prev := RiskLow
	for hi := 40.0; hi <= 160; hi += 0.25 {
		got := th.Categorize(hi)
		assert.GreaterOrEqual(t, got, prev, "heat index %v", hi)
		assert.Equal(t, got, th.Categorize(hi), "re-evaluation at %v", hi)
		prev = got
	}
}

func TestThresholds_CategorizeBoundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		hi   float64
		want RiskCategory
	}{
		{89.99, RiskLow},
		{90, RiskModerate},
		{103.99, RiskModerate},
		{104, RiskHigh},
		{124.99, RiskHigh},
		{125, RiskExtreme},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Categorize(tt.hi), "heat index %v", tt.hi)
	}
}

func TestNewNormalizer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		uv      UVBump
		wantKey string
	}{
		{"not ascending", Thresholds{RegressionFloorF: 80, ModerateF: 104, HighF: 90, ExtremeF: 125}, DefaultUVBump(), "thresholds.high_f"},
		{"floor above moderate", Thresholds{RegressionFloorF: 95, ModerateF: 90, HighF: 104, ExtremeF: 125}, DefaultUVBump(), "thresholds.moderate_f"},
		{"equal values", Thresholds{RegressionFloorF: 80, ModerateF: 90, HighF: 125, ExtremeF: 125}, DefaultUVBump(), "thresholds.extreme_f"},
		{"NaN", Thresholds{RegressionFloorF: math.NaN(), ModerateF: 90, HighF: 104, ExtremeF: 125}, DefaultUVBump(), "thresholds.regression_floor_f"},
		{"negative trigger", DefaultThresholds(), UVBump{TriggerIndex: -1, MagnitudeF: 3}, "uv_bump.trigger_index"},
		{"negative magnitude", DefaultThresholds(), UVBump{TriggerIndex: 8, MagnitudeF: -3}, "uv_bump.magnitude_f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(tt.th, tt.uv)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKey, ce.Key)
		})
	}
}
