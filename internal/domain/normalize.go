package domain

import (
	"fmt"
	"math"
)

// Valid input ranges for a reading.
const (
	MinTemperatureF = -80.0
	MaxTemperatureF = 140.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0
)

// Thresholds holds the four ascending heat-index cut points. RegressionFloorF
// gates the Rothfusz regression; the other three are risk band boundaries.
type Thresholds struct {
	RegressionFloorF float64
	ModerateF        float64
	HighF            float64
	ExtremeF         float64
}

// DefaultThresholds returns the NWS heat-index risk bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RegressionFloorF: DefaultRegressionFloorF,
		ModerateF:        90,
		HighF:            104,
		ExtremeF:         125,
	}
}

// Validate checks that the thresholds strictly ascend.
func (t Thresholds) Validate() error {
	vals := []struct {
		name string
		v    float64
	}{
		{"regression_floor_f", t.RegressionFloorF},
		{"moderate_f", t.ModerateF},
		{"high_f", t.HighF},
		{"extreme_f", t.ExtremeF},
	}
	for i, cur := range vals {
		if math.IsNaN(cur.v) || math.IsInf(cur.v, 0) {
			return &ConfigurationError{Key: "thresholds." + cur.name, Reason: "must be finite"}
		}
		if i > 0 && cur.v <= vals[i-1].v {
			return &ConfigurationError{
				Key:    "thresholds." + cur.name,
				Reason: fmt.Sprintf("%v must be greater than %s %v", cur.v, vals[i-1].name, vals[i-1].v),
			}
		}
	}
	return nil
}

// Categorize maps an adjusted heat index to its risk band.
func (t Thresholds) Categorize(heatIndexF float64) RiskCategory {
	switch {
	case heatIndexF >= t.ExtremeF:
		return RiskExtreme
	case heatIndexF >= t.HighF:
		return RiskHigh
	case heatIndexF >= t.ModerateF:
		return RiskModerate
	default:
		return RiskLow
	}
}

// UVBump is the guidance-only exposure adjustment for high-UV hours.
type UVBump struct {
	TriggerIndex float64
	MagnitudeF   float64
}

// DefaultUVBump adds 3°F at UV index 8 and above.
func DefaultUVBump() UVBump {
	return UVBump{TriggerIndex: 8, MagnitudeF: 3}
}

// Normalizer computes heat index and risk for each forecast hour.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	thresholds Thresholds
	uv         UVBump
}

// NewNormalizer validates the configuration and returns a Normalizer.
func NewNormalizer(thresholds Thresholds, uv UVBump) (*Normalizer, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if uv.TriggerIndex < 0 || math.IsNaN(uv.TriggerIndex) {
		return nil, &ConfigurationError{Key: "uv_bump.trigger_index", Reason: "must be >= 0"}
	}
	if uv.MagnitudeF < 0 || math.IsNaN(uv.MagnitudeF) {
		return nil, &ConfigurationError{Key: "uv_bump.magnitude_f", Reason: "must be >= 0"}
	}
	return &Normalizer{thresholds: thresholds, uv: uv}, nil
}

// Normalize validates every reading, then evaluates them in order. Any
// invalid reading rejects the whole batch. An empty input yields an empty
// output.
func (n *Normalizer) Normalize(readings []HourlyReading) ([]EvaluatedHour, error) {
	for i, r := range readings {
		if err := validateReading(i, r); err != nil {
			return nil, err
		}
		if i > 0 && !r.Timestamp.After(readings[i-1].Timestamp) {
			return nil, &InvalidReadingError{
				Index:  i,
				Field:  "timestamp",
				Value:  float64(r.Timestamp.Unix()),
				Reason: "must be after the previous hour",
			}
		}
	}

	out := make([]EvaluatedHour, len(readings))
	for i, r := range readings {
		out[i] = n.Evaluate(r)
	}
	return out, nil
}

// Evaluate computes a single hour without validating it.
func (n *Normalizer) Evaluate(r HourlyReading) EvaluatedHour {
	met := HeatIndexF(r.TemperatureF, r.RelativeHumidityPct, n.thresholds.RegressionFloorF)
	h := EvaluatedHour{
		HourlyReading:            r,
		MeteorologicalHeatIndexF: met,
		HeatIndexF:               met,
	}
	if r.UVIndex >= n.uv.TriggerIndex && n.uv.MagnitudeF > 0 {
		h.UVBumpF = n.uv.MagnitudeF
		h.UVAdjusted = true
		h.HeatIndexF = met + n.uv.MagnitudeF
	}
	h.Risk = n.thresholds.Categorize(h.HeatIndexF)
	return h
}

func validateReading(i int, r HourlyReading) error {
	switch {
	case r.Timestamp.IsZero():
		return &InvalidReadingError{Index: i, Field: "timestamp", Missing: true, Reason: "is required"}
	case !isFinite(r.TemperatureF) || r.TemperatureF < MinTemperatureF || r.TemperatureF > MaxTemperatureF:
		return &InvalidReadingError{Index: i, Field: "temperature_f", Value: r.TemperatureF,
			Reason: fmt.Sprintf("outside [%v, %v]", MinTemperatureF, MaxTemperatureF)}
	case !isFinite(r.RelativeHumidityPct) || r.RelativeHumidityPct < MinHumidityPct || r.RelativeHumidityPct > MaxHumidityPct:
		return &InvalidReadingError{Index: i, Field: "relative_humidity_pct", Value: r.RelativeHumidityPct,
			Reason: fmt.Sprintf("outside [%v, %v]", MinHumidityPct, MaxHumidityPct)}
	case !isFinite(r.UVIndex) || r.UVIndex < 0:
		return &InvalidReadingError{Index: i, Field: "uv_index", Value: r.UVIndex, Reason: "must be >= 0"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
