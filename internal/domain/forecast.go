package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultHorizonHours is how many leading hours of a forecast are planned.
const DefaultHorizonHours = 24

// ForecastDocument is a decoded forecast in the native shape.
type ForecastDocument struct {
	Location       string          `json:"location,omitempty"`
	Role           string          `json:"role,omitempty"`
	SessionMinutes int             `json:"session_minutes,omitempty"`
	Hours          []HourlyReading `json:"hours"`
}

// forecastWire accepts either document shape. Exactly one of Hours or
// Hourly is expected; Hours wins if both are present.
type forecastWire struct {
	Location       string `json:"location"`
	Role           string `json:"role"`
	SessionMinutes int    `json:"session_minutes"`

	Hours []nativeHour `json:"hours"`

	// Provider hourly shape.
	TimezoneOffset int            `json:"timezone_offset"`
	Hourly         []providerHour `json:"hourly"`
}

// Pointer fields distinguish an absent value from a real zero. A missing
// UV index reads as 0.
type nativeHour struct {
	Timestamp           *time.Time `json:"timestamp"`
	TemperatureF        *float64   `json:"temperature_f"`
	RelativeHumidityPct *float64   `json:"relative_humidity_pct"`
	UVIndex             float64    `json:"uv_index"`
}

type providerHour struct {
	DT       *int64   `json:"dt"`
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
	UVI      float64  `json:"uvi"`
}

// ParseForecast decodes a forecast document in either the native or the
// provider hourly shape. An hour missing its timestamp, temperature or
// humidity fails with an *InvalidReadingError naming the hour and field.
func ParseForecast(data []byte) (ForecastDocument, error) {
	var w forecastWire
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return ForecastDocument{}, fmt.Errorf("%w: parse forecast: %v", ErrInvalidRequest, err)
	}
	if w.Hours == nil && w.Hourly == nil {
		return ForecastDocument{}, invalidRequestf("forecast has neither hours nor hourly")
	}

	doc := ForecastDocument{
		Location:       w.Location,
		Role:           w.Role,
		SessionMinutes: w.SessionMinutes,
	}
	var err error
	if w.Hours != nil {
		doc.Hours, err = nativeReadings(w.Hours)
	} else {
		doc.Hours, err = providerReadings(w.Hourly, w.TimezoneOffset)
	}
	if err != nil {
		return ForecastDocument{}, err
	}
	return doc, nil
}

func nativeReadings(hours []nativeHour) ([]HourlyReading, error) {
	out := make([]HourlyReading, len(hours))
	for i, h := range hours {
		switch {
		case h.Timestamp == nil:
			return nil, missingField(i, "timestamp")
		case h.TemperatureF == nil:
			return nil, missingField(i, "temperature_f")
		case h.RelativeHumidityPct == nil:
			return nil, missingField(i, "relative_humidity_pct")
		}
		out[i] = HourlyReading{
			Timestamp:           *h.Timestamp,
			TemperatureF:        *h.TemperatureF,
			RelativeHumidityPct: *h.RelativeHumidityPct,
			UVIndex:             h.UVIndex,
		}
	}
	return out, nil
}

func providerReadings(hours []providerHour, offset int) ([]HourlyReading, error) {
	loc := time.UTC
	if offset != 0 {
		loc = time.FixedZone(zoneName(offset), offset)
	}
	out := make([]HourlyReading, len(hours))
	for i, h := range hours {
		switch {
		case h.DT == nil:
			return nil, missingField(i, "dt")
		case h.Temp == nil:
			return nil, missingField(i, "temp")
		case h.Humidity == nil:
			return nil, missingField(i, "humidity")
		}
		out[i] = HourlyReading{
			Timestamp:           time.Unix(*h.DT, 0).In(loc),
			TemperatureF:        *h.Temp,
			RelativeHumidityPct: *h.Humidity,
			UVIndex:             h.UVI,
		}
	}
	return out, nil
}

func missingField(i int, field string) error {
	return &InvalidReadingError{Index: i, Field: field, Missing: true, Reason: "is required"}
}

// zoneName formats a UTC offset in seconds as "UTC±hh:mm".
func zoneName(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, offset%3600/60)
}

// Request converts the document into an engine request. fallbackRole
// applies when the document does not name one. Only the first horizon
// hours are kept.
func (d ForecastDocument) Request(fallbackRole Role, horizon int) (ForecastRequest, error) {
	role := fallbackRole
	if d.Role != "" {
		r, err := ParseRole(d.Role)
		if err != nil {
			return ForecastRequest{}, err
		}
		role = r
	}
	hours := d.Hours
	if horizon > 0 && len(hours) > horizon {
		hours = hours[:horizon]
	}
	return ForecastRequest{
		Location:       d.Location,
		Role:           role,
		SessionMinutes: d.SessionMinutes,
		Hours:          hours,
	}, nil
}
