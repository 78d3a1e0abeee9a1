package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// GenmockCmd writes a deterministic diurnal forecast fixture in the native
// document shape. Temperature peaks at 15:00 local time and humidity moves
// inversely to it; UV follows the daylight arc between 06:00 and 20:00.
type GenmockCmd struct {
	Out         string    `help:"Write to this file instead of stdout." type:"path"`
	BulletinOut string    `help:"Also write the bulletin planned from the fixture, stamped with a fixed generation time." name:"bulletin-out" type:"path"`
	Start       time.Time `help:"First hour (RFC 3339). Its offset sets the local day." default:"2025-07-14T00:00:00-07:00"`
	Hours       int       `help:"Number of hourly readings." default:"24"`
	PeakF       float64   `help:"Afternoon peak temperature (°F)." name:"peak-f" default:"108"`
	LowF        float64   `help:"Pre-dawn low temperature (°F)." name:"low-f" default:"82"`
	RHMin       float64   `help:"Relative humidity at the temperature peak (%)." name:"rh-min" default:"20"`
	RHMax       float64   `help:"Relative humidity at the temperature low (%)." name:"rh-max" default:"55"`
	UVPeak      float64   `help:"Solar-noon UV index." name:"uv-peak" default:"11"`
	Location    string    `help:"Location label." default:"Phoenix, AZ"`
	Role        string    `help:"Role named in the document." default:"outdoor_worker"`
	Session     int       `help:"Session length named in the document." default:"120"`
}

// generatedAt pins the timestamp of bulletins written with --bulletin-out.
var generatedAt = time.Date(2025, time.July, 14, 5, 0, 0, 0, time.UTC)

func (c *GenmockCmd) Run(ctx *Context) error {
	if c.Hours < 1 {
		return fmt.Errorf("--hours must be at least 1")
	}
	if c.LowF > c.PeakF {
		return fmt.Errorf("--low-f %v is above --peak-f %v", c.LowF, c.PeakF)
	}
	doc := c.Document()

	// Plan under a fixed clock so --bulletin-out is byte-for-byte reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	req, err := doc.Request(ctx.Config.DefaultRole, 0)
	if err != nil {
		return err
	}
	engine, err := ctx.Config.BuildEngine()
	if err != nil {
		return err
	}
	b, err := engine.Generate(req)
	if err != nil {
		return fmt.Errorf("generated forecast does not plan: %w", err)
	}
	ctx.Logger.Info("fixture planned",
		"hours", len(b.Hours),
		"peak_risk", b.PeakRisk.Key(),
		"peak_hour", domain.HourLabel(b.PeakHour.Timestamp),
		"windows", len(b.Windows),
		"uv_adjusted_hours", b.UVAdjustedHours,
	)

	if c.BulletinOut != "" {
		data, err := indentJSON(b)
		if err != nil {
			return fmt.Errorf("encode bulletin: %w", err)
		}
		if err := ctx.writeOutput(c.BulletinOut, data); err != nil {
			return err
		}
	}

	data, err := indentJSON(doc)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	return ctx.writeOutput(c.Out, data)
}

func indentJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Document builds the forecast described by the flags.
func (c *GenmockCmd) Document() domain.ForecastDocument {
	doc := domain.ForecastDocument{
		Location:       c.Location,
		Role:           c.Role,
		SessionMinutes: c.Session,
		Hours:          make([]domain.HourlyReading, c.Hours),
	}
	for i := range doc.Hours {
		ts := c.Start.Add(time.Duration(i) * time.Hour)
		h := float64(ts.Hour())

		// f is 1 at 15:00 and 0 at 03:00.
		f := (1 + math.Cos(2*math.Pi*(h-15)/24)) / 2
		uv := 0.0
		if h >= 6 && h <= 20 {
			uv = math.Max(0, c.UVPeak*math.Sin(math.Pi*(h-6)/14))
		}
		doc.Hours[i] = domain.HourlyReading{
			Timestamp:           ts,
			TemperatureF:        round1(c.LowF + (c.PeakF-c.LowF)*f),
			RelativeHumidityPct: round1(c.RHMax - (c.RHMax-c.RHMin)*f),
			UVIndex:             round1(uv),
		}
	}
	return doc
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
