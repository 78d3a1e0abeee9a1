package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSessionMinutes is used when a request does not set a session length.
	DefaultSessionMinutes = 90
	// MaxSessionMinutes caps the hydration timeline at twelve hours.
	MaxSessionMinutes = 720
)

// Engine runs the normalizer and planner and stamps bulletin metadata.
type Engine struct {
	normalizer     *Normalizer
	planner        *Planner
	sessionMinutes int
}

// NewEngine composes the two stages. defaultSessionMinutes applies to
// requests with no session length; pass 0 for DefaultSessionMinutes.
func NewEngine(n *Normalizer, p *Planner, defaultSessionMinutes int) *Engine {
	if defaultSessionMinutes <= 0 {
		defaultSessionMinutes = DefaultSessionMinutes
	}
	return &Engine{normalizer: n, planner: p, sessionMinutes: defaultSessionMinutes}
}

// Generate validates, evaluates, and plans a forecast.
func (e *Engine) Generate(req ForecastRequest) (Bulletin, error) {
	session := req.SessionMinutes
	if session < 0 || session > MaxSessionMinutes {
		return Bulletin{}, invalidRequestf("session_minutes %d outside [0, %d]", session, MaxSessionMinutes)
	}
	if session == 0 {
		session = e.sessionMinutes
	}

	hours, err := e.normalizer.Normalize(req.Hours)
	if err != nil {
		return Bulletin{}, err
	}
	b, err := e.planner.Plan(hours, req.Role)
	if err != nil {
		return Bulletin{}, err
	}

	b.ID = generateID(req.Location, req.Role, session, req.Hours)
	b.Location = req.Location
	b.SessionMinutes = session
	b.Hydration = HydrationTimeline(b.Schedule, session)
	b.GeneratedAt = clock.Now().UTC()
	return b, nil
}

// generateID hashes the location, role, session length and every reading,
// so a replayed forecast maps to the same bulletin and any change to the
// inputs yields a new one.
func generateID(location string, role Role, session int, hours []HourlyReading) string {
	parts := make([]string, 0, len(hours)+3)
	parts = append(parts, strings.ToLower(strings.TrimSpace(location)), role.Key(), strconv.Itoa(session))
	for _, h := range hours {
		parts = append(parts, strings.Join([]string{
			h.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(h.TemperatureF, 'g', -1, 64),
			strconv.FormatFloat(h.RelativeHumidityPct, 'g', -1, 64),
			strconv.FormatFloat(h.UVIndex, 'g', -1, 64),
		}, ","))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "bulletin-" + hex.EncodeToString(sum[:8])
}
