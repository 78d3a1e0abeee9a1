package domain

import (
	"fmt"
	"strings"
	"time"
)

// RiskCategory is a heat-risk severity bucket. Values are ordered by severity.
type RiskCategory int

const (
	RiskLow RiskCategory = iota
	RiskModerate
	RiskHigh
	RiskExtreme
)

// AllRiskCategories lists every category in ascending severity.
var AllRiskCategories = []RiskCategory{RiskLow, RiskModerate, RiskHigh, RiskExtreme}

var riskKeys = map[RiskCategory]string{
	RiskLow:      "low",
	RiskModerate: "moderate",
	RiskHigh:     "high",
	RiskExtreme:  "extreme",
}

var riskLabels = map[RiskCategory]string{
	RiskLow:      "Low",
	RiskModerate: "Moderate",
	RiskHigh:     "High",
	RiskExtreme:  "Extreme",
}

func (r RiskCategory) String() string {
	if s, ok := riskLabels[r]; ok {
		return s
	}
	return fmt.Sprintf("RiskCategory(%d)", int(r))
}

// Key returns the lowercase identifier used in JSON, YAML, and env config.
func (r RiskCategory) Key() string {
	return riskKeys[r]
}

// Valid reports whether r is one of the four defined categories.
func (r RiskCategory) Valid() bool {
	_, ok := riskKeys[r]
	return ok
}

// ParseRiskCategory parses a category name case-insensitively.
func ParseRiskCategory(s string) (RiskCategory, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, r := range AllRiskCategories {
		if riskKeys[r] == needle {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown risk category %q", s)
}

func (r RiskCategory) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown risk category %d", int(r))
	}
	return []byte(r.Key()), nil
}

func (r *RiskCategory) UnmarshalText(b []byte) error {
	v, err := ParseRiskCategory(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Role is the persona a bulletin is planned for.
type Role int

const (
	RoleOutdoorWorker Role = iota
	RoleStudent
	RoleCourier
	RoleElderly
)

// AllRoles lists every role a schedule table must cover.
var AllRoles = []Role{RoleOutdoorWorker, RoleStudent, RoleCourier, RoleElderly}

var roleKeys = map[Role]string{
	RoleOutdoorWorker: "outdoor_worker",
	RoleStudent:       "student",
	RoleCourier:       "courier",
	RoleElderly:       "elderly",
}

var roleLabels = map[Role]string{
	RoleOutdoorWorker: "Outdoor worker",
	RoleStudent:       "Student athlete",
	RoleCourier:       "Delivery / courier",
	RoleElderly:       "Elderly outdoors",
}

var roleAliases = map[string]Role{
	"outdoor_worker":  RoleOutdoorWorker,
	"outdoor-worker":  RoleOutdoorWorker,
	"worker":          RoleOutdoorWorker,
	"construction":    RoleOutdoorWorker,
	"student":         RoleStudent,
	"student_athlete": RoleStudent,
	"athlete":         RoleStudent,
	"courier":         RoleCourier,
	"delivery":        RoleCourier,
	"elderly":         RoleElderly,
}

func (r Role) String() string {
	if s, ok := roleLabels[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Key returns the lowercase identifier used in JSON, YAML, and env config.
func (r Role) Key() string {
	return roleKeys[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleKeys[r]
	return ok
}

// ParseRole parses a role name or alias case-insensitively.
func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return 0, invalidRequestf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown role %d", int(r))
	}
	return []byte(r.Key()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// HourlyReading is one forecast hour as supplied by the weather provider.
type HourlyReading struct {
	Timestamp           time.Time `json:"timestamp"`
	TemperatureF        float64   `json:"temperature_f"`
	RelativeHumidityPct float64   `json:"relative_humidity_pct"`
	UVIndex             float64   `json:"uv_index"`
}

// EvaluatedHour is a reading with its heat index and risk category.
// HeatIndexF includes UVBumpF; MeteorologicalHeatIndexF does not.
type EvaluatedHour struct {
	HourlyReading
	MeteorologicalHeatIndexF float64      `json:"meteorological_heat_index_f"`
	UVBumpF                  float64      `json:"uv_bump_f"`
	UVAdjusted               bool         `json:"uv_adjusted"`
	HeatIndexF               float64      `json:"heat_index_f"`
	Risk                     RiskCategory `json:"risk_category"`
}

// SafeWindow is a maximal run of consecutive hours at or below the safe ceiling.
// StartIndex and EndIndex are inclusive positions in Bulletin.Hours.
type SafeWindow struct {
	StartIndex     int          `json:"start_index"`
	EndIndex       int          `json:"end_index"`
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end"`
	PeakHeatIndexF float64      `json:"peak_heat_index_f"`
	MaxRisk        RiskCategory `json:"max_risk"`
}

// Hours returns the number of forecast hours in the window.
func (w SafeWindow) Hours() int {
	return w.EndIndex - w.StartIndex + 1
}

// RoleSchedule is the work/rest and hydration guidance for one role at one risk level.
type RoleSchedule struct {
	WorkMinutes              int     `json:"work_minutes" yaml:"work_minutes"`
	RestMinutes              int     `json:"rest_minutes" yaml:"rest_minutes"`
	HydrationIntervalMinutes int     `json:"hydration_interval_minutes" yaml:"hydration_interval_minutes"`
	HydrationVolumeOz        float64 `json:"hydration_volume_oz" yaml:"hydration_volume_oz"`
	Note                     string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// HydrationReminder is a drink prompt relative to session start.
type HydrationReminder struct {
	AtMinute int     `json:"at_minute"`
	VolumeOz float64 `json:"volume_oz"`
}

// Bulletin is the complete output for one forecast and role.
type Bulletin struct {
	ID              string              `json:"id"`
	Location        string              `json:"location,omitempty"`
	Role            Role                `json:"role"`
	Hours           []EvaluatedHour     `json:"hours"`
	Windows         []SafeWindow        `json:"windows"`
	PeakRisk        RiskCategory        `json:"peak_risk"`
	PeakHour        EvaluatedHour       `json:"peak_hour"`
	SafeCeiling     RiskCategory        `json:"safe_ceiling"`
	Schedule        RoleSchedule        `json:"schedule"`
	Hydration       []HydrationReminder `json:"hydration"`
	SessionMinutes  int                 `json:"session_minutes"`
	UVAdjustedHours int                 `json:"uv_adjusted_hours"`
	Summary         string              `json:"summary"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// ForecastRequest is everything the Engine needs to build a bulletin.
type ForecastRequest struct {
	Location       string
	Role           Role
	SessionMinutes int
	Hours          []HourlyReading
}
