package domain

import "fmt"

// ScheduleKey identifies one cell of the schedule table.
type ScheduleKey struct {
	Role Role
	Risk RiskCategory
}

func (k ScheduleKey) String() string {
	return k.Role.Key() + "/" + k.Risk.Key()
}

// ScheduleTable maps every (role, risk) pair to a RoleSchedule. A table can
// only be built through NewScheduleTable, which rejects missing cells.
type ScheduleTable struct {
	entries map[ScheduleKey]RoleSchedule
}

// NewScheduleTable copies entries and checks that the table covers
// AllRoles × AllRiskCategories with positive values.
func NewScheduleTable(entries map[ScheduleKey]RoleSchedule) (*ScheduleTable, error) {
	t := &ScheduleTable{entries: make(map[ScheduleKey]RoleSchedule, len(AllRoles)*len(AllRiskCategories))}
	for _, role := range AllRoles {
		for _, risk := range AllRiskCategories {
			key := ScheduleKey{Role: role, Risk: risk}
			s, ok := entries[key]
			if !ok {
				return nil, &ConfigurationError{Key: key.String(), Reason: "missing schedule entry"}
			}
			if err := validateSchedule(key, s); err != nil {
				return nil, err
			}
			t.entries[key] = s
		}
	}
	for key := range entries {
		if !key.Role.Valid() || !key.Risk.Valid() {
			return nil, &ConfigurationError{Key: fmt.Sprintf("%d/%d", key.Role, key.Risk), Reason: "unknown role or risk"}
		}
	}
	return t, nil
}

func validateSchedule(key ScheduleKey, s RoleSchedule) error {
	switch {
	case s.WorkMinutes <= 0:
		return &ConfigurationError{Key: key.String(), Reason: "work_minutes must be positive"}
	case s.RestMinutes <= 0:
		return &ConfigurationError{Key: key.String(), Reason: "rest_minutes must be positive"}
	case s.HydrationIntervalMinutes <= 0:
		return &ConfigurationError{Key: key.String(), Reason: "hydration_interval_minutes must be positive"}
	case s.HydrationVolumeOz <= 0:
		return &ConfigurationError{Key: key.String(), Reason: "hydration_volume_oz must be positive"}
	}
	return nil
}

// Lookup returns the schedule for a role at a risk level.
func (t *ScheduleTable) Lookup(role Role, risk RiskCategory) RoleSchedule {
	return t.entries[ScheduleKey{Role: role, Risk: risk}]
}

// Entries returns a copy of the table contents.
func (t *ScheduleTable) Entries() map[ScheduleKey]RoleSchedule {
	out := make(map[ScheduleKey]RoleSchedule, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// baseRule is the Low/Moderate schedule for a role.
type baseRule struct {
	work, rest int
	volumeOz   float64
	note       string
}

const defaultHydrationIntervalMinutes = 20

var baseRules = map[Role]baseRule{
	RoleStudent:       {work: 45, rest: 15, volumeOz: 8.5, note: "Light-colored gear; buddy checks."},
	RoleOutdoorWorker: {work: 40, rest: 20, volumeOz: 10.1, note: "Use shade canopies; rotate tasks."},
	RoleCourier:       {work: 50, rest: 10, volumeOz: 8.5, note: "Cold packs in bag; short stops in shade."},
	RoleElderly:       {work: 30, rest: 30, volumeOz: 6.8, note: "Frequent sips; caregiver check."},
}

// defaultSchedule shortens work and lengthens rest as risk rises.
func defaultSchedule(role Role, risk RiskCategory) RoleSchedule {
	b := baseRules[role]
	work, rest := b.work, b.rest
	switch risk {
	case RiskHigh:
		work = max(20, work-10)
		rest += 10
	case RiskExtreme:
		work = max(15, work-15)
		rest += 15
	}
	return RoleSchedule{
		WorkMinutes:              work,
		RestMinutes:              rest,
		HydrationIntervalMinutes: defaultHydrationIntervalMinutes,
		HydrationVolumeOz:        b.volumeOz,
		Note:                     b.note,
	}
}

// DefaultScheduleTable returns the built-in table.
func DefaultScheduleTable() *ScheduleTable {
	entries := make(map[ScheduleKey]RoleSchedule, len(AllRoles)*len(AllRiskCategories))
	for _, role := range AllRoles {
		for _, risk := range AllRiskCategories {
			entries[ScheduleKey{Role: role, Risk: risk}] = defaultSchedule(role, risk)
		}
	}
	t, err := NewScheduleTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// HydrationTimeline returns a reminder every interval from the first
// interval up to and including sessionMinutes.
func HydrationTimeline(s RoleSchedule, sessionMinutes int) []HydrationReminder {
	if s.HydrationIntervalMinutes <= 0 || sessionMinutes < s.HydrationIntervalMinutes {
		return nil
	}
	out := make([]HydrationReminder, 0, sessionMinutes/s.HydrationIntervalMinutes)
	for m := s.HydrationIntervalMinutes; m <= sessionMinutes; m += s.HydrationIntervalMinutes {
		out = append(out, HydrationReminder{AtMinute: m, VolumeOz: s.HydrationVolumeOz})
	}
	return out
}
