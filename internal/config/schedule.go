package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// scheduleFile is the on-disk schedule table: role key, then risk key.
type scheduleFile struct {
	Roles map[string]map[string]domain.RoleSchedule `yaml:"roles"`
}

// LoadScheduleTable returns the built-in table when path is empty, otherwise
// it reads a YAML table from path. Either way the result covers every role
// and risk combination.
func LoadScheduleTable(path string) (*domain.ScheduleTable, error) {
	if path == "" {
		return domain.DefaultScheduleTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule table: %w", err)
	}
	return ParseScheduleTable(data)
}

// ParseScheduleTable decodes a YAML schedule table and validates it.
func ParseScheduleTable(data []byte) (*domain.ScheduleTable, error) {
	var f scheduleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, &domain.ConfigurationError{Key: "schedule_table", Reason: err.Error()}
	}

	entries := make(map[domain.ScheduleKey]domain.RoleSchedule)
	for roleKey, risks := range f.Roles {
		role, err := domain.ParseRole(roleKey)
		if err != nil {
			return nil, &domain.ConfigurationError{Key: "roles." + roleKey, Reason: "unknown role"}
		}
		for riskKey, s := range risks {
			risk, err := domain.ParseRiskCategory(riskKey)
			if err != nil {
				return nil, &domain.ConfigurationError{Key: "roles." + roleKey + "." + riskKey, Reason: "unknown risk category"}
			}
			entries[domain.ScheduleKey{Role: role, Risk: risk}] = s
		}
	}
	return domain.NewScheduleTable(entries)
}

// DumpScheduleTable encodes a table in the format ParseScheduleTable reads.
func DumpScheduleTable(t *domain.ScheduleTable) ([]byte, error) {
	f := scheduleFile{Roles: make(map[string]map[string]domain.RoleSchedule)}
	for key, s := range t.Entries() {
		risks, ok := f.Roles[key.Role.Key()]
		if !ok {
			risks = make(map[string]domain.RoleSchedule)
			f.Roles[key.Role.Key()] = risks
		}
		risks[key.Risk.Key()] = s
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode schedule table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode schedule table: %w", err)
	}
	return buf.Bytes(), nil
}
