package config

import (
	"github.com/couchcryptid/heatguard-service/internal/domain"
)

// BuildEngine assembles the normalizer, planner and engine from the heat
// model settings. A bad schedule table or threshold set surfaces as a
// *domain.ConfigurationError.
func (c *Config) BuildEngine() (*domain.Engine, error) {
	table, err := LoadScheduleTable(c.ScheduleTablePath)
	if err != nil {
		return nil, err
	}
	n, err := domain.NewNormalizer(c.Thresholds, c.UVBump)
	if err != nil {
		return nil, err
	}
	p, err := domain.NewPlanner(table, c.SafeCeiling)
	if err != nil {
		return nil, err
	}
	return domain.NewEngine(n, p, c.DefaultSessionMinutes), nil
}
