package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/couchcryptid/heatguard-service/internal/observability"
)

// BulletinTransformer implements Transformer with the domain engine.
type BulletinTransformer struct {
	engine      *domain.Engine
	defaultRole domain.Role
	horizon     int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewTransformer creates a BulletinTransformer. defaultRole applies to
// forecasts that name no role; horizon caps the planned hours.
func NewTransformer(engine *domain.Engine, defaultRole domain.Role, horizon int, logger *slog.Logger, metrics *observability.Metrics) *BulletinTransformer {
	return &BulletinTransformer{
		engine:      engine,
		defaultRole: defaultRole,
		horizon:     horizon,
		logger:      logger,
		metrics:     metrics,
	}
}

func (t *BulletinTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	b, err := t.Build(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	return domain.SerializeBulletin(b)
}

// Build parses and plans a forecast message, recording outcome metrics.
func (t *BulletinTransformer) Build(raw domain.RawEvent) (domain.Bulletin, error) {
	doc, err := domain.ParseRawEvent(raw)
	if err != nil {
		t.reject(err)
		return domain.Bulletin{}, err
	}
	req, err := doc.Request(t.defaultRole, t.horizon)
	if err != nil {
		t.reject(err)
		return domain.Bulletin{}, err
	}
	b, err := t.engine.Generate(req)
	if err != nil {
		t.reject(err)
		return domain.Bulletin{}, err
	}

	RecordBulletin(t.metrics, "pipeline", b)
	t.logger.Debug("bulletin generated",
		"bulletin_id", b.ID,
		"location", b.Location,
		"peak_risk", b.PeakRisk.Key(),
		"windows", len(b.Windows),
	)
	return b, nil
}

func (t *BulletinTransformer) reject(err error) {
	t.metrics.RejectedForecasts.WithLabelValues(RejectReason(err)).Inc()
}

// RejectReason maps an engine error to a metric label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidReading):
		return "invalid_reading"
	case errors.Is(err, domain.ErrEmptyForecast):
		return "empty_forecast"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "other"
	}
}

// RecordBulletin updates the generation metrics for a bulletin.
func RecordBulletin(m *observability.Metrics, source string, b domain.Bulletin) {
	m.BulletinsGenerated.WithLabelValues(source, b.PeakRisk.Key()).Inc()
	m.UVAdjustedHours.Add(float64(b.UVAdjustedHours))
}
