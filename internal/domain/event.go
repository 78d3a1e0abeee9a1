package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key      []byte
	Value    []byte
	Headers  map[string]string
	Bulletin Bulletin
}

// Message header keys.
const (
	HeaderBulletinID  = "bulletin_id"
	HeaderPeakRisk    = "peak_risk"
	HeaderRole        = "role"
	HeaderGeneratedAt = "generated_at"
)

// ParseRawEvent decodes a forecast message. A "role" header overrides the
// document's role.
func ParseRawEvent(raw RawEvent) (ForecastDocument, error) {
	doc, err := ParseForecast(raw.Value)
	if err != nil {
		return ForecastDocument{}, fmt.Errorf("parse raw event: %w", err)
	}
	if r := raw.Headers[HeaderRole]; r != "" {
		doc.Role = r
	}
	if doc.Location == "" && len(raw.Key) > 0 {
		doc.Location = string(raw.Key)
	}
	return doc, nil
}

// SerializeBulletin marshals a bulletin for the sink topic.
func SerializeBulletin(b Bulletin) (OutputEvent, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize bulletin: %w", err)
	}
	return OutputEvent{
		Key:   []byte(b.ID),
		Value: data,
		Headers: map[string]string{
			HeaderBulletinID:  b.ID,
			HeaderPeakRisk:    b.PeakRisk.Key(),
			HeaderRole:        b.Role.Key(),
			HeaderGeneratedAt: b.GeneratedAt.Format(time.RFC3339),
		},
		Bulletin: b,
	}, nil
}
