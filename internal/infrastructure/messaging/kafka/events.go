package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Event types.
const (
	EventZoneReportGenerated = "ZoneReportGenerated"
	SourceService            = "continuity-map"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ZoneReportGenerated is emitted after every successful report build.  It
// carries counts and facility names only, never employee data.
type ZoneReportGenerated struct {
	SessionID          string    `json:"session_id"`
	ReportID           string    `json:"report_id"`
	ZoneKind           string    `json:"zone_kind"`
	AffectedEmployees  int       `json:"affected_employees"`
	AffectedFacilities int       `json:"affected_facilities"`
	FacilityNames      []string  `json:"facility_names"`
	GeneratedAt        time.Time `json:"generated_at"`
}

func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(e.Payload, target)
}

// ToMessage encodes the envelope for topic, keyed by key.
func (e *EventEnvelope) ToMessage(topic string, key string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// ReportPublisher emits ZoneReportGenerated events keyed by session, so one
// session's reports stay ordered within a partition.
type ReportPublisher struct {
	producer *Producer
	topic    string
	logger   logging.Logger
}

func NewReportPublisher(producer *Producer, topic string, logger logging.Logger) *ReportPublisher {
	return &ReportPublisher{producer: producer, topic: topic, logger: logger}
}

// PublishZoneReport publishes ev.
func (p *ReportPublisher) PublishZoneReport(ctx context.Context, ev ZoneReportGenerated) error {
	env, err := NewEventEnvelope(EventZoneReportGenerated, SourceService, ev)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic, ev.SessionID)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.logger.Warn("zone report event not published",
			logging.SessionID(ev.SessionID), logging.ReportID(ev.ReportID), logging.Err(err))
		return err
	}
	return nil
}

// Close closes the underlying producer.
func (p *ReportPublisher) Close() error {
	return p.producer.Close()
}

//Personal.AI order the ending
