package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const cloudEventsSpecVersion = "1.0"

// CloudEvent is the JSON envelope every event on the bus is wrapped in.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps data in a CloudEvent envelope.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return CloudEvent{
		SpecVersion:     cloudEventsSpecVersion,
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            payload,
	}, nil
}

// WithSubject returns a copy of the event with the subject set. The subject
// doubles as the Kafka message key.
func (e CloudEvent) WithSubject(subject string) CloudEvent {
	e.Subject = subject
	return e
}

// ParseCloudEvent decodes a raw message value into a CloudEvent.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to decode cloud event: %w", err)
	}
	if ce.Type == "" {
		return CloudEvent{}, errors.New("cloud event has no type")
	}
	return ce, nil
}

// ParseData decodes the event payload into v.
func (e CloudEvent) ParseData(v interface{}) error {
	if len(e.Data) == 0 {
		return errors.New("cloud event has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", e.Type, err)
	}
	return nil
}
