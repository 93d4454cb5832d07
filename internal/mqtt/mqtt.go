// Package mqtt publishes outbound telemetry with abstraction for testing.
// Nothing is ever subscribed: the light show does not take commands.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
)

// TopicMood is the MQTT topic for mood changes.
const TopicMood = "lights/alpaca/mood"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "lights/alpaca/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishMood sends a mood change to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishMood(event MoodEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// MoodEvent is a mood transition observed right after a temperature sample.
type MoodEvent struct {
	Timestamp time.Time
	Tick      logic.Tick
	Mood      logic.Mood
	Previous  logic.Mood
	Reading   logic.Reading
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, status).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "STATUS", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT", "FATAL" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a mood change.
type Payload struct {
	Mood MoodPayload `json:"mood"`
}

// MoodPayload contains the mood change details.
type MoodPayload struct {
	Timestamp string  `json:"timestamp"`
	State     string  `json:"state"`
	Previous  string  `json:"previous"`
	Celsius   int     `json:"celsius"`
	Precise   float64 `json:"celsius_precise"`
	Raw       uint16  `json:"raw"`
	Tick      int     `json:"tick"`
}

// FormatPayload creates the JSON payload for a mood change.
func FormatPayload(event MoodEvent) ([]byte, error) {
	payload := Payload{
		Mood: MoodPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			State:     string(event.Mood),
			Previous:  string(event.Previous),
			Celsius:   event.Reading.Celsius,
			Precise:   float64(event.Reading.Tenths) / 10,
			Raw:       event.Reading.Raw,
			Tick:      int(event.Tick),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is registered with the broker as the last will, published if
// the connection drops without a clean disconnect.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "CONNECTION_LOST"}})
	return data
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishMood(MoodEvent) error     { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
