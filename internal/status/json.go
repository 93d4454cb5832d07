package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Mood          string            `json:"mood"`
	Temperature   *TemperatureJSON  `json:"temperature,omitempty"`
	Tick          int               `json:"tick"`
	Outputs       map[string]uint16 `json:"outputs"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Counts        CountsJSON        `json:"counts"`
	Network       *NetworkJSON      `json:"network,omitempty"`
	Config        ConfigJSON        `json:"config"`
}

// TemperatureJSON is the latest sensor reading.
type TemperatureJSON struct {
	Raw       uint16  `json:"raw"`
	Celsius   int     `json:"celsius"`
	Precise   float64 `json:"celsius_precise"`
	SampledAt string  `json:"sampled_at"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of loop counters.
type CountsJSON struct {
	Iterations  uint64 `json:"iterations"`
	Samples     uint64 `json:"samples"`
	MoodChanges uint64 `json:"mood_changes"`
	ColdSamples uint64 `json:"cold_samples"`
	WarmSamples uint64 `json:"warm_samples"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Variant             string `json:"variant"`
	ColdThreshold       int    `json:"cold_threshold"`
	SamplingPeriod      uint16 `json:"sampling_period"`
	TriggerPeriod       uint16 `json:"trigger_period"`
	WarmDelayMs         int64  `json:"warm_delay_ms"`
	ColdDelayMs         int64  `json:"cold_delay_ms"`
	SuppressEyeWhenCold bool   `json:"suppress_eye_when_cold"`
	Broker              string `json:"broker"`
	HTTPAddr            string `json:"http_addr"`
	StatusIntervalMs    int64  `json:"status_interval_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	mood := string(snap.Mood)
	if mood == "" {
		mood = "UNKNOWN"
	}

	outputs := make(map[string]uint16, logic.NumChannels)
	for _, ch := range logic.Channels() {
		outputs[ch.String()] = snap.Duties[ch]
	}

	p := snap.Config.Params
	inner := StatusInner{
		Mood:          mood,
		Tick:          int(snap.Tick),
		Outputs:       outputs,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Iterations:  snap.Counts.Iterations,
			Samples:     snap.Counts.Samples,
			MoodChanges: snap.Counts.MoodChanges,
			ColdSamples: snap.Counts.ColdSamples,
			WarmSamples: snap.Counts.WarmSamples,
		},
		Config: ConfigJSON{
			Variant:             snap.Config.Variant,
			ColdThreshold:       p.ColdThreshold,
			SamplingPeriod:      p.SamplingPeriod,
			TriggerPeriod:       p.TriggerPeriod,
			WarmDelayMs:         p.WarmDelay.Milliseconds(),
			ColdDelayMs:         p.ColdDelay.Milliseconds(),
			SuppressEyeWhenCold: p.SuppressEyeWhenCold,
			Broker:              snap.Config.Broker,
			HTTPAddr:            snap.Config.HTTPAddr,
			StatusIntervalMs:    snap.Config.StatusIntervalMs,
		},
	}

	if snap.HasReading {
		inner.Temperature = &TemperatureJSON{
			Raw:       snap.Reading.Raw,
			Celsius:   snap.Reading.Celsius,
			Precise:   float64(snap.Reading.Tenths) / 10,
			SampledAt: snap.LastSampleAt.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
