package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
)

func coldFrame() logic.Frame {
	return logic.Frame{
		Tick:    100,
		Mood:    logic.MoodCold,
		Duties:  [logic.NumChannels]uint16{20000, 0, 0, 0, 0, 0, 3096, 0, 64535},
		Sampled: true,
		Reading: logic.Reading{Raw: 912, Tenths: 103, Celsius: 10},
		Changed: true,
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Variant: "expressive", Params: logic.ExpressiveParams(), HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Variant != "expressive" {
		t.Errorf("Config.Variant: got %q, want expressive", snap.Config.Variant)
	}
	if snap.HasReading {
		t.Error("expected HasReading=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(coldFrame())
	tr.Update(logic.Frame{Tick: 101, Mood: logic.MoodCold})

	snap := tr.Snapshot()
	if snap.Mood != logic.MoodCold {
		t.Errorf("Mood: got %q, want COLD", snap.Mood)
	}
	if snap.Tick != 101 {
		t.Errorf("Tick: got %d, want 101", snap.Tick)
	}
	if !snap.HasReading || snap.Reading.Celsius != 10 {
		t.Errorf("Reading: got %+v (has=%v), want 10°C", snap.Reading, snap.HasReading)
	}
	if snap.Counts.Iterations != 2 {
		t.Errorf("Counts.Iterations: got %d, want 2", snap.Counts.Iterations)
	}
	if snap.Counts.Samples != 1 || snap.Counts.ColdSamples != 1 || snap.Counts.WarmSamples != 0 {
		t.Errorf("sample counts: got %+v", snap.Counts)
	}
	if snap.Counts.MoodChanges != 1 {
		t.Errorf("Counts.MoodChanges: got %d, want 1", snap.Counts.MoodChanges)
	}
}

func TestUpdateRecordsSampleTime(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return at }

	tr.Update(coldFrame())

	if got := tr.Snapshot().LastSampleAt; !got.Equal(at) {
		t.Errorf("LastSampleAt: got %v, want %v", got, at)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(coldFrame())

	snap1 := tr.Snapshot()

	tr.Update(logic.Frame{Tick: 200, Mood: logic.MoodWarm, Sampled: true, Changed: true})

	if snap1.Mood != logic.MoodCold {
		t.Error("snapshot should be a copy; Mood was modified")
	}
	if snap1.Duties[logic.HeartBlue] != 64535 {
		t.Error("snapshot should be a copy; Duties were modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Tick:          100,
		Mood:          logic.MoodCold,
		Reading:       logic.Reading{Raw: 912, Tenths: 103, Celsius: 10},
		HasReading:    true,
		LastSampleAt:  start.Add(10 * time.Minute),
		Duties:        coldFrame().Duties,
		Counts:        Counts{Iterations: 9000, Samples: 90, MoodChanges: 1, ColdSamples: 90},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Variant: "expressive", Params: logic.ExpressiveParams(), Broker: "tcp://localhost:1883", HTTPAddr: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Mood != "COLD" {
		t.Errorf("Mood: got %q, want COLD", s.Mood)
	}
	if s.Temperature == nil {
		t.Fatal("expected temperature")
	}
	if s.Temperature.Celsius != 10 || s.Temperature.Raw != 912 || s.Temperature.Precise != 10.3 {
		t.Errorf("Temperature: got %+v", *s.Temperature)
	}
	if s.Outputs["heart_blue"] != 64535 || s.Outputs["right_red"] != 0 {
		t.Errorf("Outputs: got %v", s.Outputs)
	}
	if len(s.Outputs) != logic.NumChannels {
		t.Errorf("Outputs: got %d channels, want %d", len(s.Outputs), logic.NumChannels)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if s.Counts.Samples != 90 {
		t.Errorf("Counts.Samples: got %d, want 90", s.Counts.Samples)
	}
	if s.Config.ColdDelayMs != 200 || !s.Config.SuppressEyeWhenCold {
		t.Errorf("Config: got %+v", s.Config)
	}
	// Event and Reason should be omitted
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected empty Event/Reason for web format, got %q/%q", s.Event, s.Reason)
	}
}

func TestFormatJSONBeforeFirstFrame(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Mood != "UNKNOWN" {
		t.Errorf("Mood: got %q, want UNKNOWN", parsed.Status.Mood)
	}
	if parsed.Status.Temperature != nil {
		t.Errorf("Temperature: expected omitted, got %+v", parsed.Status.Temperature)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Mood:      logic.MoodWarm,
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.Mood != "WARM" {
		t.Errorf("Mood: got %q, want WARM", parsed.Status.Mood)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.Frame{Tick: logic.Tick(i), Mood: logic.MoodWarm, Sampled: i%100 == 0})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = FormatJSON(tr.Snapshot())
		}
	}()

	wg.Wait()
}
