// Package status provides a thread-safe status tracker for the alpaca-heart daemon.
// The control loop writes it; HTTP handlers and MQTT reports read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Variant          string
	Params           logic.Params
	Broker           string
	HTTPAddr         string
	StatusIntervalMs int64
}

// Counts tracks loop activity since startup.
type Counts struct {
	Iterations  uint64
	Samples     uint64
	MoodChanges uint64
	ColdSamples uint64
	WarmSamples uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Tick          logic.Tick
	Mood          logic.Mood
	Reading       logic.Reading
	HasReading    bool
	LastSampleAt  time.Time
	Duties        [logic.NumChannels]uint16
	Pulse         logic.PulseState
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records one loop frame.
// Called from the control loop on every iteration.
func (t *Tracker) Update(f logic.Frame) {
	now := t.now()
	t.mu.Lock()
	t.snap.Tick = f.Tick
	t.snap.Mood = f.Mood
	t.snap.Duties = f.Duties
	t.snap.Pulse = f.Pulse
	t.snap.Counts.Iterations++
	if f.Sampled {
		t.snap.Reading = f.Reading
		t.snap.HasReading = true
		t.snap.LastSampleAt = now
		t.snap.Counts.Samples++
		if f.Mood == logic.MoodCold {
			t.snap.Counts.ColdSamples++
		} else {
			t.snap.Counts.WarmSamples++
		}
	}
	if f.Changed {
		t.snap.Counts.MoodChanges++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
