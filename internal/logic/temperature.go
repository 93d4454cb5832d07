package logic

// Sensor calibration for the on-die temperature diode read through a
// 12-bit ADC at 3.3V reference (27°C at 0.706V, -1.721mV/°C).
const (
	adcReference  float32 = 3.3
	adcFullScale  float32 = 4096
	sensorVoltsAt float32 = 0.706
	sensorSlope   float32 = 0.001721
	sensorBaseC   float32 = 27
)

// CelsiusFloat converts a raw ADC count to degrees Celsius without rounding.
func CelsiusFloat(raw uint16) float32 {
	return sensorBaseC - (float32(raw)*adcReference/adcFullScale-sensorVoltsAt)/sensorSlope
}

// CelsiusTenths converts a raw count to tenths of a degree, rounding half
// away from zero.
func CelsiusTenths(raw uint16) int {
	c := CelsiusFloat(raw)
	half := float32(0.5)
	if c < 0 {
		half = -0.5
	}
	return int(float32(c*10) + half)
}

// Celsius converts a raw count to whole degrees: rounded to tenths, then
// truncated toward zero.
func Celsius(raw uint16) int {
	return CelsiusTenths(raw) / 10
}

// ClassifyMood maps a temperature to a mood. The threshold itself is warm.
// There is deliberately no deadband: a reading hovering at the threshold can
// flip the mood on every sample.
func ClassifyMood(celsius, threshold int) Mood {
	if celsius < threshold {
		return MoodCold
	}
	return MoodWarm
}

// MoodMonitor decides when to sample the temperature and holds the mood
// between samples.
type MoodMonitor struct {
	period    uint32
	threshold int
	mood      Mood
	last      Reading
	sampled   bool
}

// NewMoodMonitor creates a monitor that starts out warm.
func NewMoodMonitor(p Params) *MoodMonitor {
	return &MoodMonitor{
		period:    uint32(p.SamplingPeriod),
		threshold: p.ColdThreshold,
		mood:      MoodWarm,
	}
}

// Due reports whether a sample must be taken on this tick.
func (m *MoodMonitor) Due(t Tick) bool {
	return m.period != 0 && uint32(t)%m.period == 0
}

// Observe converts a raw sample, updates the mood and reports whether it changed.
func (m *MoodMonitor) Observe(raw uint16) (Reading, bool) {
	r := Reading{Raw: raw, Tenths: CelsiusTenths(raw)}
	r.Celsius = r.Tenths / 10

	prev := m.mood
	m.mood = ClassifyMood(r.Celsius, m.threshold)
	m.last = r
	m.sampled = true
	return r, m.mood != prev
}

// Mood returns the mood currently in force.
func (m *MoodMonitor) Mood() Mood {
	return m.mood
}

// Last returns the most recent reading and whether any sample has been taken.
func (m *MoodMonitor) Last() (Reading, bool) {
	return m.last, m.sampled
}
