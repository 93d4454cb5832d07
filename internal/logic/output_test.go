package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testColor = ColorSample{R: 12000, G: 3000, B: 40000}
var testPulse = PulseState{Bright: 50000, Afterglow: 2000}

func TestMapOutputsWarm(t *testing.T) {
	f := MapOutputs(testColor, testPulse, MoodWarm, ExpressiveParams())

	want := [NumChannels]uint16{
		12000, 3000, 40000,
		12000, 3000, 40000,
		50000, 0, 2000,
	}
	assert.Equal(t, want, f.Duties)
	assert.Equal(t, 100*time.Millisecond, f.Delay)
	assert.Equal(t, MoodWarm, f.Mood)
}

func TestMapOutputsColdSuppressesRightEye(t *testing.T) {
	f := MapOutputs(testColor, testPulse, MoodCold, ExpressiveParams())

	want := [NumChannels]uint16{
		12000, 3000, 40000,
		0, 0, 0,
		2000, 0, 50000,
	}
	assert.Equal(t, want, f.Duties)
	assert.Equal(t, 200*time.Millisecond, f.Delay)
}

func TestMapOutputsColdWithoutSuppression(t *testing.T) {
	f := MapOutputs(testColor, testPulse, MoodCold, BaselineParams())

	assert.Equal(t, f.Duties[LeftRed], f.Duties[RightRed])
	assert.Equal(t, f.Duties[LeftGreen], f.Duties[RightGreen])
	assert.Equal(t, f.Duties[LeftBlue], f.Duties[RightBlue])
	assert.Equal(t, uint16(50000), f.Duties[HeartBlue])
	assert.Equal(t, uint16(2000), f.Duties[HeartRed])
	assert.Equal(t, 100*time.Millisecond, f.Delay, "baseline uses one delay")
}

func TestMapOutputsHeartGreenAlwaysOff(t *testing.T) {
	for _, m := range []Mood{MoodCold, MoodWarm} {
		f := MapOutputs(testColor, PulseState{Bright: 0xFFFF, Afterglow: 0xFFFF}, m, ExpressiveParams())
		assert.Equal(t, uint16(0), f.Duties[HeartGreen], "mood %s", m)
	}
}

func TestMapOutputsIdempotent(t *testing.T) {
	a := MapOutputs(testColor, testPulse, MoodCold, ExpressiveParams())
	b := MapOutputs(testColor, testPulse, MoodCold, ExpressiveParams())
	assert.Equal(t, a, b)
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "left_red", LeftRed.String())
	assert.Equal(t, "heart_blue", HeartBlue.String())
	assert.Equal(t, "unknown", Channel(NumChannels).String())
	assert.Len(t, Channels(), NumChannels)
}

func TestNextTickWraps(t *testing.T) {
	assert.Equal(t, Tick(1), NextTick(0))
	assert.Equal(t, Tick(TickRange-1), NextTick(TickRange-2))
	assert.Equal(t, Tick(0), NextTick(TickRange-1))
}
