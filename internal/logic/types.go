// Package logic contains the pure lighting logic for the alpaca.
// This package has NO hardware dependencies (no PWM, ADC, GPIO, MQTT or time.Sleep).
// Time is expressed as loop ticks; delays are returned, never slept.
package logic

import "time"

// Tick is the loop counter that drives every animation. It never reaches TickRange.
type Tick uint16

// TickRange is the exclusive upper bound of Tick; the counter wraps to 0 on reaching it.
const TickRange = 65500

// NextTick returns the tick following t, wrapping at TickRange.
func NextTick(t Tick) Tick {
	if uint32(t)+1 >= TickRange {
		return 0
	}
	return t + 1
}

// Channel identifies one of the nine physical PWM outputs.
type Channel int

const (
	LeftRed Channel = iota
	LeftGreen
	LeftBlue
	RightRed
	RightGreen
	RightBlue
	HeartRed
	HeartGreen
	HeartBlue

	NumChannels = 9
)

var channelNames = [NumChannels]string{
	"left_red", "left_green", "left_blue",
	"right_red", "right_green", "right_blue",
	"heart_red", "heart_green", "heart_blue",
}

// String returns the snake_case name used in logs, config and JSON.
func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Channels lists every output in write order.
func Channels() []Channel {
	out := make([]Channel, NumChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// Mood is the temperature-driven visual state.
type Mood string

const (
	MoodCold Mood = "COLD"
	MoodWarm Mood = "WARM"
)

// Duty limits per LED colour. Red and green dies are much brighter than blue.
const (
	EyeRedGreenMax = 20000
	EyeBlueMax     = 0xFFFF
)

// ColorSample is one eye colour as PWM duties.
type ColorSample struct {
	R uint16
	G uint16
	B uint16
}

// PulseState holds the two heart pulse amplitudes.
type PulseState struct {
	Bright    uint16
	Afterglow uint16
}

// Pulse amplitudes loaded by a trigger.
const (
	PulseFlash     = 0xFFFF
	PulseAfterglow = 0x1000
)

// Reading is one temperature sample.
type Reading struct {
	Raw     uint16
	Tenths  int // rounded tenths of a degree Celsius
	Celsius int // whole degrees, used for the mood comparison
}

// Frame is the complete output of one loop iteration.
type Frame struct {
	Tick    Tick
	Color   ColorSample
	Pulse   PulseState
	Mood    Mood
	Duties  [NumChannels]uint16
	Delay   time.Duration
	Sampled bool    // a temperature sample was taken this iteration
	Reading Reading // valid when Sampled
	Changed bool    // mood changed this iteration
}
