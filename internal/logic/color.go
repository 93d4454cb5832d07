package logic

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Hue returns the eye hue in degrees [0, 360) for a tick.
// The sweep runs many full turns per tick range so the colour cycles quickly.
// Computed in float32; float64 shifts some samples by one duty step.
func Hue(t Tick, sweep float32) float64 {
	h := float32(t) / TickRange * 360 * sweep
	return math.Mod(float64(h), 360)
}

// ColorAt returns the eye colour for a tick. It is pure: the same tick
// always yields the same sample.
func ColorAt(t Tick, sweep float32) ColorSample {
	c := colorful.Hsv(Hue(t, sweep), 1, 1).Clamped()
	return ColorSample{
		R: scaleDuty(c.R, EyeRedGreenMax),
		G: scaleDuty(c.G, EyeRedGreenMax),
		B: scaleDuty(c.B, EyeBlueMax),
	}
}

// scaleDuty maps a [0,1] component onto [0,max], truncating like an integer cast.
func scaleDuty(v float64, max uint16) uint16 {
	d := math.Floor(float64(float32(v) * float32(max)))
	switch {
	case d <= 0 || math.IsNaN(d):
		return 0
	case d >= float64(max):
		return max
	}
	return uint16(d)
}
