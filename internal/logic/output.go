package logic

// MapOutputs combines the eye colour, heart pulse and mood into the duty for
// every channel plus the delay before the next iteration. It is pure.
func MapOutputs(c ColorSample, p PulseState, m Mood, params Params) Frame {
	f := Frame{
		Color: c,
		Pulse: p,
		Mood:  m,
		Delay: params.DelayFor(m),
	}

	f.Duties[LeftRed] = c.R
	f.Duties[LeftGreen] = c.G
	f.Duties[LeftBlue] = c.B

	// The right eye closes when cold, if enabled.
	if !(m == MoodCold && params.SuppressEyeWhenCold) {
		f.Duties[RightRed] = c.R
		f.Duties[RightGreen] = c.G
		f.Duties[RightBlue] = c.B
	}

	if m == MoodCold {
		f.Duties[HeartBlue] = p.Bright
		f.Duties[HeartRed] = p.Afterglow
	} else {
		f.Duties[HeartRed] = p.Bright
		f.Duties[HeartBlue] = p.Afterglow
	}
	f.Duties[HeartGreen] = 0

	return f
}
