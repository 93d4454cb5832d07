package pwm

import (
	"errors"

	"github.com/sweeney/alpaca-heart/internal/logic"
)

// Write is one recorded SetDuty call.
type Write struct {
	Channel logic.Channel
	Value   uint16
}

// FakeSink is a test double that records every duty write.
type FakeSink struct {
	// Writes contains every SetDuty call in order.
	Writes []Write

	// Last holds the most recent value per channel.
	Last [logic.NumChannels]uint16

	// SetError, if set, will be returned by SetDuty.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// SetDuty records the write.
func (f *FakeSink) SetDuty(ch logic.Channel, value uint16) error {
	if f.SetError != nil {
		return f.SetError
	}
	if ch < 0 || int(ch) >= logic.NumChannels {
		return errors.New("channel out of range")
	}
	f.Writes = append(f.Writes, Write{Channel: ch, Value: value})
	f.Last[ch] = value
	return nil
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// Frames groups the recorded writes into complete nine-channel frames.
// A trailing partial frame is dropped.
func (f *FakeSink) Frames() [][logic.NumChannels]uint16 {
	var out [][logic.NumChannels]uint16
	for i := 0; i+logic.NumChannels <= len(f.Writes); i += logic.NumChannels {
		var fr [logic.NumChannels]uint16
		for _, w := range f.Writes[i : i+logic.NumChannels] {
			fr[w.Channel] = w.Value
		}
		out = append(out, fr)
	}
	return out
}

// Reset clears recorded writes.
func (f *FakeSink) Reset() {
	f.Writes = nil
	f.Last = [logic.NumChannels]uint16{}
	f.Closed = false
	f.SetError = nil
}
