// Package pwm drives the nine LED outputs with hardware abstraction.
// The real implementation uses periph.io hardware PWM.
// The fake implementation records every write for tests.
package pwm

import "github.com/sweeney/alpaca-heart/internal/logic"

// Sink accepts duty values for the LED channels.
type Sink interface {
	// SetDuty sets one channel's duty. Every value in [0, 65535] is valid.
	SetDuty(ch logic.Channel, value uint16) error

	// Close releases PWM resources.
	Close() error
}

// WriteFrame writes every channel of a frame in channel order.
func WriteFrame(s Sink, duties [logic.NumChannels]uint16) error {
	for _, ch := range logic.Channels() {
		if err := s.SetDuty(ch, duties[ch]); err != nil {
			return err
		}
	}
	return nil
}

// Blank writes zero to every channel.
func Blank(s Sink) error {
	return WriteFrame(s, [logic.NumChannels]uint16{})
}

// DefaultPins maps channels to BCM pin names (Raspberry Pi numbering).
var DefaultPins = [logic.NumChannels]string{
	"GPIO5", "GPIO6", "GPIO13", // left eye
	"GPIO12", "GPIO16", "GPIO19", // right eye
	"GPIO18", "GPIO20", "GPIO21", // heart
}
