package pwm

import (
	"errors"
	"fmt"

	"github.com/sweeney/alpaca-heart/internal/logic"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultFrequency is the PWM carrier frequency.
const DefaultFrequency = 1 * physic.KiloHertz

// pwmPin is the subset of gpio.PinIO the sink uses.
type pwmPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
	Halt() error
	String() string
}

// RealSink drives LEDs through periph.io PWM pins.
type RealSink struct {
	pins   [logic.NumChannels]pwmPin
	freq   physic.Frequency
	invert bool
}

// NewRealSink initialises the periph host drivers and claims one pin per channel.
// With invert set, a duty of 0 drives the pin fully high (common-anode LEDs).
func NewRealSink(names [logic.NumChannels]string, freq physic.Frequency, invert bool) (*RealSink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	var pins [logic.NumChannels]pwmPin
	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("pin %q for %s not found", name, logic.Channel(i))
		}
		pins[i] = p
	}
	return newRealSink(pins, freq, invert), nil
}

func newRealSink(pins [logic.NumChannels]pwmPin, freq physic.Frequency, invert bool) *RealSink {
	return &RealSink{pins: pins, freq: freq, invert: invert}
}

// SetDuty converts a 16-bit duty to periph's 24-bit scale and applies it.
func (s *RealSink) SetDuty(ch logic.Channel, value uint16) error {
	if ch < 0 || int(ch) >= logic.NumChannels {
		return fmt.Errorf("channel %d out of range", ch)
	}
	if err := s.pins[ch].PWM(toDuty(value, s.invert), s.freq); err != nil {
		return fmt.Errorf("set %s (%s): %w", ch, s.pins[ch], err)
	}
	return nil
}

// Close halts every pin.
func (s *RealSink) Close() error {
	var errs []error
	for i, p := range s.pins {
		if p == nil {
			continue
		}
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt %s: %w", logic.Channel(i), err))
		}
	}
	return errors.Join(errs...)
}

// toDuty scales [0, 0xFFFF] onto [0, gpio.DutyMax].
func toDuty(value uint16, invert bool) gpio.Duty {
	d := gpio.Duty(uint64(value) * uint64(gpio.DutyMax) / 0xFFFF)
	if invert {
		return gpio.DutyMax - d
	}
	return d
}
