// Package sensor provides temperature ADC reads with hardware abstraction.
// The real implementation reads a Linux IIO raw attribute.
// The fake implementation allows testing without hardware.
package sensor

// Source reads raw temperature ADC counts.
type Source interface {
	// ReadRaw returns one conversion result (12-bit, 0..4095 on the reference board).
	// It blocks until the conversion completes.
	ReadRaw() (uint16, error)

	// Close releases sensor resources.
	Close() error
}

// DefaultPath is the IIO attribute holding the temperature channel's raw count.
const DefaultPath = "/sys/bus/iio/devices/iio:device0/in_temp_raw"
