// Package gpio provides the status indicator output with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// StatusLine is a single digital output set once at startup.
type StatusLine interface {
	// Set drives the line high (true) or low (false).
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Defaults for the on-board status LED.
const (
	DefaultChip       = "gpiochip0"
	DefaultStatusPin  = 25 // BCM numbering
	DefaultStatusHigh = false
)
