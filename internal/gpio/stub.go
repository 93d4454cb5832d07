//go:build !linux

package gpio

import "errors"

// RealStatusLine is not available on non-Linux platforms.
type RealStatusLine struct{}

// NewRealStatusLine returns an error on non-Linux platforms.
func NewRealStatusLine(chipName string, offset int) (*RealStatusLine, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealStatusLine) Set(on bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealStatusLine) Close() error {
	return nil
}
