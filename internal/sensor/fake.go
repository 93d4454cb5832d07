package sensor

import "errors"

// FakeSource is a test double that returns scripted ADC counts.
type FakeSource struct {
	// Samples contains scripted counts to return.
	// Each call to ReadRaw() consumes the next sample.
	Samples []uint16

	// index tracks current position in Samples
	index int

	// Reads counts ReadRaw calls.
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadRaw()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples ...uint16) *FakeSource {
	return &FakeSource{Samples: samples}
}

// ReadRaw returns the next scripted count.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSource) ReadRaw() (uint16, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of samples.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
